// Package semantic provides embedding-based ranking strategies for the
// search package.
//
// It defines strategies that rank by vector similarity without enforcing
// any specific vector backend or network dependency. Users bring their
// own embedding provider (OpenAI, Ollama, local models) by implementing
// [Embedder].
//
// # Strategies
//
// Two strategies are provided, both implementing search.Strategy:
//
//   - [EmbeddingStrategy]: cosine similarity between query and document
//     embeddings
//   - [HybridStrategy]: weighted blend of a lexical strategy and a
//     semantic one
//
// Create strategies with the constructor functions and plug them into a
// search provider:
//
//	emb := semantic.NewEmbeddingStrategy(embedder)
//	hybrid, err := semantic.NewHybridStrategy(
//	    search.NewBM25Strategy(search.BM25Params{}),
//	    emb,
//	    semantic.DefaultAlpha,
//	)
//	if err != nil {
//	    return err
//	}
//	provider := search.NewProvider(reg, search.ProviderOptions{
//	    Strategies: map[search.SearchType]search.Strategy{
//	        search.TypeSemantic: emb,
//	        search.TypeHybrid:   hybrid,
//	    },
//	})
//
// # Implementing an Embedder
//
//	type MyEmbedder struct {
//	    client *openai.Client
//	}
//
//	func (e *MyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
//	    resp, err := e.client.CreateEmbedding(ctx, openai.EmbeddingRequest{
//	        Model: "text-embedding-3-small",
//	        Input: []string{text},
//	    })
//	    if err != nil {
//	        return nil, err
//	    }
//	    return resp.Data[0].Embedding, nil
//	}
//
// # Caching
//
// EmbeddingStrategy caches document vectors keyed by the corpus
// fingerprint. A steady catalog costs one query embedding per search;
// any registry change invalidates the cache on the next call.
//
// # Thread Safety
//
// All strategies are safe for concurrent Rank calls.
//
// # Error Handling
//
// The package defines these sentinel errors:
//   - [ErrInvalidEmbedder]: Embedder is nil when required
//   - [ErrInvalidHybridConfig]: invalid hybrid strategy configuration
//
// Use errors.Is for error checking:
//
//	if errors.Is(err, semantic.ErrInvalidEmbedder) {
//	    // handle missing embedder
//	}
package semantic
