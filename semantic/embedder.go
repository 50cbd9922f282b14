package semantic

import (
	"context"
	"math"
)

// Embedder generates a vector embedding for a piece of text. Users bring
// their own implementation (OpenAI, Ollama, local models); this package
// never performs network calls itself.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Empty, zero, or mismatched-length vectors yield 0 rather than an error.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
