package search

import (
	"sort"
	"strings"

	"github.com/jonwraymond/tooldefer/registry"
)

// Document is the searchable derivation of one tool definition.
type Document struct {
	// Name is the registry key the document was built from.
	Name string
	// Description is the tool's registered description, verbatim.
	Description string
	// Text is the concatenated search text before tokenization.
	Text string
	// Tokens is the tokenized search text.
	Tokens []string
}

// Corpus is an immutable snapshot of searchable documents plus the term
// statistics ranking needs. A corpus is built from exactly one registry
// snapshot and never mutated afterwards; Version records which snapshot.
type Corpus struct {
	// Docs holds one document per registered tool, in insertion order.
	Docs []Document
	// DocFreq maps a term to the number of documents containing it.
	DocFreq map[string]int
	// TermFreq holds per-document term counts, indexed like Docs.
	TermFreq []map[string]int
	// DocLen holds per-document token counts, indexed like Docs.
	DocLen []int
	// AvgDocLen is the mean token count across all documents.
	AvgDocLen float64
	// Version is the registry version the corpus was built from.
	Version uint64
}

// BuildCorpus derives a corpus from a registry snapshot. The document text
// for each tool is its name written twice, then the description, then the
// distinct top-level keys of its input examples, so a term hit in the name
// counts double and example keys contribute the least signal.
func BuildCorpus(defs []registry.Definition, version uint64) *Corpus {
	c := &Corpus{
		Docs:     make([]Document, 0, len(defs)),
		DocFreq:  make(map[string]int),
		TermFreq: make([]map[string]int, 0, len(defs)),
		DocLen:   make([]int, 0, len(defs)),
		Version:  version,
	}

	total := 0
	for _, def := range defs {
		text := buildDocText(def)
		tokens := Tokenize(text)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term := range tf {
			c.DocFreq[term]++
		}

		c.Docs = append(c.Docs, Document{
			Name:        def.Name,
			Description: def.Description,
			Text:        text,
			Tokens:      tokens,
		})
		c.TermFreq = append(c.TermFreq, tf)
		c.DocLen = append(c.DocLen, len(tokens))
		total += len(tokens)
	}
	if len(c.Docs) > 0 {
		c.AvgDocLen = float64(total) / float64(len(c.Docs))
	}
	return c
}

func buildDocText(def registry.Definition) string {
	parts := []string{def.Name, def.Name, def.Description}
	if keys := exampleKeys(def.InputExamples); len(keys) > 0 {
		parts = append(parts, strings.Join(keys, " "))
	}
	return strings.Join(parts, " ")
}

// exampleKeys collects the distinct top-level keys across all input
// examples, sorted so the derived text is stable regardless of map
// iteration order.
func exampleKeys(examples []map[string]any) []string {
	if len(examples) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	for _, example := range examples {
		for key := range example {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
