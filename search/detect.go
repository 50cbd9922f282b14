package search

import "strings"

// conversationalOpeners are leading words that mark a query as a
// natural-language question rather than a keyword lookup.
var conversationalOpeners = map[string]struct{}{
	"i": {}, "how": {}, "what": {}, "when": {}, "where": {}, "why": {},
	"can": {}, "could": {}, "would": {}, "please": {}, "help": {},
	"show": {}, "tell": {},
}

// DetectType picks a search type from the shape of the query. Regex
// metacharacters select regex; a conversational opening word or a query
// of four or more words selects semantic; exactly three words selects
// hybrid; everything else, including an empty query, selects BM25.
//
// Callers that have not plugged in semantic or hybrid strategies should
// map those results back to TypeBM25 before searching.
func DetectType(query string) SearchType {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return TypeBM25
	}
	if strings.ContainsAny(trimmed, `*?[]^$|\`) {
		return TypeRegex
	}

	words := strings.Fields(strings.ToLower(trimmed))
	if _, ok := conversationalOpeners[words[0]]; ok {
		return TypeSemantic
	}
	switch {
	case len(words) >= 4:
		return TypeSemantic
	case len(words) == 3:
		return TypeHybrid
	default:
		return TypeBM25
	}
}
