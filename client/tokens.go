package client

import (
	"encoding/json"
	"math"

	"github.com/jonwraymond/tooldefer/registry"
	"github.com/jonwraymond/tooldefer/session"
)

// TokenSavings compares the serialized size of a full tools payload with
// the deferred first payload, in estimated tokens.
type TokenSavings struct {
	ToolCount      int     `json:"tool_count"`
	FullTokens     int     `json:"full_tokens"`
	DeferredTokens int     `json:"deferred_tokens"`
	Saved          int     `json:"saved"`
	SavedPercent   float64 `json:"saved_percent"`
}

// EstimateTokenSavings sizes loading every registered tool in full,
// examples included, against the deferred payload of meta-tool plus
// stubs. Both sides use the rough four characters per token rule, so
// treat the numbers as a comparison, not an exact count. Small catalogs
// can come out negative: the meta-tool overhead only pays for itself once
// the schemas outweigh it.
func EstimateTokenSavings(reg *registry.Registry) TokenSavings {
	full, _ := json.Marshal(reg.ToolsForAPI(registry.APIOptions{IncludeExamples: true}))
	deferred, _ := json.Marshal(session.BuildPayload(reg, nil))

	s := TokenSavings{
		ToolCount:      reg.Len(),
		FullTokens:     len(full) / 4,
		DeferredTokens: len(deferred) / 4,
	}
	s.Saved = s.FullTokens - s.DeferredTokens
	if s.FullTokens > 0 {
		s.SavedPercent = math.Round(float64(s.Saved)/float64(s.FullTokens)*1000) / 10
	}
	return s
}
