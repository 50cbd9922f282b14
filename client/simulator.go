package client

import (
	"context"
	"fmt"

	"github.com/jonwraymond/tooldefer/registry"
	"github.com/jonwraymond/tooldefer/session"
)

// ResultType tags a simulated tool_result block on the wire.
const ResultType = "tool_result"

// SimulatedResult is the tool_result block a simulated search call
// produces, shaped the way a live runtime would shape it.
type SimulatedResult struct {
	Type      string          `json:"type"`
	ToolUseID string          `json:"tool_use_id"`
	Content   []ToolReference `json:"content"`
}

// SearchRecord pairs a simulated query with the references it produced.
type SearchRecord struct {
	Query      string
	References []ToolReference
}

// Simulator plays the search side of a deferred-loading conversation
// without a live model. Tool-use IDs are sequential (sim_1, sim_2, ...)
// and every search is recorded.
type Simulator struct {
	orch    *Orchestrator
	history []SearchRecord
}

// NewSimulator wraps an orchestrator for scripted conversations.
func NewSimulator(o *Orchestrator) *Simulator {
	return &Simulator{orch: o}
}

// SimulateSearch runs query through the orchestrator against s and wraps
// the resulting references in a tool_result block.
func (sim *Simulator) SimulateSearch(ctx context.Context, s *session.Session, query string) (SimulatedResult, error) {
	effect, err := sim.orch.Step(ctx, s, SearchAction{Query: query})
	if err != nil {
		return SimulatedResult{}, err
	}
	results := effect.(SearchResults)

	sim.history = append(sim.history, SearchRecord{Query: query, References: results.References})
	return SimulatedResult{
		Type:      ResultType,
		ToolUseID: fmt.Sprintf("sim_%d", len(sim.history)),
		Content:   results.References,
	}, nil
}

// ExpandReferences resolves reference blocks to full definitions, skipping
// entries that are not references and names the registry does not hold.
// When s is non-nil the resolved tools also enter its expanded set, so the
// next payload carries them in full. Without includeExamples the
// definitions stop at their schemas.
func (sim *Simulator) ExpandReferences(s *session.Session, refs []ToolReference, includeExamples bool) []registry.APITool {
	level := registry.DetailFull
	if !includeExamples {
		level = registry.DetailSchema
	}

	var out []registry.APITool
	for _, ref := range refs {
		if ref.Type != ReferenceType {
			continue
		}
		tool, err := sim.orch.reg.Describe(ref.ToolName, level)
		if err != nil {
			continue
		}
		if s != nil {
			_, _ = s.Expand(sim.orch.reg, ref.ToolName)
		}
		out = append(out, tool)
	}
	return out
}

// History returns a copy of the recorded searches, oldest first.
func (sim *Simulator) History() []SearchRecord {
	if len(sim.history) == 0 {
		return nil
	}
	out := make([]SearchRecord, len(sim.history))
	copy(out, sim.history)
	return out
}
