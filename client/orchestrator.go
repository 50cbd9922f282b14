package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/tooldefer/registry"
	"github.com/jonwraymond/tooldefer/search"
	"github.com/jonwraymond/tooldefer/session"
)

// DefaultMaxResults bounds search results when an action does not say how
// many it wants.
const DefaultMaxResults = 5

// Handler executes a local tool with the given arguments. It receives the
// arguments parsed from the model's tool_use block and returns the value
// to report back, or an error the model should see as a failed call.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Options configures an Orchestrator.
type Options struct {
	// Registry holds the tool catalog. Required.
	Registry *registry.Registry
	// Provider answers searches over the catalog. Required.
	Provider *search.Provider
	// Session is the per-session policy, such as auto-expanding the top
	// search hits.
	Session session.Config
	// AutoDetectType picks a search type per query when an action does not
	// name one. Detected types the provider has no strategy for fall back
	// to BM25.
	AutoDetectType bool
	// SimulateMissing makes invocations of tools without a registered
	// handler succeed with a placeholder result instead of failing with
	// ErrNoHandler.
	SimulateMissing bool
}

// Orchestrator drives the deferred-loading conversation loop: it turns
// model actions into session transitions and the effects the model should
// see. Aside from the session passed to each Step, it keeps no per-call
// state; one orchestrator serves any number of sessions.
type Orchestrator struct {
	reg             *registry.Registry
	provider        *search.Provider
	cfg             session.Config
	autoDetect      bool
	simulateMissing bool

	mu       sync.RWMutex
	handlers map[string]Handler
}

// New validates opts and builds an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrInvalidOptions)
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("%w: search provider is required", ErrInvalidOptions)
	}
	return &Orchestrator{
		reg:             opts.Registry,
		provider:        opts.Provider,
		cfg:             opts.Session,
		autoDetect:      opts.AutoDetectType,
		simulateMissing: opts.SimulateMissing,
		handlers:        make(map[string]Handler),
	}, nil
}

// RegisterHandler binds a local execution handler to a tool name,
// replacing any previous one.
func (o *Orchestrator) RegisterHandler(name string, h Handler) {
	o.mu.Lock()
	o.handlers[name] = h
	o.mu.Unlock()
}

// Step processes one model action against s and returns the effect the
// model should see next. Session mutations are confined to the documented
// transitions: every processed action advances the turn counter, a
// successful search appends to the query log and may auto-expand its top
// hits, and expansions grow the expanded set. s must not be nil.
//
// Handler failures are reported inside InvocationResult, not as a Step
// error; the conversation decides how to continue. A Step error means the
// action itself could not be processed.
func (o *Orchestrator) Step(ctx context.Context, s *session.Session, action Action) (Effect, error) {
	if action == nil {
		return nil, ErrUnknownAction
	}
	s.AdvanceTurn()

	switch act := action.(type) {
	case SearchAction:
		return o.stepSearch(ctx, s, act)
	case ExpandAction:
		return o.stepExpand(s, act.Name), nil
	case InvokeAction:
		return o.stepInvoke(ctx, s, act)
	case RespondAction:
		return FinalResponse{Text: act.Text}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}

func (o *Orchestrator) stepSearch(ctx context.Context, s *session.Session, act SearchAction) (Effect, error) {
	maxResults := act.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	typ := act.Type
	if typ == "" && o.autoDetect {
		typ = search.DetectType(act.Query)
		if _, err := o.provider.Strategy(typ); err != nil {
			typ = search.TypeBM25
		}
	}

	matches, err := o.provider.Search(ctx, act.Query, maxResults, typ)
	if err != nil {
		return nil, err
	}
	s.RecordSearch(act.Query)

	return SearchResults{
		Matches:      matches,
		References:   References(matches),
		AutoExpanded: s.ExpandTopK(o.reg, matches, o.cfg.AutoExpandTopK),
	}, nil
}

func (o *Orchestrator) stepExpand(s *session.Session, name string) Expanded {
	var effect Expanded
	if _, err := s.Expand(o.reg, name); err != nil {
		effect.Missing = append(effect.Missing, name)
		return effect
	}
	tool, err := o.reg.Describe(name, registry.DetailFull)
	if err != nil {
		effect.Missing = append(effect.Missing, name)
		return effect
	}
	effect.Tools = append(effect.Tools, tool)
	return effect
}

func (o *Orchestrator) stepInvoke(ctx context.Context, s *session.Session, act InvokeAction) (Effect, error) {
	if !s.IsExpanded(act.Name) {
		return nil, fmt.Errorf("invoke %q: %w", act.Name, session.ErrNotExpanded)
	}

	o.mu.RLock()
	handler, ok := o.handlers[act.Name]
	o.mu.RUnlock()
	if !ok {
		if o.simulateMissing {
			return InvocationResult{
				Name: act.Name,
				Value: map[string]any{
					"status":  "simulated",
					"message": fmt.Sprintf("tool %q executed with input %v", act.Name, act.Args),
				},
			}, nil
		}
		return nil, fmt.Errorf("invoke %q: %w", act.Name, ErrNoHandler)
	}

	value, err := handler(ctx, act.Args)
	return InvocationResult{Name: act.Name, Value: value, Err: err}, nil
}
