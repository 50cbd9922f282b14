package registry

import (
	"fmt"
	"sync"
)

// ChangeType identifies what a ChangeEvent reports.
type ChangeType string

const (
	// ChangeRegistered signals a new tool was added.
	ChangeRegistered ChangeType = "registered"
	// ChangeReplaced signals an existing tool was replaced by name.
	ChangeReplaced ChangeType = "replaced"
	// ChangeRemoved signals a tool was removed.
	ChangeRemoved ChangeType = "removed"
)

// ChangeEvent describes a registry mutation delivered to OnChange listeners.
type ChangeEvent struct {
	Type    ChangeType
	Name    string
	Version uint64
}

// ChangeListener receives registry change events.
type ChangeListener func(ChangeEvent)

// RegisterResult is the per-item outcome of RegisterMany.
type RegisterResult struct {
	Name     string
	Replaced bool
	Err      error
}

// Registry owns the set of tool definitions. Names are unique; insertion
// order is preserved and drives the default ordering of stubs, API payloads,
// and search-index documents. Definitions whose examples fail schema
// validation are rejected, never stored.
//
// Registry is safe for concurrent use. Registration is expected to be rare
// relative to reads.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Definition
	order   []string
	version uint64

	stubs      []Stub
	stubsDirty bool
	stubBuilds int

	listeners    map[int]ChangeListener
	nextListener int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]Definition),
		listeners: make(map[int]ChangeListener),
	}
}

// Register validates and stores a definition. Each input example must
// satisfy the input schema; on violation the error is a *ValidationError
// naming the offending example index and the definition is not stored.
//
// Registering a name that already exists replaces the previous definition
// wholesale. The returned bool reports whether this was a replace. Any
// derived view (stubs, search corpus) is invalidated.
func (r *Registry) Register(def Definition) (bool, error) {
	if err := def.validate(); err != nil {
		return false, err
	}
	if err := validateExamples(def); err != nil {
		return false, err
	}

	stored := def.Clone()

	r.mu.Lock()
	_, replaced := r.tools[stored.Name]
	r.tools[stored.Name] = stored
	if !replaced {
		r.order = append(r.order, stored.Name)
	}
	r.version++
	r.stubsDirty = true
	event := ChangeEvent{Type: ChangeRegistered, Name: stored.Name, Version: r.version}
	if replaced {
		event.Type = ChangeReplaced
	}
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	notify(listeners, event)
	return replaced, nil
}

// RegisterMany applies Register to each definition and collects per-item
// outcomes. A failing item never aborts the batch.
func (r *Registry) RegisterMany(defs []Definition) []RegisterResult {
	results := make([]RegisterResult, 0, len(defs))
	for _, def := range defs {
		replaced, err := r.Register(def)
		results = append(results, RegisterResult{Name: def.Name, Replaced: replaced, Err: err})
	}
	return results
}

// Get returns a deep copy of the named definition.
func (r *Registry) Get(name string) (Definition, error) {
	r.mu.RLock()
	def, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return Definition{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return def.Clone(), nil
}

// Has reports whether the named tool is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	_, ok := r.tools[name]
	r.mu.RUnlock()
	return ok
}

// Remove deletes the named definition.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	if _, ok := r.tools[name]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.version++
	r.stubsDirty = true
	event := ChangeEvent{Type: ChangeRemoved, Name: name, Version: r.version}
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	notify(listeners, event)
	return nil
}

// Clear removes every definition.
func (r *Registry) Clear() {
	r.mu.Lock()
	if len(r.tools) == 0 {
		r.mu.Unlock()
		return
	}
	r.tools = make(map[string]Definition)
	r.order = nil
	r.version++
	r.stubs = nil
	r.stubsDirty = false
	event := ChangeEvent{Type: ChangeRemoved, Name: "", Version: r.version}
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	notify(listeners, event)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Names returns the registered tool names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Version returns a counter that increases with every mutation. Consumers
// holding derived snapshots compare versions to detect staleness.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Snapshot returns deep copies of every definition in insertion order along
// with the registry version they reflect.
func (r *Registry) Snapshot() ([]Definition, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Clone())
	}
	return defs, r.version
}

// Stubs returns one (name, short description) pair per registered tool in
// insertion order. The listing is built lazily and cached until the next
// mutation; descriptions longer than MaxStubDescriptionLen are truncated.
// Stubs never expose input schemas or examples.
func (r *Registry) Stubs() []Stub {
	r.mu.RLock()
	if !r.stubsDirty && r.stubs != nil {
		out := make([]Stub, len(r.stubs))
		copy(out, r.stubs)
		r.mu.RUnlock()
		return out
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stubsDirty || r.stubs == nil {
		stubs := make([]Stub, 0, len(r.order))
		for _, name := range r.order {
			def := r.tools[name]
			stubs = append(stubs, Stub{
				Name:        def.Name,
				Description: truncateDescription(def.Description),
			})
		}
		r.stubs = stubs
		r.stubsDirty = false
		r.stubBuilds++
	}
	out := make([]Stub, len(r.stubs))
	copy(out, r.stubs)
	return out
}

// ToolsForAPI produces the full-schema representation of registered tools in
// the external tool-schema shape, in insertion order. Options restrict the
// set by name (unknown names are skipped) and control whether examples are
// attached. The returned payloads are deep copies.
func (r *Registry) ToolsForAPI(opts APIOptions) []APITool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var wanted map[string]bool
	if opts.Names != nil {
		wanted = make(map[string]bool, len(opts.Names))
		for _, name := range opts.Names {
			wanted[name] = true
		}
	}

	out := make([]APITool, 0, len(r.order))
	for _, name := range r.order {
		if wanted != nil && !wanted[name] {
			continue
		}
		def := r.tools[name].Clone()
		tool := APITool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}
		if opts.IncludeExamples {
			tool.InputExamples = def.InputExamples
		}
		out = append(out, tool)
	}
	return out
}

// Describe returns one tool at the requested detail level: DetailStub for
// the catalog entry, DetailSchema for the callable contract, DetailFull for
// the contract plus examples.
func (r *Registry) Describe(name string, level DetailLevel) (APITool, error) {
	def, err := r.Get(name)
	if err != nil {
		return APITool{}, err
	}
	switch level {
	case DetailStub:
		return APITool{
			Name:         def.Name,
			Description:  truncateDescription(def.Description),
			DeferLoading: true,
		}, nil
	case DetailSchema:
		return APITool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, nil
	case DetailFull:
		return APITool{
			Name:          def.Name,
			Description:   def.Description,
			InputSchema:   def.InputSchema,
			InputExamples: def.InputExamples,
		}, nil
	default:
		return APITool{}, fmt.Errorf("%q: %w", level, ErrInvalidDetail)
	}
}

// OnChange subscribes to registry mutations. The returned function removes
// the subscription. Listeners run synchronously after the mutation commits,
// outside the registry lock.
func (r *Registry) OnChange(listener ChangeListener) func() {
	r.mu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = listener
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *Registry) snapshotListeners() []ChangeListener {
	out := make([]ChangeListener, 0, len(r.listeners))
	for _, l := range r.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []ChangeListener, event ChangeEvent) {
	for _, l := range listeners {
		l(event)
	}
}
