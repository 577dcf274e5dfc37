package resolver

import (
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/typedispatch"
	"github.com/wippyai/typedispatch/errors"
	"github.com/wippyai/typedispatch/resolver/internal/lineage"
)

// Options configures resolver behavior.
type Options struct {
	// RouteCache memoizes resolved routes per concrete type. The cache is
	// dropped on every table mutation.
	RouteCache bool
	// EmbeddedFallback lets loose handlers receive types that embed their type.
	EmbeddedFallback bool
	// InterfaceFallback lets loose interface handlers receive implementing types.
	InterfaceFallback bool
}

// DefaultOptions returns default resolver configuration.
func DefaultOptions() Options {
	return Options{
		RouteCache:        true,
		EmbeddedFallback:  true,
		InterfaceFallback: true,
	}
}

// Registration binds a handler to a type.
type Registration struct {
	Type    reflect.Type
	Handler typedispatch.Handler
	Strict  bool
}

type entry struct {
	typ     reflect.Type
	handler typedispatch.Handler
	strict  bool
}

type route struct {
	entry *entry
	path  *lineage.Path // set for embedded ancestors
}

// Resolver is the process-wide table of handlers keyed by type.
// Resolver is thread-safe.
type Resolver struct {
	entries map[reflect.Type]*entry
	loose   map[reflect.Type]*entry
	routes  map[reflect.Type]route
	options Options
	mu      sync.Mutex
}

var (
	defaultResolver *Resolver
	defaultOnce     sync.Once
)

// Default returns the process-wide resolver, created with default options on
// first use. Tests that share it should call Clear in their teardown.
func Default() *Resolver {
	defaultOnce.Do(func() {
		defaultResolver = NewWithDefaults()
	})
	return defaultResolver
}

// New creates an empty resolver with the given options.
func New(opts Options) *Resolver {
	return &Resolver{
		entries: make(map[reflect.Type]*entry),
		loose:   make(map[reflect.Type]*entry),
		routes:  make(map[reflect.Type]route),
		options: opts,
	}
}

// NewWithDefaults creates an empty resolver with default options.
func NewWithDefaults() *Resolver {
	return New(DefaultOptions())
}

// Options returns the configuration.
func (r *Resolver) Options() Options {
	return r.options
}

// Register binds h to t. A non-strict registration also makes h eligible for
// values whose type descends from t. Registering a type twice fails with a
// duplicate error and keeps the first handler.
func (r *Resolver) Register(t reflect.Type, h typedispatch.Handler, strict bool) error {
	return r.RegisterAll(Registration{Type: t, Handler: h, Strict: strict})
}

// RegisterAll applies a batch of registrations atomically: either every
// registration is added or, on the first invalid or conflicting one, none is.
func (r *Resolver) RegisterAll(regs ...Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[reflect.Type]bool, len(regs))
	for _, reg := range regs {
		if err := validate(reg); err != nil {
			return err
		}
		if _, exists := r.entries[reg.Type]; exists || seen[reg.Type] {
			return errors.Duplicate(errors.PhaseRegister, reg.Type.String(), "")
		}
		seen[reg.Type] = true
	}

	for _, reg := range regs {
		e := &entry{typ: reg.Type, handler: reg.Handler, strict: reg.Strict}
		r.entries[reg.Type] = e
		if !reg.Strict {
			r.loose[reg.Type] = e
		}
		Logger().Debug("registered handler",
			zap.Stringer("type", reg.Type),
			zap.Bool("strict", reg.Strict))
	}
	if len(regs) > 0 {
		clear(r.routes)
	}
	return nil
}

func validate(reg Registration) error {
	if reg.Type == nil {
		return errors.NilValue(errors.PhaseRegister, "type")
	}
	if reg.Handler == nil {
		return errors.New(errors.PhaseRegister, errors.KindNilValue).
			Type(reg.Type.String()).
			Detail("handler cannot be nil").
			Build()
	}
	if reg.Strict && reg.Type.Kind() == reflect.Interface {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Type(reg.Type.String()).
			Detail("interface types never match a concrete value exactly; register them loose").
			Build()
	}
	return nil
}

// Unregister removes the handler for t. It reports whether one was registered.
func (r *Resolver) Unregister(t reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[t]; !ok {
		return false
	}
	delete(r.entries, t)
	delete(r.loose, t)
	clear(r.routes)

	Logger().Debug("unregistered handler", zap.Stringer("type", t))
	return true
}

// Clear removes every registration.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.entries)
	clear(r.loose)
	clear(r.routes)

	Logger().Debug("cleared resolver")
}

// Has returns true if t has its own registration.
func (r *Resolver) Has(t reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[t]
	return ok
}

// IsLoose returns true if t is registered and eligible for ancestor fallback.
func (r *Resolver) IsLoose(t reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.loose[t]
	return ok
}

// Len returns the number of registered types.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Types returns all registered types sorted by name.
func (r *Resolver) Types() []reflect.Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]reflect.Type, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}

// Resolve returns the handler for obj's runtime type.
func (r *Resolver) Resolve(obj any) (typedispatch.Handler, error) {
	if obj == nil {
		return nil, errors.NilValue(errors.PhaseResolve, "value")
	}
	return r.ResolveType(reflect.TypeOf(obj))
}

// ResolveType returns the handler values of type t are routed to.
func (r *Resolver) ResolveType(t reflect.Type) (typedispatch.Handler, error) {
	if t == nil {
		return nil, errors.NilValue(errors.PhaseResolve, "type")
	}

	r.mu.Lock()
	rt, err := r.lookup(t)
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if rt.path == nil {
		return rt.entry.handler, nil
	}
	return &embeddedHandler{handler: rt.entry.handler, path: *rt.path}, nil
}

// Dispatch resolves the handler for obj and invokes it outside the table lock.
func (r *Resolver) Dispatch(obj any) error {
	h, err := r.Resolve(obj)
	if err != nil {
		Logger().Debug("dispatch failed", zap.Error(err))
		return err
	}
	return h.Handle(obj)
}

// lookup must be called with r.mu held.
func (r *Resolver) lookup(t reflect.Type) (route, error) {
	if r.options.RouteCache {
		if rt, ok := r.routes[t]; ok {
			if rt.entry == nil {
				return route{}, errors.NotFound(t.String())
			}
			return rt, nil
		}
	}

	rt, err := r.find(t)
	if err != nil {
		if r.options.RouteCache && errors.IsKind(err, errors.KindNotFound) {
			r.routes[t] = route{}
		}
		return route{}, err
	}

	if r.options.RouteCache {
		r.routes[t] = rt
	}
	return rt, nil
}

func (r *Resolver) find(t reflect.Type) (route, error) {
	if e, ok := r.entries[t]; ok {
		return route{entry: e}, nil
	}

	if len(r.loose) == 0 {
		return route{}, errors.NotFound(t.String())
	}

	if r.options.EmbeddedFallback {
		paths := lineage.Embedded(t, func(c reflect.Type) bool {
			_, ok := r.loose[c]
			return ok
		})
		switch len(paths) {
		case 0:
		case 1:
			p := paths[0]
			return route{entry: r.loose[p.Target], path: &p}, nil
		default:
			names := make([]string, len(paths))
			for i, p := range paths {
				names[i] = p.Target.String()
			}
			sort.Strings(names)
			return route{}, errors.Ambiguous(t.String(), names)
		}
	}

	if r.options.InterfaceFallback {
		var ifaces []reflect.Type
		for c := range r.loose {
			if c.Kind() == reflect.Interface {
				ifaces = append(ifaces, c)
			}
		}
		nearest := lineage.Interfaces(t, ifaces)
		switch len(nearest) {
		case 0:
		case 1:
			return route{entry: r.loose[nearest[0]]}, nil
		default:
			names := make([]string, len(nearest))
			for i, c := range nearest {
				names[i] = c.String()
			}
			return route{}, errors.Ambiguous(t.String(), names)
		}
	}

	return route{}, errors.NotFound(t.String())
}

// embeddedHandler hands the embedded ancestor, not the whole value, to a loose handler.
type embeddedHandler struct {
	handler typedispatch.Handler
	path    lineage.Path
}

func (h *embeddedHandler) Handle(obj any) error {
	v, ok := h.path.Extract(reflect.ValueOf(obj))
	if !ok {
		return errors.New(errors.PhaseDispatch, errors.KindNilValue).
			Type(reflect.TypeOf(obj).String()).
			Detail("nil pointer on the way to embedded %s", h.path.Target).
			Build()
	}
	return h.handler.Handle(v.Interface())
}
