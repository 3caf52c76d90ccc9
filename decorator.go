package invoker

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Processor is the write-oriented fixed handler contract.
type Processor interface {
	Process(ctx context.Context, data any, op *Operation, params map[string]any, carrier Carrier) (any, error)
}

// Provider is the read-oriented fixed handler contract.
type Provider interface {
	Provide(ctx context.Context, op *Operation, params map[string]any, carrier Carrier) (any, error)
}

// ProcessorFunc is a function adapter for Processor.
type ProcessorFunc func(ctx context.Context, data any, op *Operation, params map[string]any, carrier Carrier) (any, error)

// Process implements the Processor interface.
func (f ProcessorFunc) Process(ctx context.Context, data any, op *Operation, params map[string]any, carrier Carrier) (any, error) {
	return f(ctx, data, op, params, carrier)
}

// ProviderFunc is a function adapter for Provider.
type ProviderFunc func(ctx context.Context, op *Operation, params map[string]any, carrier Carrier) (any, error)

// Provide implements the Provider interface.
func (f ProviderFunc) Provide(ctx context.Context, op *Operation, params map[string]any, carrier Carrier) (any, error) {
	return f(ctx, op, params, carrier)
}

// Registry looks up registered handler values by the string identifier
// found in operation metadata. Service containers implement this
// directly; HandlerRegistry is the map-backed implementation shipped with
// the package.
type Registry interface {
	Has(id string) bool
	Get(id string) any
}

// handlerKind is decided once per registration, not re-inspected per call.
type handlerKind int

const (
	kindConventional handlerKind = iota
	kindDynamic
)

type registration struct {
	kind    handlerKind
	value   any      // the fixed-contract implementer, conventional only
	handler *Handler // the introspected callable, dynamic only
}

// HandlerRegistry is a map-backed Registry that classifies each handler at
// registration: a value implementing Processor or Provider dispatches
// through the conventional path, a plain func through the dynamic path.
//
// HandlerRegistry is safe for concurrent reads after registration is
// complete.
type HandlerRegistry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// NewHandlerRegistry creates an empty handler registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{entries: make(map[string]registration)}
}

// Register adds a handler under id. Fixed-contract implementers are stored
// as-is; funcs are introspected with the given options. Anything else is
// rejected.
func (r *HandlerRegistry) Register(id string, v any, opts ...HandlerOption) error {
	reg := registration{}
	switch v.(type) {
	case Processor, Provider:
		reg.kind = kindConventional
		reg.value = v
	default:
		if reflect.ValueOf(v).Kind() != reflect.Func {
			return fmt.Errorf("invoker: handler %q is neither a fixed-contract implementation nor a callable (%T)", id, v)
		}
		h, err := NewHandler(v, opts...)
		if err != nil {
			return err
		}
		reg.kind = kindDynamic
		reg.handler = h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = reg
	return nil
}

// Has implements the Registry interface.
func (r *HandlerRegistry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Get implements the Registry interface. Dynamic registrations come back
// as *Handler so the decorator skips re-introspection.
func (r *HandlerRegistry) Get(id string) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[id]
	if !ok {
		return nil
	}
	if reg.kind == kindDynamic {
		return reg.handler
	}
	return reg.value
}

// dispatcher holds the routing decision shared by both decorators. It
// caches introspection of plain funcs returned by external registries, so
// the per-call path never rebuilds descriptors for the same identifier.
type dispatcher struct {
	registry Registry
	bridge   *Bridge

	mu    sync.RWMutex
	cache map[string]*Handler
}

func newDispatcher(registry Registry, bridge *Bridge) *dispatcher {
	return &dispatcher{
		registry: registry,
		bridge:   bridge,
		cache:    make(map[string]*Handler),
	}
}

// lookup decides the path for a call: a nil return means the conventional
// path. Only a registered value that is callable and is not itself a
// fixed-contract implementation dispatches dynamically.
func (d *dispatcher) lookup(op *Operation) (*Handler, error) {
	if op == nil || op.Handler == "" || !d.registry.Has(op.Handler) {
		return nil, nil
	}
	v := d.registry.Get(op.Handler)
	switch h := v.(type) {
	case *Handler:
		return h, nil
	case Processor, Provider:
		return nil, nil
	}
	if reflect.ValueOf(v).Kind() != reflect.Func {
		return nil, nil
	}

	d.mu.RLock()
	h, ok := d.cache[op.Handler]
	d.mu.RUnlock()
	if ok {
		return h, nil
	}

	h, err := NewHandler(v)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.cache[op.Handler] = h
	d.mu.Unlock()
	return h, nil
}

// ProcessorDecorator routes each write call either through the dynamic
// bridge or to the decorated fixed-contract implementation.
type ProcessorDecorator struct {
	inner Processor
	disp  *dispatcher
}

// DecorateProcessor wraps a Processor with dynamic dispatch. Calls whose
// operation names a registered callable go through the bridge; everything
// else passes to inner unchanged.
func DecorateProcessor(inner Processor, registry Registry, bridge *Bridge) *ProcessorDecorator {
	return &ProcessorDecorator{inner: inner, disp: newDispatcher(registry, bridge)}
}

// Process implements the Processor interface.
func (p *ProcessorDecorator) Process(ctx context.Context, data any, op *Operation, params map[string]any, carrier Carrier) (any, error) {
	h, err := p.disp.lookup(op)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return p.inner.Process(ctx, data, op, params, carrier)
	}
	return p.disp.bridge.Invoke(ctx, h, data, op, params, carrier)
}

// ProviderDecorator routes each read call either through the dynamic
// bridge or to the decorated fixed-contract implementation.
type ProviderDecorator struct {
	inner Provider
	disp  *dispatcher
}

// DecorateProvider wraps a Provider with dynamic dispatch.
func DecorateProvider(inner Provider, registry Registry, bridge *Bridge) *ProviderDecorator {
	return &ProviderDecorator{inner: inner, disp: newDispatcher(registry, bridge)}
}

// Provide implements the Provider interface.
func (p *ProviderDecorator) Provide(ctx context.Context, op *Operation, params map[string]any, carrier Carrier) (any, error) {
	h, err := p.disp.lookup(op)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return p.inner.Provide(ctx, op, params, carrier)
	}
	return p.disp.bridge.Invoke(ctx, h, nil, op, params, carrier)
}
