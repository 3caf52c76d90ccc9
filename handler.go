package invoker

import (
	"context"
	"fmt"
	"reflect"
)

// ParameterDescriptor describes one handler parameter. Descriptors are
// derived once per handler at registration and never change.
type ParameterDescriptor struct {
	// Name is the parameter's name, unique within a handler signature.
	// Go reflection does not expose parameter names, so names come from
	// WithParams at registration; an unnamed parameter can only be
	// resolved by type.
	Name string

	// Types is the declared type set. Empty means untyped: the parameter
	// accepts anything. More than one entry is a union, matched strictly.
	Types []Type

	// Nullable reports whether nil is an acceptable value. Pointer, map,
	// slice and interface parameters are nullable.
	Nullable bool

	// Binding is the explicit raw-value key feeding this parameter. When
	// set it takes precedence over matching the parameter's own name.
	Binding string

	// Variadic and HasDefault mark parameters whose absence is not fatal.
	Variadic   bool
	HasDefault bool

	rtype reflect.Type
}

// GoType returns the parameter's concrete Go type.
func (d ParameterDescriptor) GoType() reflect.Type { return d.rtype }

// Handler is a freeform callable with its introspected parameter
// descriptors. Build one with NewHandler; the dispatch path reuses the
// descriptors for every call.
//
// The callable may declare a leading context.Context parameter, which is
// supplied from the call, and may return (R, error), R alone, or error
// alone.
type Handler struct {
	fn         reflect.Value
	params     []ParameterDescriptor
	hasContext bool
	hasErr     bool
	hasResult  bool
}

// HandlerOption configures descriptor metadata that reflection cannot
// recover.
type HandlerOption func(*handlerConfig) error

type handlerConfig struct {
	names    []string
	bindings map[string]string
	unions   map[string][]Type
	defaults map[string]bool
}

// WithParams names the handler's parameters in declaration order, not
// counting a leading context.Context. Naming enables magic route-value
// matching and payload aliases.
func WithParams(names ...string) HandlerOption {
	return func(c *handlerConfig) error {
		c.names = names
		return nil
	}
}

// WithBinding sets the explicit raw-value key for a named parameter.
func WithBinding(param, key string) HandlerOption {
	return func(c *handlerConfig) error {
		if param == "" || key == "" {
			return fmt.Errorf("invoker: binding needs a parameter name and a key")
		}
		c.bindings[param] = key
		return nil
	}
}

// WithUnion declares a strict union type set for a named parameter. The
// parameter's Go type must be able to hold every branch, so unions are
// declared on any-typed parameters.
func WithUnion(param string, types ...Type) HandlerOption {
	return func(c *handlerConfig) error {
		if len(types) < 2 {
			return fmt.Errorf("invoker: union for %q needs at least two branches", param)
		}
		c.unions[param] = types
		return nil
	}
}

// WithDefault marks a named parameter as defaulted: when no resolver
// produces a value, the parameter receives its zero value instead of
// failing the call.
func WithDefault(param string) HandlerOption {
	return func(c *handlerConfig) error {
		c.defaults[param] = true
		return nil
	}
}

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

// NewHandler introspects fn and builds its parameter descriptors.
func NewHandler(fn any, opts ...HandlerOption) (*Handler, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("invoker: handler must be a func, got %T", fn)
	}
	ft := v.Type()

	cfg := handlerConfig{
		bindings: make(map[string]string),
		unions:   make(map[string][]Type),
		defaults: make(map[string]bool),
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	h := &Handler{fn: v}
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			h.hasErr = true
		} else {
			h.hasResult = true
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("invoker: handler's second return value must be error, got %s", ft.Out(1))
		}
		h.hasResult = true
		h.hasErr = true
	default:
		return nil, fmt.Errorf("invoker: handler returns %d values, want at most 2", ft.NumOut())
	}

	first := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		h.hasContext = true
		first = 1
	}

	n := ft.NumIn() - first
	if len(cfg.names) > 0 && len(cfg.names) != n {
		return nil, fmt.Errorf("invoker: handler takes %d parameters, got %d names", n, len(cfg.names))
	}

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		pt := ft.In(first + i)
		d := ParameterDescriptor{
			rtype:    pt,
			Types:    []Type{typeOf(pt)},
			Nullable: canBeNil(pt),
			Variadic: ft.IsVariadic() && first+i == ft.NumIn()-1,
		}
		if d.Types[0].Kind == KindAny && d.Types[0].Ref == nil {
			d.Types = nil
		}
		if len(cfg.names) > 0 {
			d.Name = cfg.names[i]
			if d.Name != "" {
				if seen[d.Name] {
					return nil, fmt.Errorf("invoker: duplicate parameter name %q", d.Name)
				}
				seen[d.Name] = true
			}
			d.Binding = cfg.bindings[d.Name]
			if u, ok := cfg.unions[d.Name]; ok {
				d.Types = u
			}
			d.HasDefault = cfg.defaults[d.Name]
		}
		h.params = append(h.params, d)
	}

	for name := range cfg.bindings {
		if !seen[name] {
			return nil, fmt.Errorf("invoker: binding for unknown parameter %q", name)
		}
	}
	for name := range cfg.unions {
		if !seen[name] {
			return nil, fmt.Errorf("invoker: union for unknown parameter %q", name)
		}
	}
	for name := range cfg.defaults {
		if !seen[name] {
			return nil, fmt.Errorf("invoker: default for unknown parameter %q", name)
		}
	}
	return h, nil
}

// Params returns the handler's parameter descriptors in declaration order.
func (h *Handler) Params() []ParameterDescriptor { return h.params }
