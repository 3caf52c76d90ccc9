package invoker

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// Bridge assembles the resolution context for a call, drives the resolver
// chain to build the handler's argument list, invokes the handler and
// validates the result shape.
//
// Two bridges exist per deployment: a write bridge (NewWriteBridge) whose
// handlers receive a payload and must return a non-nil object, and a read
// bridge (NewReadBridge) whose handlers have no payload and may return
// nil, an object or a collection. They share everything else.
//
// Bridge is safe for concurrent use after construction.
type Bridge struct {
	cons  *Constructors
	extra []Resolver
	hooks hooks
	write bool
}

// NewWriteBridge creates the bridge for write-oriented ("process") calls.
func NewWriteBridge(cons *Constructors, opts ...Option) *Bridge {
	return newBridge(cons, true, opts)
}

// NewReadBridge creates the bridge for read-oriented ("provide") calls.
func NewReadBridge(cons *Constructors, opts ...Option) *Bridge {
	return newBridge(cons, false, opts)
}

func newBridge(cons *Constructors, write bool, opts []Option) *Bridge {
	b := &Bridge{cons: cons, write: write}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// chain returns the resolvers in priority order: route values, payload,
// operation, then externally registered resolvers.
func (b *Bridge) chain() []Resolver {
	core := []Resolver{
		&routeParamResolver{cons: b.cons},
		payloadResolver{},
		operationResolver{},
	}
	return append(core, b.extra...)
}

// Invoke runs one dynamic call. The carrier is mandatory: this call path
// is carrier-only and its absence is a configuration error. Raw named
// values are merged into the carrier's attributes without overwriting keys
// the framework already placed there, and the merged set plus the
// operation are recorded under the reserved attribute keys for resolvers
// to read back.
func (b *Bridge) Invoke(ctx context.Context, h *Handler, payload any, op *Operation, params map[string]any, carrier Carrier) (any, error) {
	name := ""
	if op != nil {
		name = op.Handler
	}
	if carrier == nil {
		err := &MissingCarrierError{Handler: name}
		b.fail(ctx, name, err, 0)
		return nil, err
	}

	for key, value := range params {
		if _, taken := carrier.Attribute(key); !taken {
			carrier.SetAttribute(key, value)
		}
	}
	carrier.SetAttribute(AttrRouteParams, params)
	carrier.SetAttribute(AttrOperation, op)

	inv := &Invocation{
		Params:    params,
		Payload:   payload,
		Operation: op,
		Carrier:   carrier,
	}

	start := time.Now()
	args, err := b.resolveArgs(ctx, name, h, inv)
	if err != nil {
		b.fail(ctx, name, err, time.Since(start))
		return nil, err
	}

	for _, fn := range b.hooks.onInvoke {
		fn(ctx, name)
	}

	result, err := h.call(ctx, args)
	duration := time.Since(start)
	if err != nil {
		b.fail(ctx, name, err, duration)
		return nil, err
	}

	if err := b.checkResult(name, result); err != nil {
		b.fail(ctx, name, err, duration)
		return nil, err
	}

	for _, fn := range b.hooks.onSuccess {
		fn(ctx, name, duration)
	}
	return result, nil
}

func (b *Bridge) fail(ctx context.Context, name string, err error, duration time.Duration) {
	for _, fn := range b.hooks.onFailure {
		fn(ctx, name, err, duration)
	}
}

// resolveArgs walks the handler's parameters in declaration order and asks
// the chain for each value. An unresolved parameter is fatal unless it is
// variadic, defaulted or nullable.
func (b *Bridge) resolveArgs(ctx context.Context, name string, h *Handler, inv *Invocation) ([]reflect.Value, error) {
	chain := b.chain()
	args := make([]reflect.Value, 0, len(h.params))

	for _, d := range h.params {
		value, ok, err := resolveParam(chain, d, inv)
		if err != nil {
			return nil, err
		}
		if ok {
			for _, fn := range b.hooks.onResolve {
				fn(ctx, name, d.Name, value.resolver)
			}
			av, err := argValue(d, value.v)
			if err != nil {
				return nil, err
			}
			args = append(args, av)
			continue
		}

		switch {
		case d.Variadic:
			// Omitted: the call simply passes no variadic elements.
		case d.HasDefault, d.Nullable:
			args = append(args, reflect.Zero(d.rtype))
		default:
			return nil, &UnresolvedParameterError{Handler: name, Parameter: d.Name}
		}
	}
	return args, nil
}

type resolved struct {
	v        any
	resolver string
}

func resolveParam(chain []Resolver, d ParameterDescriptor, inv *Invocation) (resolved, bool, error) {
	for _, r := range chain {
		v, ok, err := r.Resolve(d, inv)
		if err != nil {
			return resolved{}, false, err
		}
		if ok {
			return resolved{v: v, resolver: resolverName(r)}, true, nil
		}
	}
	return resolved{}, false, nil
}

// argValue converts a resolved value into the parameter's Go type.
func argValue(d ParameterDescriptor, v any) (reflect.Value, error) {
	if v == nil {
		if !d.Nullable {
			return reflect.Value{}, fmt.Errorf("invoker: nil resolved for non-nullable parameter %q", d.Name)
		}
		return reflect.Zero(d.rtype), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == d.rtype || rv.Type().AssignableTo(d.rtype) {
		return rv, nil
	}
	out, err := coerce(d.rtype, v)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("invoker: cannot pass %T as parameter %q: %w", v, d.Name, err)
	}
	return reflect.ValueOf(out), nil
}

// call invokes the handler func, prepending the context when the
// signature declares one, and splits the outputs into result and error.
func (h *Handler) call(ctx context.Context, args []reflect.Value) (any, error) {
	in := args
	if h.hasContext {
		in = append([]reflect.Value{reflect.ValueOf(ctx)}, args...)
	}
	var out []reflect.Value
	if h.fn.Type().IsVariadic() && len(in) == h.fn.Type().NumIn() &&
		in[len(in)-1].IsValid() && in[len(in)-1].Kind() == reflect.Slice {
		out = h.fn.CallSlice(in)
	} else {
		out = h.fn.Call(in)
	}

	var result any
	var err error
	switch {
	case h.hasResult && h.hasErr:
		result = out[0].Interface()
		if !out[1].IsNil() {
			err = out[1].Interface().(error)
		}
	case h.hasResult:
		result = out[0].Interface()
	case h.hasErr:
		if !out[0].IsNil() {
			err = out[0].Interface().(error)
		}
	}
	return result, err
}

// checkResult enforces the bridge's result cardinality rule.
func (b *Bridge) checkResult(name string, result any) error {
	if b.write {
		if !isObject(result) {
			return &InvalidResultShapeError{Handler: name, Result: result, Want: "a non-nil object"}
		}
		return nil
	}
	if isNilResult(result) || isObject(result) || isIterable(result) {
		return nil
	}
	return &InvalidResultShapeError{Handler: name, Result: result, Want: "nil, an object or a collection"}
}

// isNilResult reports whether v is nil or a typed nil, which a read
// handler legitimately returns as "not found".
func isNilResult(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// isObject reports whether v is a non-nil struct, pointer or map value. A
// read can legitimately return "not found" as nil; a write cannot.
func isObject(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Struct:
		return true
	case reflect.Pointer, reflect.Map:
		return !rv.IsNil()
	}
	return false
}

func isIterable(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}
