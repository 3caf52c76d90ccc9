package invoker

import (
	"fmt"
	"reflect"
)

// Resolver produces at most one value for a handler parameter. Resolvers
// run in priority order; the first to report ok wins. A resolver that has
// nothing to contribute declines with ok false and a nil error: declining
// is routine, erroring is fatal for the call.
type Resolver interface {
	Resolve(d ParameterDescriptor, inv *Invocation) (value any, ok bool, err error)
}

// ResolverFunc is a function adapter for Resolver.
type ResolverFunc func(d ParameterDescriptor, inv *Invocation) (any, bool, error)

// Resolve implements the Resolver interface.
func (f ResolverFunc) Resolve(d ParameterDescriptor, inv *Invocation) (any, bool, error) {
	return f(d, inv)
}

// namedResolver lets hooks report which resolver produced a value.
type namedResolver interface {
	Name() string
}

func resolverName(r Resolver) string {
	if n, ok := r.(namedResolver); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", r)
}

// routeParamResolver feeds parameters from the raw named values. An
// explicit binding names the lookup key; otherwise the parameter's own
// name is the key, but only when the value bag actually contains it. A
// missing key is a decline, not an error, since absence can be legitimate for
// optional parameters.
type routeParamResolver struct {
	cons *Constructors
}

func (r *routeParamResolver) Name() string { return "route-params" }

func (r *routeParamResolver) Resolve(d ParameterDescriptor, inv *Invocation) (any, bool, error) {
	key := d.Binding
	if key == "" {
		key = d.Name
	}
	if key == "" {
		return nil, false, nil
	}
	raw, present := inv.Params[key]
	if !present {
		return nil, false, nil
	}

	if len(d.Types) == 0 {
		return raw, true, nil
	}
	if ref := singleRef(d.Types); ref != nil {
		return r.construct(d, ref, raw)
	}

	if !Accepts(d.Types, d.Nullable, raw) {
		return nil, false, fmt.Errorf("invoker: route value %q: %w", key, rejected(d, raw))
	}
	if d.rtype == nil || d.rtype.Kind() == reflect.Interface {
		return raw, true, nil
	}
	v, err := coerce(d.rtype, raw)
	if err != nil {
		return nil, false, fmt.Errorf("invoker: route value %q: %w", key, err)
	}
	return v, true, nil
}

// construct delegates a reference-typed parameter to the construction
// registry, taking addresses for pointer parameters.
func (r *routeParamResolver) construct(d ParameterDescriptor, ref reflect.Type, raw any) (any, bool, error) {
	target := ref
	ptr := ref.Kind() == reflect.Pointer && ref.Elem().Kind() != reflect.Interface
	if ptr {
		target = ref.Elem()
	}
	instance, err := r.cons.Construct(target, raw)
	if err != nil {
		return nil, false, err
	}
	if ptr {
		pv := reflect.New(target)
		pv.Elem().Set(reflect.ValueOf(instance))
		return pv.Interface(), true, nil
	}
	return instance, true, nil
}

// singleRef returns the reference when the declared set is exactly one
// class/interface reference.
func singleRef(types []Type) reflect.Type {
	if len(types) == 1 && types[0].Ref != nil {
		return types[0].Ref
	}
	return nil
}

func rejected(d ParameterDescriptor, raw any) error {
	return fmt.Errorf("value %#v not accepted by parameter %q", raw, d.Name)
}

// payloadAliases are the reserved parameter names that always receive the
// call's payload object.
var payloadAliases = map[string]bool{
	"data":    true,
	"payload": true,
	"input":   true,
}

// payloadResolver yields the payload for parameters named by a reserved
// alias or declared with the payload's own runtime type.
type payloadResolver struct{}

func (payloadResolver) Name() string { return "payload" }

func (payloadResolver) Resolve(d ParameterDescriptor, inv *Invocation) (any, bool, error) {
	if inv.Payload == nil {
		return nil, false, nil
	}
	if payloadAliases[d.Name] {
		return inv.Payload, true, nil
	}
	if ref := singleRef(d.Types); ref != nil && instanceOf(ref, inv.Payload) {
		return inv.Payload, true, nil
	}
	return nil, false, nil
}

// operationResolver yields the call's *Operation for operation-typed
// parameters. A nullable parameter of this kind always resolves: when no
// operation is present it yields nil rather than declining, so the
// parameter never surfaces as unresolved.
type operationResolver struct{}

func (operationResolver) Name() string { return "operation" }

var operationType = reflect.TypeOf((*Operation)(nil))

func (operationResolver) Resolve(d ParameterDescriptor, inv *Invocation) (any, bool, error) {
	ref := singleRef(d.Types)
	if ref == nil {
		return nil, false, nil
	}
	if ref == operationType.Elem() {
		if inv.Operation == nil {
			return nil, false, nil
		}
		return *inv.Operation, true, nil
	}
	match := ref == operationType ||
		(ref.Kind() == reflect.Interface && operationType.Implements(ref) && ref.NumMethod() > 0)
	if !match {
		return nil, false, nil
	}
	if inv.Operation != nil {
		return inv.Operation, true, nil
	}
	if d.Nullable {
		return nil, true, nil
	}
	return nil, false, nil
}
