package invoker

import (
	"fmt"
	"reflect"
	"strings"
)

// InvalidTaggedStrategyError is returned when a type's tagged construction
// method fails shape validation: the named candidate is missing, is not a
// func, does not take exactly one parameter, or does not return the target
// type.
type InvalidTaggedStrategyError struct {
	Target reflect.Type
	Method string
	Reason string
}

func (e *InvalidTaggedStrategyError) Error() string {
	return fmt.Sprintf("invoker: tagged construction method %q for %s is invalid: %s", e.Method, e.Target, e.Reason)
}

// RejectedValueError is returned when a raw value is not accepted by the
// parameter of the construction method chosen by a type's tag.
type RejectedValueError struct {
	Target reflect.Type
	Method string
	Value  any
}

func (e *RejectedValueError) Error() string {
	return fmt.Sprintf("invoker: value %#v rejected by tagged construction method %q for %s", e.Value, e.Method, e.Target)
}

// NoConstructionStrategyError is returned when an untagged type has no
// eligible construction candidate for a given raw value.
type NoConstructionStrategyError struct {
	Target reflect.Type
}

func (e *NoConstructionStrategyError) Error() string {
	return fmt.Sprintf("invoker: no usable constructor for %s", e.Target)
}

// AmbiguousConstructionError is returned when an untagged type has two or
// more eligible construction candidates for a given raw value. Tag one of
// the candidates to make the choice explicit.
type AmbiguousConstructionError struct {
	Target     reflect.Type
	Candidates []string
}

func (e *AmbiguousConstructionError) Error() string {
	return fmt.Sprintf("invoker: ambiguous construction for %s: candidates %s; tag one with Tagged",
		e.Target, strings.Join(e.Candidates, ", "))
}

// MissingCarrierError is returned when a bridge is invoked without a
// carrier. The dynamic path is carrier-only.
type MissingCarrierError struct {
	Handler string
}

func (e *MissingCarrierError) Error() string {
	return fmt.Sprintf("invoker: handler %q invoked without a carrier", e.Handler)
}

// InvalidResultShapeError is returned when a handler's result does not
// satisfy the bridge's cardinality rule: a write handler must return a
// non-nil object; a read handler must return nil, an object, or a
// collection.
type InvalidResultShapeError struct {
	Handler string
	Result  any
	Want    string
}

func (e *InvalidResultShapeError) Error() string {
	return fmt.Sprintf("invoker: handler %q returned %T, want %s", e.Handler, e.Result, e.Want)
}

// UnresolvedParameterError is returned when no resolver produced a value
// for a required handler parameter.
type UnresolvedParameterError struct {
	Handler   string
	Parameter string
}

func (e *UnresolvedParameterError) Error() string {
	return fmt.Sprintf("invoker: no resolver produced a value for parameter %q of handler %q", e.Parameter, e.Handler)
}
