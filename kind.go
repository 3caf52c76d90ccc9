package invoker

import "reflect"

// Kind is a primitive kind for declared parameter types. It abstracts over
// the concrete Go type so acceptance rules can be stated once for every
// integer or float width.
type Kind int

const (
	// KindAny accepts every value, including nil.
	KindAny Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindSlice
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindSlice:
		return "slice"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Type is one declared type reference: either a primitive kind or a
// class/interface reference. A declared type set of size two or more is a
// union; unions are matched strictly per branch (see Accepts).
type Type struct {
	Kind Kind
	Ref  reflect.Type
}

// Prim declares a primitive kind branch.
func Prim(k Kind) Type { return Type{Kind: k} }

// RefTo declares a class/interface reference branch for the type of v.
// Pass a zero value, or a nil pointer for interface types:
//
//	invoker.RefTo(CompanyID{})
//	invoker.RefTo((*fmt.Stringer)(nil))
func RefTo(v any) Type { return Type{Ref: refType(v)} }

// refType normalizes a value or reflect.Type into the referenced type.
// A *T pointer where T is an interface designates the interface itself.
func refType(v any) reflect.Type {
	if t, ok := v.(reflect.Type); ok {
		return t
	}
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface {
		return t.Elem()
	}
	return t
}

// typeOf maps a concrete Go parameter type onto a declared Type. Builtin
// scalars and unnamed composites are primitive kinds; named types are
// references, so a defined value-object type like `type CompanyID string`
// goes through construction rather than scalar coercion.
func typeOf(t reflect.Type) Type {
	if t.PkgPath() == "" {
		if k, ok := kindOf(t); ok {
			return Type{Kind: k}
		}
	}
	return Type{Ref: t}
}

// kindOf reports the primitive kind of a Go type, if it has one. Struct,
// pointer, interface, func and channel types are references, not kinds.
func kindOf(t reflect.Type) (Kind, bool) {
	switch t.Kind() {
	case reflect.String:
		return KindString, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt, true
	case reflect.Float32, reflect.Float64:
		return KindFloat, true
	case reflect.Bool:
		return KindBool, true
	case reflect.Slice, reflect.Array:
		return KindSlice, true
	case reflect.Map:
		return KindMap, true
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return KindAny, true
		}
	}
	return 0, false
}

// valueKind reports the primitive kind of a runtime value.
func valueKind(v any) (Kind, bool) {
	if v == nil {
		return 0, false
	}
	return kindOf(reflect.TypeOf(v))
}
