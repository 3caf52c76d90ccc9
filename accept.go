package invoker

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Accepts reports whether a raw value satisfies a declared type set.
//
// An empty type set accepts everything: an untyped parameter places no
// constraint on its value. A nil value is accepted only when the parameter
// is nullable.
//
// A single primitive kind is matched leniently: a string parameter accepts
// numbers, bools and fmt.Stringer values; an int parameter accepts integer
// strings; a float parameter accepts ints and numeric strings; a bool
// parameter accepts the literal set {true, false, "true", "false", "1",
// "0", 1, 0}. A union of two or more branches is matched strictly per
// branch: declaring a union signals the caller discriminates on exact
// kind, so no cross-kind coercion applies and e.g. string|int rejects a
// float.
//
// A reference branch accepts any non-nil value whose type is, or
// implements, the referenced type.
func Accepts(types []Type, nullable bool, value any) bool {
	if value == nil {
		return nullable || len(types) == 0
	}
	if len(types) == 0 {
		return true
	}
	strict := len(types) > 1
	for _, t := range types {
		if t.accepts(value, strict) {
			return true
		}
	}
	return false
}

func (t Type) accepts(value any, strict bool) bool {
	if t.Ref != nil {
		return instanceOf(t.Ref, value)
	}
	vk, ok := valueKind(value)
	if t.Kind == KindAny {
		return true
	}
	if strict {
		return ok && vk == t.Kind
	}
	switch t.Kind {
	case KindString:
		if vk == KindString || vk == KindInt || vk == KindFloat || vk == KindBool {
			return true
		}
		_, stringable := value.(fmt.Stringer)
		return stringable
	case KindInt:
		if vk == KindInt {
			return true
		}
		if s, isStr := stringValue(value); isStr {
			_, err := strconv.ParseInt(s, 10, 64)
			return err == nil
		}
		return false
	case KindFloat:
		if vk == KindFloat || vk == KindInt {
			return true
		}
		if s, isStr := stringValue(value); isStr {
			_, err := strconv.ParseFloat(s, 64)
			return err == nil
		}
		return false
	case KindBool:
		return inBoolSet(value)
	case KindSlice:
		return vk == KindSlice
	case KindMap:
		return vk == KindMap
	}
	return false
}

// instanceOf reports whether value is a non-nil instance of ref, directly
// or through interface implementation.
func instanceOf(ref reflect.Type, value any) bool {
	vt := reflect.TypeOf(value)
	if vt == nil {
		return false
	}
	if vt == ref {
		return true
	}
	if ref.Kind() == reflect.Interface {
		return vt.Implements(ref)
	}
	return false
}

// stringValue unwraps a value with string kind, including defined string
// types.
func stringValue(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// inBoolSet reports membership in the canonical truthy/falsy literal set.
func inBoolSet(v any) bool {
	switch x := v.(type) {
	case bool:
		return true
	case string:
		return x == "true" || x == "false" || x == "1" || x == "0"
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int() == 0 || rv.Int() == 1
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return rv.Uint() == 0 || rv.Uint() == 1
		}
	}
	return false
}

// coerce narrows a raw value to a concrete Go type: integer strings to
// ints, numeric strings to floats, scalars and Stringers to strings, the
// canonical literal set to bools. Coercion always targets the consuming
// parameter's own type, never the type the caller originally declared.
func coerce(target reflect.Type, value any) (any, error) {
	if value == nil {
		if canBeNil(target) {
			return reflect.Zero(target).Interface(), nil
		}
		return nil, fmt.Errorf("cannot use nil as %s", target)
	}
	rv := reflect.ValueOf(value)
	if rv.Type() == target {
		return value, nil
	}

	switch target.Kind() {
	case reflect.String:
		s, err := coerceString(value)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(s).Convert(target).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := coerceInt(value)
		if err != nil {
			return nil, err
		}
		if reflect.Zero(target).OverflowInt(n) {
			return nil, fmt.Errorf("value %d overflows %s", n, target)
		}
		return reflect.ValueOf(n).Convert(target).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := coerceUint(value)
		if err != nil {
			return nil, err
		}
		if reflect.Zero(target).OverflowUint(u) {
			return nil, fmt.Errorf("value %d overflows %s", u, target)
		}
		return reflect.ValueOf(u).Convert(target).Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := coerceFloat(value)
		if err != nil {
			return nil, err
		}
		if reflect.Zero(target).OverflowFloat(f) {
			return nil, fmt.Errorf("value %v overflows %s", f, target)
		}
		return reflect.ValueOf(f).Convert(target).Interface(), nil
	case reflect.Bool:
		b, err := coerceBool(value)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(b).Convert(target).Interface(), nil
	}

	if rv.Type().AssignableTo(target) {
		return value, nil
	}
	return nil, fmt.Errorf("cannot use %T as %s", value, target)
}

func coerceString(v any) (string, error) {
	if s, ok := stringValue(v); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return "", fmt.Errorf("cannot use %T as string", v)
}

func coerceInt(v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.String:
		n, err := strconv.ParseInt(rv.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot use %q as int", rv.String())
		}
		return n, nil
	}
	return 0, fmt.Errorf("cannot use %T as int", v)
}

func coerceUint(v any) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return 0, fmt.Errorf("cannot use negative value %d as uint", n)
		}
		return uint64(n), nil
	case reflect.String:
		u, err := strconv.ParseUint(rv.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot use %q as uint", rv.String())
		}
		return u, nil
	}
	return 0, fmt.Errorf("cannot use %T as uint", v)
}

func coerceFloat(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.String:
		f, err := strconv.ParseFloat(rv.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot use %q as float", rv.String())
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot use %T as float", v)
}

func coerceBool(v any) (bool, error) {
	if !inBoolSet(v) {
		return false, fmt.Errorf("cannot use %#v as bool", v)
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return x == "true" || x == "1", nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 1, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 1, nil
	}
	return false, fmt.Errorf("cannot use %#v as bool", v)
}

// canBeNil reports whether the zero value of t is nil.
func canBeNil(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	}
	return false
}
