package invoker

import (
	"fmt"
	"reflect"
	"testing"
)

type stringerValue struct{ s string }

func (v stringerValue) String() string { return v.s }

func TestAccepts(t *testing.T) {
	str := []Type{Prim(KindString)}
	integer := []Type{Prim(KindInt)}
	float := []Type{Prim(KindFloat)}
	boolean := []Type{Prim(KindBool)}
	union := []Type{Prim(KindString), Prim(KindInt)}

	tests := []struct {
		name     string
		types    []Type
		nullable bool
		value    any
		want     bool
	}{
		{"untyped accepts anything", nil, false, struct{}{}, true},
		{"untyped accepts nil", nil, false, nil, true},
		{"nil rejected when not nullable", str, false, nil, false},
		{"nil accepted when nullable", str, true, nil, true},

		{"string accepts string", str, false, "hello", true},
		{"string accepts int", str, false, 42, true},
		{"string accepts float", str, false, 1.5, true},
		{"string accepts bool", str, false, true, true},
		{"string accepts stringer", str, false, stringerValue{"x"}, true},
		{"string rejects slice", str, false, []any{1}, false},

		{"int accepts int", integer, false, 123, true},
		{"int accepts numeric string", integer, false, "123", true},
		{"int rejects non-numeric string", integer, false, "abc", false},
		{"int rejects float", integer, false, 1.5, false},
		{"int rejects fractional string", integer, false, "1.5", false},

		{"float accepts float", float, false, 1.5, true},
		{"float accepts int", float, false, 3, true},
		{"float accepts numeric string", float, false, "1.5", true},
		{"float rejects word", float, false, "abc", false},

		{"bool accepts true literal", boolean, false, true, true},
		{"bool accepts string true", boolean, false, "true", true},
		{"bool accepts string zero", boolean, false, "0", true},
		{"bool accepts int one", boolean, false, 1, true},
		{"bool rejects int two", boolean, false, 2, false},
		{"bool rejects yes", boolean, false, "yes", false},

		{"slice accepts slice", []Type{Prim(KindSlice)}, false, []int{1}, true},
		{"slice rejects string", []Type{Prim(KindSlice)}, false, "x", false},
		{"map accepts map", []Type{Prim(KindMap)}, false, map[string]int{}, true},
		{"map rejects struct", []Type{Prim(KindMap)}, false, struct{}{}, false},
		{"any accepts everything", []Type{Prim(KindAny)}, false, 1.5, true},

		{"union is strict per branch", union, false, 1.5, false},
		{"union matches string branch", union, false, "x", true},
		{"union matches int branch", union, false, 7, true},
		{"union accepts numeric string via string branch", union, false, "123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Accepts(tt.types, tt.nullable, tt.value)
			if got != tt.want {
				t.Errorf("Accepts(%v, %v, %#v) = %v, want %v", tt.types, tt.nullable, tt.value, got, tt.want)
			}
		})
	}
}

func TestAcceptsReference(t *testing.T) {
	t.Run("accepts exact instance", func(t *testing.T) {
		ref := []Type{RefTo(stringerValue{})}
		if !Accepts(ref, false, stringerValue{"x"}) {
			t.Error("expected instance to be accepted")
		}
	})

	t.Run("rejects different type", func(t *testing.T) {
		ref := []Type{RefTo(stringerValue{})}
		if Accepts(ref, false, "x") {
			t.Error("expected string to be rejected")
		}
	})

	t.Run("accepts interface implementation", func(t *testing.T) {
		ref := []Type{RefTo((*fmt.Stringer)(nil))}
		if !Accepts(ref, false, stringerValue{"x"}) {
			t.Error("expected implementer to be accepted")
		}
	})

	t.Run("union of references matches any member", func(t *testing.T) {
		ref := []Type{RefTo(stringerValue{}), RefTo(Operation{})}
		if !Accepts(ref, false, Operation{}) {
			t.Error("expected second member to match")
		}
	})
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name   string
		target reflect.Type
		value  any
		want   any
	}{
		{"numeric string to int", reflect.TypeOf(0), "456", 456},
		{"int to int64", reflect.TypeOf(int64(0)), 7, int64(7)},
		{"int to string", reflect.TypeOf(""), 42, "42"},
		{"bool to string", reflect.TypeOf(""), true, "true"},
		{"stringer to string", reflect.TypeOf(""), stringerValue{"abc"}, "abc"},
		{"numeric string to float", reflect.TypeOf(0.0), "1.5", 1.5},
		{"int to float", reflect.TypeOf(0.0), 2, 2.0},
		{"string one to bool", reflect.TypeOf(false), "1", true},
		{"string false to bool", reflect.TypeOf(false), "false", false},
		{"int zero to bool", reflect.TypeOf(false), 0, false},
		{"numeric string to int8 in range", reflect.TypeOf(int8(0)), "127", int8(127)},
		{"numeric string to uint", reflect.TypeOf(uint(0)), "5", uint(5)},
		{"negative string to int", reflect.TypeOf(0), "-5", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerce(tt.target, tt.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("coerce = %#v, want %#v", got, tt.want)
			}
		})
	}

	t.Run("rejects word as int", func(t *testing.T) {
		if _, err := coerce(reflect.TypeOf(0), "abc"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects out-of-range string for int8", func(t *testing.T) {
		if _, err := coerce(reflect.TypeOf(int8(0)), "300"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects negative value for uint", func(t *testing.T) {
		if _, err := coerce(reflect.TypeOf(uint(0)), "-5"); err == nil {
			t.Error("expected error")
		}
		if _, err := coerce(reflect.TypeOf(uint16(0)), -1); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects overflowing int for uint8", func(t *testing.T) {
		if _, err := coerce(reflect.TypeOf(uint8(0)), 300); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects overflowing float for float32", func(t *testing.T) {
		if _, err := coerce(reflect.TypeOf(float32(0)), 1e300); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects arbitrary int as bool", func(t *testing.T) {
		if _, err := coerce(reflect.TypeOf(false), 5); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("nil to pointer target", func(t *testing.T) {
		got, err := coerce(reflect.TypeOf((*Operation)(nil)), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.(*Operation) != nil {
			t.Errorf("got %#v, want typed nil", got)
		}
	})
}
