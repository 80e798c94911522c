package value

import "testing"

func TestGetColorCachesStringParse(t *testing.T) {
	v := NewString("red")
	c1, ok1 := v.GetColor()
	if !ok1 {
		t.Fatalf("expected red to parse")
	}
	if c1.R != 1 || c1.G != 0 || c1.B != 0 {
		t.Errorf("got %+v, want opaque red", c1)
	}
	if v.colorCache != colorCacheSet {
		t.Fatalf("expected cache state Set, got %v", v.colorCache)
	}
	c2, ok2 := v.GetColor()
	if !ok2 || c2 != c1 {
		t.Errorf("second GetColor = %+v, %v, want %+v, true", c2, ok2, c1)
	}
}

func TestGetColorCachesInvalid(t *testing.T) {
	v := NewString("not-a-color")
	if _, ok := v.GetColor(); ok {
		t.Fatalf("expected parse failure")
	}
	if v.colorCache != colorCacheInvalid {
		t.Fatalf("expected cache state Invalid, got %v", v.colorCache)
	}
	if _, ok := v.GetColor(); ok {
		t.Fatalf("second call should still fail")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null equals null", Null, Null, true},
		{"number exact", NewNumber(1.5), NewNumber(1.5), true},
		{"number mismatch", NewNumber(1.5), NewNumber(1.6), false},
		{"string exact", NewString("a"), NewString("a"), true},
		{"kind mismatch", NewString("1"), NewNumber(1), false},
		{"color exact", NewColor(RGBA{1, 0, 0, 1}), NewColor(RGBA{1, 0, 0, 1}), true},
		{
			"array element-wise",
			NewArray([]Value{NewNumber(1), NewString("x")}),
			NewArray([]Value{NewNumber(1), NewString("x")}),
			true,
		},
		{
			"array length mismatch",
			NewArray([]Value{NewNumber(1)}),
			NewArray([]Value{NewNumber(1), NewNumber(2)}),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null, ""},
		{"true", NewBoolean(true), "true"},
		{"false", NewBoolean(false), "false"},
		{"number", NewNumber(1.5), "1.5"},
		{"nan", NewNumber(nan()), "NaN"},
		{"posinf", NewNumber(posInf()), "Infinity"},
		{"neginf", NewNumber(negInf()), "-Infinity"},
		{"string", NewString("hi"), "hi"},
		{"color", NewColor(RGBA{1, 0, 0, 1}), "rgba(255,0,0,1)"},
		{
			"array with string",
			NewArray([]Value{NewString("a"), NewNumber(2)}),
			`["a",2]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetFromJSONLiteralRejectsObjects(t *testing.T) {
	var v Value
	if err := v.SetFromJSONLiteral(map[string]any{"a": 1}); err == nil {
		t.Fatalf("expected error for object literal")
	}
}

func TestSetFromJSONLiteralNestedArray(t *testing.T) {
	var v Value
	err := v.SetFromJSONLiteral([]any{float64(1), "two", []any{float64(3)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr, ok := v.GetArray()
	if !ok || len(arr) != 3 {
		t.Fatalf("GetArray() = %v, %v", arr, ok)
	}
	inner, ok := arr[2].GetArray()
	if !ok || len(inner) != 1 {
		t.Fatalf("inner array = %v, %v", inner, ok)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := NewArray([]Value{NewString("a")})
	clone := orig.Clone()
	// Mutate the original's backing array; the clone must be unaffected.
	orig.arr[0] = NewString("mutated")
	got, _ := clone.GetArray()
	if s, _ := got[0].GetString(); s != "a" {
		t.Errorf("clone observed mutation: got %q, want %q", s, "a")
	}
}

func nan() float64     { var z float64; return z / z }
func posInf() float64  { var z float64; return 1 / z }
func negInf() float64  { var z float64; return -1 / z }
