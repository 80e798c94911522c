package expr

import (
	"encoding/json"
	"testing"

	"github.com/gogpu/vectortile/value"
)

type fakeScope struct {
	zoom    float64
	tags    map[string]value.Value
	geom    string
	id      value.Value
	hasID   bool
	locale  string
	sprites map[string]value.Value
}

func (s *fakeScope) Zoom() float64 { return s.zoom }
func (s *fakeScope) GetTag(key string) (value.Value, bool) {
	v, ok := s.tags[key]
	return v, ok
}
func (s *fakeScope) GeometryType() string { return s.geom }
func (s *fakeScope) FeatureID() (value.Value, bool) {
	return s.id, s.hasID
}
func (s *fakeScope) ResolveImage(name string) (value.Value, bool) {
	v, ok := s.sprites[name]
	return v, ok
}
func (s *fakeScope) ScaleFactor() float64 { return 1 }
func (s *fakeScope) Locale() string       { return s.locale }

func compileJSON(t *testing.T, src string) *Expression {
	t.Helper()
	var j any
	if err := json.Unmarshal([]byte(src), &j); err != nil {
		t.Fatalf("json: %v", err)
	}
	e, err := Compile(j)
	if err != nil {
		t.Fatalf("Compile(%s): %v", src, err)
	}
	return e
}

// TestComparisonSugar is scenario S1: `["==", "class", "primary"]` means
// get(class) == "primary".
func TestComparisonSugar(t *testing.T) {
	e := compileJSON(t, `["==", "class", "primary"]`)
	scope := &fakeScope{tags: map[string]value.Value{"class": value.NewString("primary")}}
	v, err := e.Eval(scope)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if b, _ := v.GetBoolean(); !b {
		t.Fatalf("got %v, want true", v)
	}

	ff := e.FastFilter()
	if ff == nil || len(ff.Equals) != 1 || ff.Equals[0].Field != "class" {
		t.Fatalf("FastFilter = %+v, want one equals(class)", ff)
	}
}

// TestInterpolateExponential is scenario S2.
func TestInterpolateExponential(t *testing.T) {
	e := compileJSON(t, `["interpolate", ["exponential"], ["zoom"], 12, 1, 13, 2, 14, 5, 16, 9]`)
	for _, tc := range []struct {
		zoom float64
		want float64
	}{
		{12.5, 1.5},
		{1, 1.0},
		{100, 9.0},
	} {
		v, err := e.Eval(&fakeScope{zoom: tc.zoom})
		if err != nil {
			t.Fatalf("Eval at zoom %v: %v", tc.zoom, err)
		}
		f, _ := v.GetNumber()
		if f != tc.want {
			t.Errorf("zoom %v: got %v, want %v", tc.zoom, f, tc.want)
		}
	}
}

// TestInterpolateAtStop checks exact stop equality (property 2 in spec.md §8).
func TestInterpolateAtStop(t *testing.T) {
	e := compileJSON(t, `["interpolate", ["linear"], ["zoom"], 14, 5]`)
	v, err := e.Eval(&fakeScope{zoom: 14})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	f, _ := v.GetNumber()
	if f != 5 {
		t.Errorf("got %v, want 5", f)
	}
}

// TestFormatWithColor is scenario S3.
func TestFormatWithColor(t *testing.T) {
	e := compileJSON(t, `["format", "Hello ", ["concat","world","!"], {"font-scale":0.1}, "\n", {"text-color":["coalesce","red"]}, null, "test"]`)
	v, err := e.Eval(&fakeScope{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	parts, ok := v.GetFormatted()
	if !ok {
		t.Fatalf("not a formatted value: %v", v)
	}
	if len(parts) != 4 {
		t.Fatalf("got %d parts, want 4: %+v", len(parts), parts)
	}
	if parts[1].Text != "world!" || !parts[1].HasFontScale || parts[1].FontScale != 0.1 {
		t.Errorf("part[1] = %+v", parts[1])
	}
	if parts[2].Text != "\n" || !parts[2].HasColor {
		t.Errorf("part[2] = %+v", parts[2])
	}
	if v.String() != "Hello world!\ntest" {
		t.Errorf("as_string = %q", v.String())
	}
}

// TestSliceNegativeIndices is scenario S6.
func TestSliceNegativeIndices(t *testing.T) {
	e := compileJSON(t, `["slice", ["literal", ["a","b","c"]], -2]`)
	v, err := e.Eval(&fakeScope{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	arr, _ := v.GetArray()
	if len(arr) != 2 || mustString(arr[0]) != "b" || mustString(arr[1]) != "c" {
		t.Errorf("got %v, want [b c]", arr)
	}

	e2 := compileJSON(t, `["slice", "abc", 0, -1]`)
	v2, err := e2.Eval(&fakeScope{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if s, _ := v2.GetString(); s != "ab" {
		t.Errorf("got %q, want \"ab\"", s)
	}
}

func TestStepMonotonic(t *testing.T) {
	e := compileJSON(t, `["step", ["zoom"], "a", 5, "b", 10, "c"]`)
	for _, tc := range []struct {
		zoom float64
		want string
	}{
		{0, "a"}, {4.9, "a"}, {5, "b"}, {9.9, "b"}, {10, "c"}, {50, "c"},
	} {
		v, err := e.Eval(&fakeScope{zoom: tc.zoom})
		if err != nil {
			t.Fatalf("Eval at %v: %v", tc.zoom, err)
		}
		if s, _ := v.GetString(); s != tc.want {
			t.Errorf("zoom %v: got %q, want %q", tc.zoom, s, tc.want)
		}
	}
}

func TestCaseMatchCoalesce(t *testing.T) {
	e := compileJSON(t, `["case", ["==", ["get","x"], 1], "one", "other"]`)
	v, err := e.Eval(&fakeScope{tags: map[string]value.Value{"x": value.NewNumber(1)}})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if s, _ := v.GetString(); s != "one" {
		t.Errorf("got %q", s)
	}

	m := compileJSON(t, `["match", ["get","class"], ["a","b"], "AB", "c", "C", "other"]`)
	v2, err := m.Eval(&fakeScope{tags: map[string]value.Value{"class": value.NewString("b")}})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if s, _ := v2.GetString(); s != "AB" {
		t.Errorf("match got %q, want AB", s)
	}

	c := compileJSON(t, `["coalesce", ["get","missing"], "fallback"]`)
	v3, err := c.Eval(&fakeScope{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if s, _ := v3.GetString(); s != "fallback" {
		t.Errorf("coalesce got %q", s)
	}
}

func TestLetVar(t *testing.T) {
	e := compileJSON(t, `["let", "a", 2, "b", ["*", ["var","a"], 3], ["+", ["var","a"], ["var","b"]]]`)
	v, err := e.Eval(&fakeScope{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	f, _ := v.GetNumber()
	if f != 8 {
		t.Errorf("got %v, want 8", f)
	}
}

func TestStringSugarPlaceholder(t *testing.T) {
	e := compileJSON(t, `"{name_en}, pop {population}"`)
	v, err := e.Eval(&fakeScope{tags: map[string]value.Value{
		"name_en":    value.NewString("Springfield"),
		"population": value.NewNumber(100),
	}})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if s, _ := v.GetString(); s != "Springfield, pop 100" {
		t.Errorf("got %q", s)
	}
}

func TestToNumberFallthrough(t *testing.T) {
	e := compileJSON(t, `["to-number", "not a number", 42]`)
	v, err := e.Eval(&fakeScope{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	f, _ := v.GetNumber()
	if f != 42 {
		t.Errorf("got %v, want 42", f)
	}
}

// TestToStringOfNaN covers spec.md §4.3's NaN/Infinity as_string carve-out:
// 0/0 is allowed to evaluate to NaN rather than failing the expression, so
// that to-string(0/0) can canonically render "NaN".
func TestToStringOfNaN(t *testing.T) {
	e := compileJSON(t, `["to-string", ["/", 0, 0]]`)
	v, err := e.Eval(&fakeScope{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if s, _ := v.GetString(); s != "NaN" {
		t.Errorf("got %q, want NaN", s)
	}

	e2 := compileJSON(t, `["to-string", ["/", 1, 0]]`)
	v2, err := e2.Eval(&fakeScope{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if s, _ := v2.GetString(); s != "Infinity" {
		t.Errorf("got %q, want Infinity", s)
	}
}

// TestArithmeticDomainErrors covers the general-context half of the
// NaN/Infinity rule: outside to-string/to-boolean, a non-finite result
// fails the expression rather than propagating.
func TestArithmeticDomainErrors(t *testing.T) {
	cases := []string{
		`["/", 1, 0]`,
		`["/", 0, 0]`,
		`["%", 5, 0]`,
		`["sqrt", -1]`,
		`["ln", -1]`,
		`["ln", 0]`,
		`["log2", 0]`,
		`["log10", -4]`,
		`["asin", 2]`,
		`["acos", -2]`,
		`["+", 1, ["/", 0, 0]]`,
		`["==", ["/", 1, 0], 1e300]`,
	}
	for _, src := range cases {
		e := compileJSON(t, src)
		if _, err := e.Eval(&fakeScope{}); err == nil {
			t.Errorf("%s: want evaluation error, got none", src)
		}
	}
}
