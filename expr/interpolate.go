package expr

import (
	"math"

	"github.com/gogpu/vectortile/value"
)

type interpKind uint8

const (
	interpLinear interpKind = iota
	interpExponential
	interpCubicBezier
)

type stop struct {
	key Node
	val Node
}

// interpolateNode implements `interpolate(kind, input, k0, v0, k1, v1, ...)`.
// Output lerp is defined for number and color; every other output type
// behaves as a step function (the lower stop wins), per spec.md §4.3.
type interpolateNode struct {
	kind              interpKind
	base              float64 // exponential base
	x1, y1, x2, y2    float64 // cubic-bezier control points
	input             Node
	stops             []stop
}

func (n interpolateNode) Eval(ctx Context) (value.Value, error) {
	in, err := n.input.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	t, ok := in.GetNumber()
	if !ok {
		return value.Value{}, errEval("interpolate", "input must be a number")
	}

	keys := make([]float64, len(n.stops))
	for i, s := range n.stops {
		kv, err := s.key.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		f, ok := kv.GetNumber()
		if !ok {
			return value.Value{}, errEval("interpolate", "stop key must be a number")
		}
		if i > 0 && f < keys[i-1] {
			return value.Value{}, errInvalid("interpolate", "stops must be in non-decreasing order")
		}
		keys[i] = f
	}

	if len(keys) == 0 {
		return value.Value{}, errInvalid("interpolate", "requires at least one stop")
	}
	if t <= keys[0] {
		return n.stops[0].val.Eval(ctx)
	}
	if t >= keys[len(keys)-1] {
		return n.stops[len(n.stops)-1].val.Eval(ctx)
	}

	lo := 0
	for i := 1; i < len(keys); i++ {
		if keys[i] > t {
			lo = i - 1
			break
		}
	}
	k0, k1 := keys[lo], keys[lo+1]
	v0, err := n.stops[lo].val.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	v1, err := n.stops[lo+1].val.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}

	frac := n.fraction(t, k0, k1)
	return lerpValues(v0, v1, frac)
}

// fraction computes the eased progress between k0 and k1 for input t,
// according to the interpolation kind.
func (n interpolateNode) fraction(t, k0, k1 float64) float64 {
	if k1 == k0 {
		return 0
	}
	lin := (t - k0) / (k1 - k0)
	switch n.kind {
	case interpLinear:
		return lin
	case interpExponential:
		if n.base == 1 {
			return lin
		}
		return (math.Pow(n.base, t-k0) - 1) / (math.Pow(n.base, k1-k0) - 1)
	case interpCubicBezier:
		return cubicBezierEase(n.x1, n.y1, n.x2, n.y2, lin)
	default:
		return lin
	}
}

func lerpValues(a, b value.Value, t float64) (value.Value, error) {
	if t <= 0 {
		return a, nil
	}
	if t >= 1 {
		return b, nil
	}
	if a.Kind() == value.KindNumber && b.Kind() == value.KindNumber {
		af, _ := a.GetNumber()
		bf, _ := b.GetNumber()
		return value.NewNumber(af + (bf-af)*t), nil
	}
	if a.Kind() == value.KindColor && b.Kind() == value.KindColor {
		ac, _ := a.GetColor()
		bc, _ := b.GetColor()
		return value.NewColor(ac.Lerp(bc, t)), nil
	}
	// Non-interpolatable type: step behavior, lower stop wins.
	return a, nil
}

func compileInterpolate(op string, raw []any) (Node, error) {
	if len(raw) < 4 {
		return nil, errInvalid(op, "interpolate requires a kind, input, and at least one stop")
	}
	n := interpolateNode{}
	kindArr, ok := raw[0].([]any)
	if !ok || len(kindArr) == 0 {
		return nil, errMalformed(op, "first argument must be an interpolation-kind array")
	}
	kindName, _ := kindArr[0].(string)
	switch kindName {
	case "linear":
		n.kind = interpLinear
	case "exponential":
		n.kind = interpExponential
		n.base = 1
		if len(kindArr) > 1 {
			if f, ok := kindArr[1].(float64); ok {
				n.base = f
			} else {
				return nil, errMalformed(op, "exponential base must be a number")
			}
		}
	case "cubic-bezier":
		n.kind = interpCubicBezier
		if len(kindArr) != 5 {
			return nil, errMalformed(op, "cubic-bezier requires exactly 4 control point numbers")
		}
		coords := make([]float64, 4)
		for i := 0; i < 4; i++ {
			f, ok := kindArr[i+1].(float64)
			if !ok {
				return nil, errMalformed(op, "cubic-bezier control points must be numbers")
			}
			coords[i] = f
		}
		n.x1, n.y1, n.x2, n.y2 = coords[0], coords[1], coords[2], coords[3]
	default:
		return nil, errInvalid(op, "unknown interpolation kind %q", kindName)
	}

	input, err := compile(raw[1])
	if err != nil {
		return nil, err
	}
	n.input = input

	stopsRaw := raw[2:]
	if len(stopsRaw)%2 != 0 {
		return nil, errInvalid(op, "stops must come in (key, value) pairs")
	}
	for i := 0; i < len(stopsRaw); i += 2 {
		kn, err := compile(stopsRaw[i])
		if err != nil {
			return nil, err
		}
		vn, err := compile(stopsRaw[i+1])
		if err != nil {
			return nil, err
		}
		n.stops = append(n.stops, stop{key: kn, val: vn})
	}
	return n, nil
}

// stepNode implements `step(input, below, k1, v1, k2, v2, ...)`.
type stepNode struct {
	input Node
	below Node
	stops []stop
}

func (n stepNode) Eval(ctx Context) (value.Value, error) {
	in, err := n.input.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	t, ok := in.GetNumber()
	if !ok {
		return value.Value{}, errEval("step", "input must be a number")
	}
	result := n.below
	for _, s := range n.stops {
		kv, err := s.key.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		k, ok := kv.GetNumber()
		if !ok {
			return value.Value{}, errEval("step", "stop key must be a number")
		}
		if t < k {
			break
		}
		result = s.val
	}
	return result.Eval(ctx)
}

func compileStep(op string, raw []any) (Node, error) {
	if len(raw) < 3 || len(raw)%2 != 1 {
		return nil, errInvalid(op, "step requires input, a below-value, and (stop, value) pairs")
	}
	input, err := compile(raw[0])
	if err != nil {
		return nil, err
	}
	below, err := compile(raw[1])
	if err != nil {
		return nil, err
	}
	n := stepNode{input: input, below: below}
	for i := 2; i < len(raw); i += 2 {
		kn, err := compile(raw[i])
		if err != nil {
			return nil, err
		}
		vn, err := compile(raw[i+1])
		if err != nil {
			return nil, err
		}
		n.stops = append(n.stops, stop{key: kn, val: vn})
	}
	return n, nil
}

func init() {
	registerSpecialForm("interpolate", compileInterpolate)
	registerSpecialForm("step", compileStep)
}
