package expr

import (
	"math"

	"github.com/gogpu/vectortile/value"
)

// arithmeticNode covers every numeric operator: binary/variadic arithmetic
// and the single-argument math functions. fn receives the already-evaluated
// numeric arguments.
type arithmeticNode struct {
	op   string
	args []Node
	fn   func(args []float64) (float64, error)
}

func (n arithmeticNode) Eval(ctx Context) (value.Value, error) {
	nums := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		f, ok := v.GetNumber()
		if !ok {
			return value.Value{}, errEval(n.op, "argument %d is not a number", i)
		}
		nums[i] = f
	}
	r, err := n.fn(nums)
	if err != nil {
		return value.Value{}, &Error{Kind: Eval, Op: n.op, Msg: err.Error()}
	}
	if !ctx.nonFiniteOK && (math.IsNaN(r) || math.IsInf(r, 0)) {
		return value.Value{}, errEval(n.op, "result is not a finite number")
	}
	return value.NewNumber(r), nil
}

func buildArithmetic(fn func(args []float64) (float64, error)) func(string, []Node) (Node, error) {
	return func(op string, args []Node) (Node, error) {
		return arithmeticNode{op: op, args: args, fn: fn}, nil
	}
}

func sum(a []float64) (float64, error) {
	t := 0.0
	for _, v := range a {
		t += v
	}
	return t, nil
}

func product(a []float64) (float64, error) {
	t := 1.0
	for _, v := range a {
		t *= v
	}
	return t, nil
}

func sub(a []float64) (float64, error) {
	if len(a) == 1 {
		return -a[0], nil
	}
	return a[0] - a[1], nil
}

// div, mod, pow, and the unary math ops below are deliberately allowed to
// compute NaN/Inf (matching shumate-vector-expression-filter.c's
// EXPR_DIV/EXPR_REM/EXPR_POW handling of a zero divisor or an out-of-domain
// unary argument): arithmeticNode.Eval is what turns a non-finite result
// into a domain-error failure, except when evaluated directly under
// to-string/to-boolean (Context.nonFiniteOK), which classify NaN/Infinity
// instead of failing.
func div(a []float64) (float64, error) { return a[0] / a[1], nil }
func mod(a []float64) (float64, error) { return math.Mod(a[0], a[1]), nil }
func pow(a []float64) (float64, error) { return math.Pow(a[0], a[1]), nil }

func unary(f func(float64) float64) func([]float64) (float64, error) {
	return func(a []float64) (float64, error) { return f(a[0]), nil }
}

func minOf(a []float64) (float64, error) {
	m := a[0]
	for _, v := range a[1:] {
		m = math.Min(m, v)
	}
	return m, nil
}

func maxOf(a []float64) (float64, error) {
	m := a[0]
	for _, v := range a[1:] {
		m = math.Max(m, v)
	}
	return m, nil
}

func init() {
	registerOperator("+", opSpec{minArgs: 1, maxArgs: -1, build: buildArithmetic(sum)})
	registerOperator("*", opSpec{minArgs: 1, maxArgs: -1, build: buildArithmetic(product)})
	registerOperator("-", opSpec{minArgs: 1, maxArgs: 2, build: buildArithmetic(sub)})
	registerOperator("/", opSpec{minArgs: 2, maxArgs: 2, build: buildArithmetic(div)})
	registerOperator("%", opSpec{minArgs: 2, maxArgs: 2, build: buildArithmetic(mod)})
	registerOperator("^", opSpec{minArgs: 2, maxArgs: 2, build: buildArithmetic(pow)})
	registerOperator("min", opSpec{minArgs: 1, maxArgs: -1, build: buildArithmetic(minOf)})
	registerOperator("max", opSpec{minArgs: 1, maxArgs: -1, build: buildArithmetic(maxOf)})
	registerOperator("abs", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Abs))})
	registerOperator("ceil", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Ceil))})
	registerOperator("floor", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Floor))})
	registerOperator("round", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Round))})
	registerOperator("sqrt", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Sqrt))})
	registerOperator("sin", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Sin))})
	registerOperator("cos", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Cos))})
	registerOperator("tan", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Tan))})
	registerOperator("asin", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Asin))})
	registerOperator("acos", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Acos))})
	registerOperator("atan", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Atan))})
	registerOperator("ln", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Log))})
	registerOperator("ln2", opSpec{minArgs: 0, maxArgs: 0, build: buildArithmetic(func([]float64) (float64, error) { return math.Ln2, nil })})
	registerOperator("log2", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Log2))})
	registerOperator("log10", opSpec{minArgs: 1, maxArgs: 1, build: buildArithmetic(unary(math.Log10))})
	registerOperator("e", opSpec{minArgs: 0, maxArgs: 0, build: buildArithmetic(func([]float64) (float64, error) { return math.E, nil })})
	registerOperator("pi", opSpec{minArgs: 0, maxArgs: 0, build: buildArithmetic(func([]float64) (float64, error) { return math.Pi, nil })})
}
