package expr

import (
	"math"
	"strconv"

	"github.com/gogpu/vectortile/value"
)

// toBooleanNode implements `to-boolean`: null/""/0/NaN are false, everything
// else true. The coercion itself never fails; an error from evaluating the
// argument is returned as is.
type toBooleanNode struct{ arg Node }

func (n toBooleanNode) Eval(ctx Context) (value.Value, error) {
	v, err := n.arg.Eval(ctx.withNonFiniteOK())
	if err != nil {
		return value.Value{}, err
	}
	return value.NewBoolean(truthy(v)), nil
}

func truthy(v value.Value) bool {
	switch v.Kind() {
	case value.KindNull:
		return false
	case value.KindBoolean:
		b, _ := v.GetBoolean()
		return b
	case value.KindNumber:
		f, _ := v.GetNumber()
		return f != 0 && !math.IsNaN(f)
	case value.KindString:
		s, _ := v.GetString()
		return s != ""
	default:
		return true
	}
}

// toNumberNode implements `to-number(x, default?)`: try each argument left
// to right (null→0, bool→0/1, string via strconv), falling through on
// failure; if none succeed, the trailing default (when present) is the
// result, else evaluation fails.
type toNumberNode struct{ args []Node }

func (n toNumberNode) Eval(ctx Context) (value.Value, error) {
	var lastErr error
	for _, a := range n.args {
		v, err := a.Eval(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if f, ok := tryToNumber(v); ok {
			return value.NewNumber(f), nil
		}
		lastErr = errEval("to-number", "could not coerce value to a number")
	}
	return value.Value{}, lastErr
}

func tryToNumber(v value.Value) (float64, bool) {
	switch v.Kind() {
	case value.KindNull:
		return 0, true
	case value.KindBoolean:
		b, _ := v.GetBoolean()
		if b {
			return 1, true
		}
		return 0, true
	case value.KindNumber:
		return v.GetNumber()
	case value.KindString:
		s, _ := v.GetString()
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func buildToNumber(op string, args []Node) (Node, error) {
	return toNumberNode{args: args}, nil
}

// toColorNode implements `to-color(x, default?)`: string parse (CSS
// syntax), falling through arguments on failure.
type toColorNode struct{ args []Node }

func (n toColorNode) Eval(ctx Context) (value.Value, error) {
	var lastErr error
	for _, a := range n.args {
		v, err := a.Eval(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if v.Kind() == value.KindColor {
			return v, nil
		}
		if v.Kind() == value.KindString {
			if c, ok := v.GetColor(); ok {
				return value.NewColor(c), nil
			}
		}
		lastErr = errEval("to-color", "could not coerce value to a color")
	}
	return value.Value{}, lastErr
}

func buildToColor(op string, args []Node) (Node, error) {
	return toColorNode{args: args}, nil
}

// toStringNode implements `to-string` via Value.String's as_string
// rendering. The coercion itself never fails; an error from evaluating the
// argument is returned as is.
type toStringNode struct{ arg Node }

func (n toStringNode) Eval(ctx Context) (value.Value, error) {
	v, err := n.arg.Eval(ctx.withNonFiniteOK())
	if err != nil {
		return value.Value{}, err
	}
	return value.NewString(v.String()), nil
}

func buildToString(op string, args []Node) (Node, error) {
	return toStringNode{arg: args[0]}, nil
}

// typeofNode implements `typeof`.
type typeofNode struct{ arg Node }

func (n typeofNode) Eval(ctx Context) (value.Value, error) {
	v, err := n.arg.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	var s string
	switch v.Kind() {
	case value.KindNull:
		s = "null"
	case value.KindNumber:
		s = "number"
	case value.KindBoolean:
		s = "boolean"
	case value.KindString:
		s = "string"
	case value.KindColor:
		s = "color"
	case value.KindCollator:
		s = "object"
	case value.KindResolvedImage:
		s = "resolved-image"
	case value.KindArray:
		s = "array"
	case value.KindFormatted:
		s = "formatter"
	default:
		s = "object"
	}
	return value.NewString(s), nil
}

func buildTypeof(op string, args []Node) (Node, error) {
	return typeofNode{arg: args[0]}, nil
}

func init() {
	registerOperator("to-boolean", opSpec{minArgs: 1, maxArgs: 1, build: func(op string, args []Node) (Node, error) {
		return toBooleanNode{arg: args[0]}, nil
	}})
	registerOperator("to-number", opSpec{minArgs: 1, maxArgs: -1, build: buildToNumber})
	registerOperator("to-color", opSpec{minArgs: 1, maxArgs: -1, build: buildToColor})
	registerOperator("to-string", opSpec{minArgs: 1, maxArgs: 1, build: buildToString})
	registerOperator("typeof", opSpec{minArgs: 1, maxArgs: 1, build: buildTypeof})
}
