package expr

import (
	"unicode/utf8"

	"github.com/gogpu/vectortile/value"
)

// atNode implements `at(i, array)`.
type atNode struct{ idx, arr Node }

func (n atNode) Eval(ctx Context) (value.Value, error) {
	iv, err := n.idx.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	av, err := n.arr.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	arr, ok := av.GetArray()
	if !ok {
		return value.Value{}, errEval("at", "second argument is not an array")
	}
	i, ok := asIndex(iv)
	if !ok || i < 0 || i >= len(arr) {
		return value.Value{}, errEval("at", "index out of bounds")
	}
	return arr[i], nil
}

func asIndex(v value.Value) (int, bool) {
	f, ok := v.GetNumber()
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// indexOfNode implements `index-of(needle, haystack, start?)`.
type indexOfNode struct{ needle, haystack, start Node }

func (n indexOfNode) Eval(ctx Context) (value.Value, error) {
	needle, err := n.needle.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	hay, err := n.haystack.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	start := 0
	if n.start != nil {
		sv, err := n.start.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		i, ok := asIndex(sv)
		if !ok || i < 0 {
			return value.Value{}, errEval("index-of", "start must be a non-negative integer")
		}
		start = i
	}

	switch hay.Kind() {
	case value.KindString:
		needleStr, ok := needle.GetString()
		if !ok {
			return value.NewNumber(-1), nil
		}
		runes := []rune(mustString(hay))
		needleRunes := []rune(needleStr)
		for i := start; i+len(needleRunes) <= len(runes); i++ {
			if runesEqual(runes[i:i+len(needleRunes)], needleRunes) {
				return value.NewNumber(float64(i)), nil
			}
		}
		return value.NewNumber(-1), nil
	case value.KindArray:
		arr, _ := hay.GetArray()
		for i := start; i < len(arr); i++ {
			if value.Equal(arr[i], needle) {
				return value.NewNumber(float64(i)), nil
			}
		}
		return value.NewNumber(-1), nil
	default:
		return value.Value{}, errEval("index-of", "second argument must be a string or array")
	}
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func buildIndexOf(op string, args []Node) (Node, error) {
	n := indexOfNode{needle: args[0], haystack: args[1]}
	if len(args) == 3 {
		n.start = args[2]
	}
	return n, nil
}

// lengthNode implements `length`.
type lengthNode struct{ arg Node }

func (n lengthNode) Eval(ctx Context) (value.Value, error) {
	v, err := n.arg.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	switch v.Kind() {
	case value.KindString:
		return value.NewNumber(float64(utf8.RuneCountInString(mustString(v)))), nil
	case value.KindArray:
		arr, _ := v.GetArray()
		return value.NewNumber(float64(len(arr))), nil
	default:
		return value.Value{}, errEval("length", "argument must be a string or array")
	}
}

func buildLength(op string, args []Node) (Node, error) {
	return lengthNode{arg: args[0]}, nil
}

// sliceNode implements `slice(value, start, end?)` with Python-style
// negative-index normalization, clamped to [0, length].
type sliceNode struct{ val, start, end Node }

func (n sliceNode) Eval(ctx Context) (value.Value, error) {
	v, err := n.val.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	sv, err := n.start.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	start, ok := asIndex(sv)
	if !ok {
		return value.Value{}, errEval("slice", "start must be an integer")
	}

	switch v.Kind() {
	case value.KindString:
		runes := []rune(mustString(v))
		end := len(runes)
		if n.end != nil {
			ev, err := n.end.Eval(ctx)
			if err != nil {
				return value.Value{}, err
			}
			e, ok := asIndex(ev)
			if !ok {
				return value.Value{}, errEval("slice", "end must be an integer")
			}
			end = e
		}
		s, e := normalizeSlice(start, end, len(runes))
		return value.NewString(string(runes[s:e])), nil
	case value.KindArray:
		arr, _ := v.GetArray()
		end := len(arr)
		if n.end != nil {
			ev, err := n.end.Eval(ctx)
			if err != nil {
				return value.Value{}, err
			}
			e, ok := asIndex(ev)
			if !ok {
				return value.Value{}, errEval("slice", "end must be an integer")
			}
			end = e
		}
		s, e := normalizeSlice(start, end, len(arr))
		return value.NewArray(arr[s:e]), nil
	default:
		return value.Value{}, errEval("slice", "first argument must be a string or array")
	}
}

func normalizeSlice(start, end, length int) (int, int) {
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	if start < 0 {
		start = 0
	}
	if start > length {
		start = length
	}
	if end < 0 {
		end = 0
	}
	if end > length {
		end = length
	}
	if end < start {
		end = start
	}
	return start, end
}

func buildSlice(op string, args []Node) (Node, error) {
	n := sliceNode{val: args[0], start: args[1]}
	if len(args) == 3 {
		n.end = args[2]
	}
	return n, nil
}

func init() {
	registerOperator("at", opSpec{minArgs: 2, maxArgs: 2, build: func(op string, args []Node) (Node, error) {
		return atNode{idx: args[0], arr: args[1]}, nil
	}})
	registerOperator("index-of", opSpec{minArgs: 2, maxArgs: 3, build: buildIndexOf})
	registerOperator("length", opSpec{minArgs: 1, maxArgs: 1, build: buildLength})
	registerOperator("slice", opSpec{minArgs: 2, maxArgs: 3, build: buildSlice})
}
