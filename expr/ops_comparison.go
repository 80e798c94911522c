package expr

import "github.com/gogpu/vectortile/value"

// comparisonNode implements ==, !=, <, <=, >, >=, with an optional trailing
// collator argument for locale-aware string comparison.
type comparisonNode struct {
	op       string
	lhs, rhs Node
	collator Node // nil if absent
}

func (n comparisonNode) Eval(ctx Context) (value.Value, error) {
	lv, err := n.lhs.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	rv, err := n.rhs.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}

	if n.collator != nil && lv.Kind() == value.KindString && rv.Kind() == value.KindString {
		cv, err := n.collator.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		coll, ok := cv.GetCollator()
		if !ok {
			return value.Value{}, errEval(n.op, "collator argument did not evaluate to a collator")
		}
		cmp := compareWithCollator(coll, mustString(lv), mustString(rv))
		return value.NewBoolean(applyCmp(n.op, cmp)), nil
	}

	switch n.op {
	case "==":
		return value.NewBoolean(value.Equal(lv, rv)), nil
	case "!=":
		return value.NewBoolean(!value.Equal(lv, rv)), nil
	}

	cmp, ok := compareOrdered(lv, rv)
	if !ok {
		return value.Value{}, errEval(n.op, "cannot order values of different or non-orderable types")
	}
	return value.NewBoolean(applyCmp(n.op, cmp)), nil
}

func applyCmp(op string, cmp int) bool {
	switch op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// compareOrdered compares two values of the same orderable kind (number or
// string), returning ok=false if they aren't comparable that way.
func compareOrdered(a, b value.Value) (int, bool) {
	if a.Kind() != b.Kind() {
		return 0, false
	}
	switch a.Kind() {
	case value.KindNumber:
		av, _ := a.GetNumber()
		bv, _ := b.GetNumber()
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case value.KindString:
		av, bv := mustString(a), mustString(b)
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func mustString(v value.Value) string {
	s, _ := v.GetString()
	return s
}

func buildComparison(op string, args []Node) (Node, error) {
	n := comparisonNode{op: op, lhs: args[0], rhs: args[1]}
	if len(args) == 3 {
		n.collator = args[2]
	}
	return n, nil
}

func init() {
	for _, op := range []string{"==", "!=", "<", "<=", ">", ">="} {
		registerOperator(op, opSpec{minArgs: 2, maxArgs: 3, sugarFirst: true, build: buildComparison})
	}
}
