package expr

import "github.com/gogpu/vectortile/value"

// logicalNode implements all/any/none with short-circuit evaluation.
type logicalNode struct {
	op   string
	args []Node
}

func (n logicalNode) Eval(ctx Context) (value.Value, error) {
	switch n.op {
	case "all":
		for _, a := range n.args {
			v, err := a.Eval(ctx)
			if err != nil {
				return value.Value{}, err
			}
			b, _ := v.GetBoolean()
			if !b {
				return value.NewBoolean(false), nil
			}
		}
		return value.NewBoolean(true), nil
	case "any":
		for _, a := range n.args {
			v, err := a.Eval(ctx)
			if err != nil {
				return value.Value{}, err
			}
			b, _ := v.GetBoolean()
			if b {
				return value.NewBoolean(true), nil
			}
		}
		return value.NewBoolean(false), nil
	case "none":
		for _, a := range n.args {
			v, err := a.Eval(ctx)
			if err != nil {
				return value.Value{}, err
			}
			b, _ := v.GetBoolean()
			if b {
				return value.NewBoolean(false), nil
			}
		}
		return value.NewBoolean(true), nil
	}
	return value.Value{}, errEval(n.op, "unreachable logical operator")
}

// notNode implements unary `!`.
type notNode struct{ arg Node }

func (n notNode) Eval(ctx Context) (value.Value, error) {
	v, err := n.arg.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	b, _ := v.GetBoolean()
	return value.NewBoolean(!b), nil
}

func buildLogical(op string, args []Node) (Node, error) {
	return logicalNode{op: op, args: args}, nil
}

func buildNot(op string, args []Node) (Node, error) {
	return notNode{arg: args[0]}, nil
}

func init() {
	registerOperator("all", opSpec{minArgs: 0, maxArgs: -1, build: buildLogical})
	registerOperator("any", opSpec{minArgs: 0, maxArgs: -1, build: buildLogical})
	registerOperator("none", opSpec{minArgs: 0, maxArgs: -1, build: buildLogical})
	registerOperator("!", opSpec{minArgs: 1, maxArgs: 1, build: buildNot})
}
