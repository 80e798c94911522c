package expr

import "github.com/gogpu/vectortile/value"

// caseNode implements `case(cond1, val1, cond2, val2, ..., fallback)`:
// first true condition wins; if none matches, fallback runs; a missing
// fallback makes an all-false evaluation a hard error.
type caseNode struct {
	conds    []Node
	vals     []Node
	fallback Node // nil if absent
}

func (n caseNode) Eval(ctx Context) (value.Value, error) {
	for i, c := range n.conds {
		cv, err := c.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		if b, _ := cv.GetBoolean(); b {
			return n.vals[i].Eval(ctx)
		}
	}
	if n.fallback != nil {
		return n.fallback.Eval(ctx)
	}
	return value.Value{}, errEval("case", "no condition matched and no fallback was given")
}

func compileCase(op string, raw []any) (Node, error) {
	if len(raw) < 1 {
		return nil, errInvalid(op, "case requires at least a fallback argument")
	}
	n := caseNode{}
	i := 0
	for i+1 < len(raw) {
		c, err := compile(raw[i])
		if err != nil {
			return nil, err
		}
		v, err := compile(raw[i+1])
		if err != nil {
			return nil, err
		}
		n.conds = append(n.conds, c)
		n.vals = append(n.vals, v)
		i += 2
	}
	if i < len(raw) {
		fb, err := compile(raw[i])
		if err != nil {
			return nil, err
		}
		n.fallback = fb
	}
	return n, nil
}

// matchNode implements `match(input, label1, val1, ..., fallback)`, where
// each label is a single literal or an array of literals.
type matchNode struct {
	input    Node
	labels   [][]value.Value
	vals     []Node
	fallback Node
}

func (n matchNode) Eval(ctx Context) (value.Value, error) {
	in, err := n.input.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	for i, labelSet := range n.labels {
		for _, l := range labelSet {
			if value.Equal(in, l) {
				return n.vals[i].Eval(ctx)
			}
		}
	}
	if n.fallback != nil {
		return n.fallback.Eval(ctx)
	}
	return value.Value{}, errEval("match", "no label matched and no fallback was given")
}

func compileMatch(op string, raw []any) (Node, error) {
	if len(raw) < 3 {
		return nil, errInvalid(op, "match requires an input, at least one label/value pair, and a fallback")
	}
	input, err := compile(raw[0])
	if err != nil {
		return nil, err
	}
	n := matchNode{input: input}
	i := 1
	for i+1 < len(raw) {
		labels, err := compileMatchLabels(raw[i])
		if err != nil {
			return nil, err
		}
		v, err := compile(raw[i+1])
		if err != nil {
			return nil, err
		}
		n.labels = append(n.labels, labels)
		n.vals = append(n.vals, v)
		i += 2
	}
	fb, err := compile(raw[i])
	if err != nil {
		return nil, err
	}
	n.fallback = fb
	return n, nil
}

func compileMatchLabels(raw any) ([]value.Value, error) {
	if arr, ok := raw.([]any); ok {
		out := make([]value.Value, len(arr))
		for i, e := range arr {
			v, err := jsonToValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	v, err := jsonToValue(raw)
	if err != nil {
		return nil, err
	}
	return []value.Value{v}, nil
}

// coalesceNode implements `coalesce`: the first argument that evaluates
// without error to a non-null value wins; an erroring or null branch falls
// through to the next.
type coalesceNode struct{ args []Node }

func (n coalesceNode) Eval(ctx Context) (value.Value, error) {
	var lastErr error
	for _, a := range n.args {
		v, err := a.Eval(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if !v.IsNull() {
			return v, nil
		}
	}
	if lastErr != nil {
		return value.Null, nil
	}
	return value.Null, nil
}

func compileCoalesce(op string, raw []any) (Node, error) {
	args, err := compileArgs(raw)
	if err != nil {
		return nil, err
	}
	return coalesceNode{args: args}, nil
}

// letNode implements `let(name1, expr1, ..., body)`: bindings are
// evaluated left to right, each in a context that already holds the
// bindings before it (so later bindings can see earlier ones), then body
// runs with all bindings in scope.
type letNode struct {
	names []string
	exprs []Node
	body  Node
}

func (n letNode) Eval(ctx Context) (value.Value, error) {
	inner := ctx
	for i, name := range n.names {
		v, err := n.exprs[i].Eval(inner)
		if err != nil {
			return value.Value{}, err
		}
		inner = inner.withVar(name, v)
	}
	return n.body.Eval(inner)
}

func compileLet(op string, raw []any) (Node, error) {
	if len(raw) < 1 || len(raw)%2 != 1 {
		return nil, errInvalid(op, "let requires name/expression pairs followed by a body expression")
	}
	n := letNode{}
	i := 0
	for i+1 < len(raw) {
		name, ok := raw[i].(string)
		if !ok {
			return nil, errMalformed(op, "let binding name must be a string")
		}
		e, err := compile(raw[i+1])
		if err != nil {
			return nil, err
		}
		n.names = append(n.names, name)
		n.exprs = append(n.exprs, e)
		i += 2
	}
	body, err := compile(raw[i])
	if err != nil {
		return nil, err
	}
	n.body = body
	return n, nil
}

// varNode implements `var(name)`: the name is looked up among the enclosing
// `let` bindings at evaluation time. Compilation does not check the name; an
// unbound name fails evaluation with an Eval error, not compilation.
type varNode struct{ name string }

func (n varNode) Eval(ctx Context) (value.Value, error) {
	v, ok := ctx.lookupVar(n.name)
	if !ok {
		return value.Value{}, errEval("var", "undefined variable %q", n.name)
	}
	return v, nil
}

func compileVar(op string, raw []any) (Node, error) {
	if len(raw) != 1 {
		return nil, errInvalid(op, "var takes exactly one argument")
	}
	name, ok := raw[0].(string)
	if !ok {
		return nil, errMalformed(op, "var argument must be a string")
	}
	return varNode{name: name}, nil
}

func init() {
	registerSpecialForm("case", compileCase)
	registerSpecialForm("match", compileMatch)
	registerSpecialForm("coalesce", compileCoalesce)
	registerSpecialForm("let", compileLet)
	registerSpecialForm("var", compileVar)
}
