package expr

import "github.com/gogpu/vectortile/value"

// zoomNode implements the `zoom` operator: the current render zoom level.
type zoomNode struct{}

func (zoomNode) Eval(ctx Context) (value.Value, error) {
	return value.NewNumber(ctx.Scope.Zoom()), nil
}

// geomTypeNode implements the `$type` operator.
type geomTypeNode struct{}

func (geomTypeNode) Eval(ctx Context) (value.Value, error) {
	return value.NewString(ctx.Scope.GeometryType()), nil
}

// idNode implements the `$id` operator.
type idNode struct{}

func (idNode) Eval(ctx Context) (value.Value, error) {
	v, ok := ctx.Scope.FeatureID()
	if !ok {
		return value.Null, nil
	}
	return v, nil
}

// getNode implements `get`: look up a feature property by name, evaluated
// dynamically (the key may itself be an expression, though the compile-time
// sugar in compileSugaredFirst produces a literal key in the common case).
type getNode struct{ key Node }

func (n getNode) Eval(ctx Context) (value.Value, error) {
	kv, err := n.key.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	key, _ := kv.GetString()
	v, ok := ctx.Scope.GetTag(key)
	if !ok {
		return value.Null, nil
	}
	return v, nil
}

// hasNode implements `has`/`!has`.
type hasNode struct {
	key    Node
	negate bool
}

func (n hasNode) Eval(ctx Context) (value.Value, error) {
	kv, err := n.key.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	key, _ := kv.GetString()
	_, ok := ctx.Scope.GetTag(key)
	if n.negate {
		ok = !ok
	}
	return value.NewBoolean(ok), nil
}

// inNode implements `in`/`!in`: needle is args[0] (sugared), haystack is the
// remaining arguments, or a single array-valued argument.
type inNode struct {
	needle   Node
	haystack []Node
	negate   bool
}

func (n inNode) Eval(ctx Context) (value.Value, error) {
	needle, err := n.needle.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	found := false
	if len(n.haystack) == 1 {
		if hv, err := n.haystack[0].Eval(ctx); err == nil && hv.Kind() == value.KindArray {
			arr, _ := hv.GetArray()
			for _, e := range arr {
				if value.Equal(needle, e) {
					found = true
					break
				}
			}
			if n.negate {
				found = !found
			}
			return value.NewBoolean(found), nil
		}
	}
	for _, hn := range n.haystack {
		hv, err := hn.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		if value.Equal(needle, hv) {
			found = true
			break
		}
	}
	if n.negate {
		found = !found
	}
	return value.NewBoolean(found), nil
}

func buildHas(op string, args []Node) (Node, error) {
	return hasNode{key: args[0], negate: op == "!has"}, nil
}

func buildIn(op string, args []Node) (Node, error) {
	return inNode{needle: args[0], haystack: args[1:], negate: op == "!in"}, nil
}

func buildGet(op string, args []Node) (Node, error) {
	return getNode{key: args[0]}, nil
}

func init() {
	registerOperator("get", opSpec{minArgs: 1, maxArgs: 1, build: buildGet})
	registerOperator("has", opSpec{minArgs: 1, maxArgs: 1, sugarFirst: true, build: buildHas})
	registerOperator("!has", opSpec{minArgs: 1, maxArgs: 1, sugarFirst: true, build: buildHas})
	registerOperator("in", opSpec{minArgs: 2, maxArgs: -1, sugarFirst: true, build: buildIn})
	registerOperator("!in", opSpec{minArgs: 2, maxArgs: -1, sugarFirst: true, build: buildIn})
}
