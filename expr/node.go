package expr

import "github.com/gogpu/vectortile/value"

// Node is one compiled expression tree node. Eval receives the current
// Context (render scope plus `let` bindings) and returns a value or an
// evaluation error.
type Node interface {
	Eval(ctx Context) (value.Value, error)
}

// Expression is a fully compiled expression ready to evaluate repeatedly
// against different scopes (once per feature, typically). It is the public
// handle returned by Compile.
type Expression struct {
	root Node
	// fast is non-nil when the compiled tree is a simple conjunction of
	// equality (`==`), `has`, `!has` and geometry-type tests, letting
	// the feature index (package featureindex) pre-filter candidates
	// without evaluating the full tree. See fastpath.go.
	fast *FastFilter
}

// Eval evaluates the compiled expression against scope.
func (e *Expression) Eval(s Scope) (value.Value, error) {
	return e.root.Eval(NewContext(s))
}

// FastFilter returns the extracted fast-path filter for this expression, or
// nil if the tree isn't expressible as one. See spec.md §4.3's "fast-path
// tagging" requirement.
func (e *Expression) FastFilter() *FastFilter { return e.fast }

// Compile parses a JSON-decoded expression value (the result of
// encoding/json.Unmarshal into any — nil/bool/float64/string/[]any/
// map[string]any) into an Expression tree.
func Compile(j any) (*Expression, error) {
	root, err := compile(j)
	if err != nil {
		return nil, err
	}
	return &Expression{root: root, fast: extractFastFilter(root)}, nil
}

// literalNode is a leaf holding a pre-evaluated constant value.
type literalNode struct{ v value.Value }

func (n literalNode) Eval(Context) (value.Value, error) { return n.v, nil }

func litNumber(f float64) Node  { return literalNode{value.NewNumber(f)} }
func litString(s string) Node   { return literalNode{value.NewString(s)} }
func litBool(b bool) Node       { return literalNode{value.NewBoolean(b)} }
func litNull() Node             { return literalNode{value.Null} }

// compile dispatches on the shape of a decoded JSON value.
func compile(j any) (Node, error) {
	switch v := j.(type) {
	case nil:
		return litNull(), nil
	case bool:
		return litBool(v), nil
	case float64:
		return litNumber(v), nil
	case string:
		return compileStringSugar(v), nil
	case []any:
		return compileCall(v)
	case map[string]any:
		return nil, errMalformed("", "bare JSON objects are not valid expressions")
	default:
		return nil, errMalformed("", "unsupported JSON value of type %T in expression position", j)
	}
}

// compileArgs compiles each element of a JSON array independently.
func compileArgs(raw []any) ([]Node, error) {
	out := make([]Node, len(raw))
	for i, r := range raw {
		n, err := compile(r)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func compileCall(arr []any) (Node, error) {
	if len(arr) == 0 {
		return nil, errInvalid("", "empty expression array")
	}
	op, ok := arr[0].(string)
	if !ok {
		return nil, errInvalid("", "expression array must begin with an operator name string")
	}
	args := arr[1:]

	if fn, ok := specialForms[op]; ok {
		return fn(op, args)
	}
	if spec, ok := operators[op]; ok {
		return compileOperator(op, spec, args)
	}
	return nil, errInvalid(op, "unknown operator")
}

// compileOperator compiles a plain (non-special-form) operator call: check
// arity, compile each argument (applying predicate sugar to args[0] when
// the operator calls for it), and wrap in the operator's node constructor.
func compileOperator(op string, spec opSpec, raw []any) (Node, error) {
	if len(raw) < spec.minArgs || (spec.maxArgs >= 0 && len(raw) > spec.maxArgs) {
		return nil, errInvalid(op, "wrong number of arguments: got %d", len(raw))
	}
	args := make([]Node, len(raw))
	for i, r := range raw {
		var n Node
		var err error
		if i == 0 && spec.sugarFirst {
			n, err = compileSugaredFirst(r)
		} else {
			n, err = compile(r)
		}
		if err != nil {
			return nil, err
		}
		args[i] = n
	}
	return spec.build(op, args)
}

// compileSugaredFirst implements the predicate-operator sugar: a bare JSON
// string first argument to a comparison/`in` operator names a feature
// property (or the special names "zoom"/"$type"), not a string literal.
func compileSugaredFirst(raw any) (Node, error) {
	s, ok := raw.(string)
	if !ok {
		return compile(raw)
	}
	switch s {
	case "zoom":
		return zoomNode{}, nil
	case "$type":
		return geomTypeNode{}, nil
	case "$id":
		return idNode{}, nil
	default:
		return getNode{key: litString(s)}, nil
	}
}
