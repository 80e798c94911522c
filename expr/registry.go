package expr

// opSpec describes one plain (non-special-form) operator: its arity bounds,
// whether its first JSON argument gets the predicate-sugar treatment (bare
// string -> get(string), with "zoom"/"$type"/"$id" special-cased), and the
// function that assembles compiled argument nodes into a Node.
type opSpec struct {
	minArgs    int
	maxArgs    int // -1 means unbounded
	sugarFirst bool
	build      func(op string, args []Node) (Node, error)
}

// specialFormFunc compiles a call whose arguments need bespoke, non-uniform
// handling (raw, uncompiled JSON) rather than the generic compile-each-arg
// path: let/var, case/match, format, collator, interpolate/step.
type specialFormFunc func(op string, rawArgs []any) (Node, error)

var operators = map[string]opSpec{}
var specialForms = map[string]specialFormFunc{}

func registerOperator(name string, spec opSpec) {
	operators[name] = spec
}

func registerSpecialForm(name string, fn specialFormFunc) {
	specialForms[name] = fn
}
