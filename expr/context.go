package expr

import "github.com/gogpu/vectortile/value"

// Scope is everything an Expression needs from the renderer to evaluate:
// the current zoom level, the feature's tags and geometry type, and sprite
// resolution. Implemented by package scope's render Scope; kept as a small
// interface here so expr never imports scope (and scope satisfies it
// structurally without importing expr).
type Scope interface {
	// Zoom returns the current render zoom level.
	Zoom() float64
	// GetTag looks up a feature property by name.
	GetTag(key string) (value.Value, bool)
	// GeometryType returns one of "Point", "LineString", "Polygon" or
	// "Unknown", matching the $type operator's vocabulary.
	GeometryType() string
	// FeatureID returns the feature's id, if it has one.
	FeatureID() (value.Value, bool)
	// ResolveImage resolves a sprite name to a resolved-image value for the
	// `image` expression operator. ok is false if the sprite is unknown.
	ResolveImage(name string) (value.Value, bool)
	// ScaleFactor is the display's sprite pixel ratio, used to evaluate
	// `pitch` independent behavior is out of scope; retained for the
	// `image`/sprite resolution policy described in spec.md §4.4.
	ScaleFactor() float64
	// Locale returns a BCP-47 locale tag used by resolved-locale and
	// collator comparisons; empty means "use the default collation".
	Locale() string
}

// env is a lexical binding introduced by `let`, implemented as a linked
// list so nested lets are cheap to push/pop without copying a map.
type env struct {
	name   string
	val    value.Value
	parent *env
}

func (e *env) lookup(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.val, true
		}
	}
	return value.Value{}, false
}

// Context bundles the render Scope with the current `let` environment. It
// is passed by value through Eval since env is just a pointer.
type Context struct {
	Scope Scope
	vars  *env

	// nonFiniteOK suppresses the NaN/Inf domain-error check arithmeticNode
	// otherwise applies to its result. Only to-string and to-boolean set
	// this on the context they pass to their direct argument, matching
	// the as_string/as_boolean carve-out: 0/0 and 1/0 still evaluate to
	// NaN/Infinity there instead of failing the expression.
	nonFiniteOK bool
}

// NewContext builds a root evaluation context with no bound variables.
func NewContext(s Scope) Context {
	return Context{Scope: s}
}

func (c Context) withNonFiniteOK() Context {
	c.nonFiniteOK = true
	return c
}

func (c Context) withVar(name string, v value.Value) Context {
	c.vars = &env{name: name, val: v, parent: c.vars}
	return c
}

func (c Context) lookupVar(name string) (value.Value, bool) {
	if c.vars == nil {
		return value.Value{}, false
	}
	return c.vars.lookup(name)
}
