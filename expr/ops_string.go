package expr

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/vectortile/value"
)

func buildConcat(op string, args []Node) (Node, error) {
	return concatNode{args: args}, nil
}

// caseChangeNode implements downcase/upcase using Unicode-aware case
// folding (golang.org/x/text/cases) rather than ASCII-only strings.ToLower,
// since feature properties routinely carry non-Latin scripts.
type caseChangeNode struct {
	op  string
	arg Node
}

func (n caseChangeNode) Eval(ctx Context) (value.Value, error) {
	v, err := n.arg.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	s := v.String()
	var caser cases.Caser
	if n.op == "upcase" {
		caser = cases.Upper(language.Und)
	} else {
		caser = cases.Lower(language.Und)
	}
	return value.NewString(caser.String(s)), nil
}

func buildCaseChange(op string, args []Node) (Node, error) {
	return caseChangeNode{op: op, arg: args[0]}, nil
}

// resolvedLocaleNode implements resolved-locale: take the collator
// argument's locale (or Scope.Locale() when the collator has none), parse it
// as a BCP-47 tag via golang.org/x/text/language and report back its
// canonical form; a tag that does not parse reports "und".
type resolvedLocaleNode struct{ arg Node }

func (n resolvedLocaleNode) Eval(ctx Context) (value.Value, error) {
	v, err := n.arg.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	coll, ok := v.GetCollator()
	if !ok {
		return value.Value{}, errEval("resolved-locale", "argument must be a collator")
	}
	locale := coll.Locale
	if locale == "" {
		locale = ctx.Scope.Locale()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return value.NewString(tag.String()), nil
}

func buildResolvedLocale(op string, args []Node) (Node, error) {
	return resolvedLocaleNode{arg: args[0]}, nil
}

func init() {
	registerOperator("concat", opSpec{minArgs: 0, maxArgs: -1, build: buildConcat})
	registerOperator("downcase", opSpec{minArgs: 1, maxArgs: 1, build: buildCaseChange})
	registerOperator("upcase", opSpec{minArgs: 1, maxArgs: 1, build: buildCaseChange})
	registerOperator("resolved-locale", opSpec{minArgs: 1, maxArgs: 1, build: buildResolvedLocale})
}
