package expr

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/gogpu/vectortile/value"
)

// collatorNode implements the `collator` operator, building a
// value.Collator from case-sensitivity/diacritic-sensitivity/locale
// options, backed by golang.org/x/text/collate for Unicode-aware ordering
// and x/text/language for locale tag resolution.
type collatorNode struct {
	caseSensitive Node // optional, nil means false
	diacritics    Node // optional, nil means true (diacritic-sensitive)
	locale        Node // optional, nil means "use Scope.Locale()"
}

func (n collatorNode) Eval(ctx Context) (value.Value, error) {
	caseSensitive := false
	if n.caseSensitive != nil {
		v, err := n.caseSensitive.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		caseSensitive, _ = v.GetBoolean()
	}
	diacriticSensitive := true
	if n.diacritics != nil {
		v, err := n.diacritics.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		diacriticSensitive, _ = v.GetBoolean()
	}
	locale := ctx.Scope.Locale()
	if n.locale != nil {
		v, err := n.locale.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		if s, ok := v.GetString(); ok && s != "" {
			locale = s
		}
	}
	return value.NewCollator(value.Collator{
		CaseSensitive:      caseSensitive,
		DiacriticSensitive: diacriticSensitive,
		Locale:             locale,
	}), nil
}

func compileCollator(op string, raw []any) (Node, error) {
	if len(raw) != 1 {
		return nil, errInvalid(op, "collator takes exactly one options object argument")
	}
	opts, ok := raw[0].(map[string]any)
	if !ok {
		return nil, errMalformed(op, "collator argument must be an object")
	}
	var n collatorNode
	if raw, ok := opts["case-sensitive"]; ok {
		c, err := compile(raw)
		if err != nil {
			return nil, err
		}
		n.caseSensitive = c
	}
	if raw, ok := opts["diacritic-sensitive"]; ok {
		c, err := compile(raw)
		if err != nil {
			return nil, err
		}
		n.diacritics = c
	}
	if raw, ok := opts["locale"]; ok {
		c, err := compile(raw)
		if err != nil {
			return nil, err
		}
		n.locale = c
	}
	return n, nil
}

// collatorFor builds an x/text/collate.Collator from resolved options,
// falling back to und (root) collation when the locale tag fails to parse
// or is empty.
func collatorFor(opts value.Collator) *collate.Collator {
	tag := language.Und
	if opts.Locale != "" {
		if t, err := language.Parse(opts.Locale); err == nil {
			tag = t
		}
	}
	var copts []collate.Option
	if opts.CaseSensitive {
		copts = append(copts, collate.Force)
	}
	if !opts.DiacriticSensitive {
		copts = append(copts, collate.IgnoreDiacritics)
	}
	if !opts.CaseSensitive {
		copts = append(copts, collate.IgnoreCase)
	}
	return collate.New(tag, copts...)
}

// compareWithCollator orders a and b per the resolved collation. Returns
// <0, 0, >0 like strings.Compare.
func compareWithCollator(opts value.Collator, a, b string) int {
	return collatorFor(opts).CompareString(a, b)
}

func init() {
	registerSpecialForm("collator", compileCollator)
}
