package expr

import (
	"strings"

	"github.com/gogpu/vectortile/value"
)

// concatNode implements string concatenation: every arg is coerced to its
// as_string rendering and joined. Used both by the explicit `concat`
// operator and by {field}-placeholder string sugar.
type concatNode struct{ args []Node }

func (n concatNode) Eval(ctx Context) (value.Value, error) {
	var b strings.Builder
	for _, a := range n.args {
		v, err := a.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		b.WriteString(v.String())
	}
	return value.NewString(b.String()), nil
}

// compileStringSugar scans a JSON string literal for {field} placeholders
// (per the style spec's token-substitution shorthand, e.g. the "name_en"
// label layer's text-field commonly written as "{name_en}"). A string with
// no placeholders compiles to a plain literal; a string with placeholders
// compiles to a concat of literal fragments and get() lookups.
func compileStringSugar(s string) Node {
	if !strings.ContainsRune(s, '{') {
		return litString(s)
	}
	var parts []Node
	i := 0
	for i < len(s) {
		open := strings.IndexByte(s[i:], '{')
		if open < 0 {
			parts = append(parts, litString(s[i:]))
			break
		}
		open += i
		if open > i {
			parts = append(parts, litString(s[i:open]))
		}
		close := strings.IndexByte(s[open:], '}')
		if close < 0 {
			// Unbalanced brace: treat the rest as literal text rather than
			// failing the whole stylesheet load.
			parts = append(parts, litString(s[open:]))
			break
		}
		close += open
		field := s[open+1 : close]
		if field == "" {
			parts = append(parts, litString(s[open:close+1]))
		} else {
			parts = append(parts, getNode{key: litString(field)})
		}
		i = close + 1
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return concatNode{args: parts}
}
