package expr

import "github.com/gogpu/vectortile/value"

// compileLiteral implements the `literal` special form: its single JSON
// argument is packaged as a Value as-is, without further expression
// compilation — so `["literal", ["a","b","c"]]` yields an array Value
// rather than being parsed as a 3-argument call to operator "a".
func compileLiteral(op string, raw []any) (Node, error) {
	if len(raw) != 1 {
		return nil, errInvalid(op, "literal takes exactly one argument")
	}
	v, err := jsonToValue(raw[0])
	if err != nil {
		return nil, err
	}
	return literalNode{v: v}, nil
}

// jsonToValue converts a raw JSON value (as decoded by encoding/json into
// any) directly into a value.Value, recursing into arrays. Used only by
// `literal`, which treats its argument as data, not as a sub-expression.
func jsonToValue(j any) (value.Value, error) {
	switch v := j.(type) {
	case nil:
		return value.Null, nil
	case bool:
		return value.NewBoolean(v), nil
	case float64:
		return value.NewNumber(v), nil
	case string:
		return value.NewString(v), nil
	case []any:
		elems := make([]value.Value, len(v))
		for i, e := range v {
			cv, err := jsonToValue(e)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = cv
		}
		return value.NewArray(elems), nil
	default:
		return value.Value{}, errMalformed("literal", "unsupported JSON value of type %T", j)
	}
}

func init() {
	registerSpecialForm("literal", compileLiteral)
}
