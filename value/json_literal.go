package value

import "fmt"

// SetFromJSONLiteral populates v from a decoded JSON value (as produced by
// encoding/json's default unmarshal into any: nil, float64, bool, string, or
// []any of the same). Objects are rejected — the "literal" expression form
// only packages scalars and arrays, never maps, per the Style Spec.
func (v *Value) SetFromJSONLiteral(x any) error {
	switch t := x.(type) {
	case nil:
		v.SetNull()
	case float64:
		v.SetNumber(t)
	case bool:
		v.SetBoolean(t)
	case string:
		v.SetString(t)
	case []any:
		v.StartArray()
		for _, e := range t {
			var child Value
			if err := child.SetFromJSONLiteral(e); err != nil {
				return err
			}
			v.ArrayAppend(child)
		}
	default:
		return fmt.Errorf("value: literal cannot hold %T", x)
	}
	return nil
}
