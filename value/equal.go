package value

// Equal reports whether a and b are structurally equal. Numeric equality is
// IEEE 754 == (NaN never equals NaN and 0 equals -0, semantics the style
// spec's "==" operator inherits); color equality compares channels;
// null equals null; arrays compare element-wise.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindNumber:
		return a.num == b.num
	case KindBoolean:
		return a.b == b.b
	case KindString:
		return a.str == b.str
	case KindColor:
		return a.col.Equal(b.col)
	case KindCollator:
		return a.coll == b.coll
	case KindResolvedImage:
		return a.imageName == b.imageName
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindFormatted:
		if len(a.formatted) != len(b.formatted) {
			return false
		}
		for i := range a.formatted {
			pa, pb := a.formatted[i], b.formatted[i]
			if pa.Text != pb.Text || pa.HasFontScale != pb.HasFontScale ||
				pa.FontScale != pb.FontScale || pa.HasColor != pb.HasColor ||
				!pa.Color.Equal(pb.Color) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
