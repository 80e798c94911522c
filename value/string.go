package value

import (
	"math"
	"strconv"
	"strings"
)

// String renders v's canonical textual form, used by to-string, concat, and
// inside format parts. Numbers use the shortest round-trip representation;
// booleans render as "true"/"false"; null renders as ""; colors render as
// "rgba(r,g,b,a)" with integer 0-255 channels and a float alpha; arrays
// render JSON-like with inner strings JSON-escaped; NaN renders as "NaN",
// and +/-Infinity as "Infinity"/"-Infinity".
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.str
	case KindColor:
		return formatColor(v.col)
	case KindResolvedImage:
		return v.imageName
	case KindCollator:
		return "[object Object]"
	case KindArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			if _, ok := e.GetString(); ok {
				b.WriteString(strconv.Quote(e.str))
			} else {
				b.WriteString(e.String())
			}
		}
		b.WriteByte(']')
		return b.String()
	case KindFormatted:
		var b strings.Builder
		for _, p := range v.formatted {
			b.WriteString(p.Text)
		}
		return b.String()
	default:
		return ""
	}
}

// formatNumber renders f using the shortest decimal representation that
// round-trips, except for the three non-finite cases the Style Spec pins to
// specific literal strings.
func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatColor renders c as "rgba(r,g,b,a)" with integer channels 0-255.
func formatColor(c RGBA) string {
	r := int(math.Round(clamp01(c.R) * 255))
	g := int(math.Round(clamp01(c.G) * 255))
	b := int(math.Round(clamp01(c.B) * 255))
	a := clamp01(c.A)
	return "rgba(" + strconv.Itoa(r) + "," + strconv.Itoa(g) + "," + strconv.Itoa(b) + "," + strconv.FormatFloat(a, 'g', -1, 64) + ")"
}
