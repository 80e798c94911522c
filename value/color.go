package value

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// RGBA is a color with channels in [0, 1]. It is the in-memory
// representation used throughout the expression engine and style layers;
// see DESIGN.md for why this mirrors the teacher's gg.RGBA rather than
// reusing image/color.RGBA (which is 8-bit and premultiplied).
type RGBA struct {
	R, G, B, A float64
}

// Lerp linearly interpolates each channel between c and other by t.
// Used by the expression engine's interpolate operator for color outputs.
func (c RGBA) Lerp(other RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Equal reports structural channel equality.
func (c RGBA) Equal(other RGBA) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B && c.A == other.A
}

// StdColor converts c to the standard image/color.Color interface as a
// non-premultiplied color.NRGBA, quantizing to 8 bits per channel.
func (c RGBA) StdColor() color.Color {
	return color.NRGBA{
		R: clampByte(c.R * 255),
		G: clampByte(c.G * 255),
		B: clampByte(c.B * 255),
		A: clampByte(c.A * 255),
	}
}

func clampByte(x float64) uint8 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x + 0.5)
}

// ParseColor parses a CSS-style color string per the MapLibre Style Spec:
// #RGB, #RGBA, #RRGGBB, #RRGGBBAA, rgb(r,g,b), rgba(r,g,b,a), and CSS named
// colors.
// It returns (RGBA{}, false) when s does not match any of those forms.
func ParseColor(s string) (RGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGBA{}, false
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") {
		return parseFunctionalColor(s)
	}
	if c, ok := colornames.Map[lower]; ok {
		r, g, b, a := c.RGBA()
		return RGBA{
			R: float64(r) / 65535,
			G: float64(g) / 65535,
			B: float64(b) / 65535,
			A: float64(a) / 65535,
		}, true
	}
	return RGBA{}, false
}

// parseHexColor parses the digits following '#': RGB, RGBA, RRGGBB, or
// RRGGBBAA. Adapted from the teacher's gg.Hex, generalized to report failure
// instead of silently defaulting to opaque black.
func parseHexColor(hex string) (RGBA, bool) {
	var r, g, b, a uint32
	a = 255
	ok := true
	hx := func(s string) uint32 {
		n, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			ok = false
			return 0
		}
		return uint32(n)
	}
	switch len(hex) {
	case 3:
		r, g, b = hx(dup(hex[0:1])), hx(dup(hex[1:2])), hx(dup(hex[2:3]))
	case 4:
		r, g, b, a = hx(dup(hex[0:1])), hx(dup(hex[1:2])), hx(dup(hex[2:3])), hx(dup(hex[3:4]))
	case 6:
		r, g, b = hx(hex[0:2]), hx(hex[2:4]), hx(hex[4:6])
	case 8:
		r, g, b, a = hx(hex[0:2]), hx(hex[2:4]), hx(hex[4:6]), hx(hex[6:8])
	default:
		return RGBA{}, false
	}
	if !ok {
		return RGBA{}, false
	}
	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}, true
}

// dup duplicates a single hex digit, e.g. "a" -> "aa", matching the CSS
// 3/4-digit shorthand expansion rule.
func dup(s string) string { return s + s }

// parseFunctionalColor parses "rgb(r,g,b)" or "rgba(r,g,b,a)" where r/g/b are
// 0-255 integers or percentages and a is 0-1.
func parseFunctionalColor(s string) (RGBA, bool) {
	open := strings.IndexByte(s, '(')
	close := strings.LastIndexByte(s, ')')
	if open < 0 || close < 0 || close < open {
		return RGBA{}, false
	}
	inner := s[open+1 : close]
	parts := strings.Split(inner, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return RGBA{}, false
	}
	channel := func(p string) (float64, bool) {
		p = strings.TrimSpace(p)
		if strings.HasSuffix(p, "%") {
			f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			if err != nil {
				return 0, false
			}
			return clamp01(f / 100), true
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return clamp01(f / 255), true
	}
	r, ok := channel(parts[0])
	if !ok {
		return RGBA{}, false
	}
	g, ok := channel(parts[1])
	if !ok {
		return RGBA{}, false
	}
	b, ok := channel(parts[2])
	if !ok {
		return RGBA{}, false
	}
	a := 1.0
	if len(parts) == 4 {
		af, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return RGBA{}, false
		}
		a = clamp01(af)
	}
	return RGBA{R: r, G: g, B: b, A: a}, true
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
