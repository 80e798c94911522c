// Package value implements the dynamically typed scalar/array/object used
// throughout the expression engine: numbers, booleans, strings, colors,
// collators, resolved images, arrays, and formatted text.
//
// A Value is a tagged union. Once one of the Set* methods has been called,
// the Value's payload is treated as immutable by every reader in this
// module; callers that need a fresh Value call one of the New* constructors
// or Clone an existing one rather than mutating a shared instance.
package value

// Kind identifies which case of the Value union is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindBoolean
	KindString
	KindColor
	KindCollator
	KindResolvedImage
	KindArray
	KindFormatted
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindColor:
		return "color"
	case KindCollator:
		return "object"
	case KindResolvedImage:
		return "resolved-image"
	case KindArray:
		return "array"
	case KindFormatted:
		return "formatter"
	default:
		return "unknown"
	}
}

// Collator carries locale-sensitive string comparison parameters, per the
// `collator` expression operator's options object.
type Collator struct {
	CaseSensitive      bool
	DiacriticSensitive bool
	Locale             string
}

// SpriteResolver resolves a sprite name at a given scale factor to an opaque
// paintable handle. A resolved-image Value stores the sprite name plus a
// back-reference to the resolver instead of an inline sprite, which keeps
// Value's lifetime independent of any particular sprite sheet (DESIGN.md's
// "value" section explains why the interface is kept this narrow).
type SpriteResolver interface {
	ResolveSprite(name string, scale float64) (sprite any, ok bool)
}

// FormatPart is one segment of a "format" expression's output: a run of text
// plus optional per-run font scale and text color overrides, or an inline
// image.
type FormatPart struct {
	Text         string
	FontScale    float64
	HasFontScale bool
	Color        RGBA
	HasColor     bool
	Image        *Value // non-nil for an inline "image" part
}

type colorCacheState uint8

const (
	colorCacheUnset colorCacheState = iota
	colorCacheSet
	colorCacheInvalid
)

// Value is a tagged, immutable-once-set scalar/array/object.
type Value struct {
	kind Kind

	num  float64
	b    bool
	str  string
	col  RGBA
	coll Collator

	imageName     string
	imageResolver SpriteResolver

	arr []Value

	formatted []FormatPart

	// Lazy string->color cache for the string case: colorCacheUnset until
	// the first GetColor call, then pinned to Set or Invalid forever.
	colorCache      colorCacheState
	colorCacheValue RGBA
}

// Null is the shared null Value.
var Null = Value{kind: KindNull}

// NewNumber returns a new number Value.
func NewNumber(f float64) Value { return Value{kind: KindNumber, num: f} }

// NewBoolean returns a new boolean Value.
func NewBoolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// NewString returns a new string Value.
func NewString(s string) Value { return Value{kind: KindString, str: s} }

// NewColor returns a new color Value.
func NewColor(c RGBA) Value { return Value{kind: KindColor, col: c} }

// NewCollator returns a new collator Value.
func NewCollator(c Collator) Value {
	return Value{kind: KindCollator, coll: c}
}

// NewResolvedImage returns a new resolved-image Value.
func NewResolvedImage(name string, resolver SpriteResolver) Value {
	return Value{kind: KindResolvedImage, imageName: name, imageResolver: resolver}
}

// NewArray returns a new array Value from the given elements. The slice is
// copied so later mutation of elems does not affect the Value.
func NewArray(elems []Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, arr: cp}
}

// NewFormatted returns a new formatted-text Value.
func NewFormatted(parts []FormatPart) Value {
	cp := make([]FormatPart, len(parts))
	copy(cp, parts)
	return Value{kind: KindFormatted, formatted: cp}
}

// SetNull resets v in place to null.
func (v *Value) SetNull() { *v = Value{kind: KindNull} }

// SetNumber resets v in place to a number.
func (v *Value) SetNumber(f float64) { *v = Value{kind: KindNumber, num: f} }

// SetBoolean resets v in place to a boolean.
func (v *Value) SetBoolean(b bool) { *v = Value{kind: KindBoolean, b: b} }

// SetString resets v in place to a string.
func (v *Value) SetString(s string) { *v = Value{kind: KindString, str: s} }

// SetColor resets v in place to a color.
func (v *Value) SetColor(c RGBA) { *v = Value{kind: KindColor, col: c} }

// SetCollator resets v in place to a collator.
func (v *Value) SetCollator(c Collator) {
	*v = Value{kind: KindCollator, coll: c}
}

// SetResolvedImage resets v in place to a resolved-image.
func (v *Value) SetResolvedImage(name string, resolver SpriteResolver) {
	*v = Value{kind: KindResolvedImage, imageName: name, imageResolver: resolver}
}

// StartArray resets v in place to an empty array, ready for ArrayAppend.
func (v *Value) StartArray() { *v = Value{kind: KindArray, arr: nil} }

// ArrayAppend appends a deep copy of child to v's array. v must have been
// started with StartArray (or already be an array) or this is a no-op.
func (v *Value) ArrayAppend(child Value) {
	if v.kind != KindArray {
		return
	}
	v.arr = append(v.arr, child.Clone())
}

// SetFormatted resets v in place to a formatted-text value.
func (v *Value) SetFormatted(parts []FormatPart) {
	cp := make([]FormatPart, len(parts))
	copy(cp, parts)
	*v = Value{kind: KindFormatted, formatted: cp}
}

// Kind returns the active case of v.
func (v Value) Kind() Kind { return v.kind }

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	out := v
	if v.kind == KindArray {
		out.arr = make([]Value, len(v.arr))
		for i, e := range v.arr {
			out.arr[i] = e.Clone()
		}
	}
	if v.kind == KindFormatted {
		out.formatted = make([]FormatPart, len(v.formatted))
		copy(out.formatted, v.formatted)
		for i, p := range out.formatted {
			if p.Image != nil {
				img := p.Image.Clone()
				out.formatted[i].Image = &img
			}
		}
	}
	return out
}

// GetNumber returns v's number and true, or (0, false) if v is not a number.
func (v Value) GetNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// GetBoolean returns v's boolean and true, or (false, false) if v is not a boolean.
func (v Value) GetBoolean() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

// GetString returns v's string and true, or ("", false) if v is not a string.
func (v Value) GetString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// GetColor returns v's color. For a string Value, the first call attempts a
// CSS-style parse and caches the result (set or invalid) on v; later calls
// reuse the cached result without reparsing. The cache never transitions
// away from "invalid" or "set" once entered.
func (v *Value) GetColor() (RGBA, bool) {
	switch v.kind {
	case KindColor:
		return v.col, true
	case KindString:
		switch v.colorCache {
		case colorCacheSet:
			return v.colorCacheValue, true
		case colorCacheInvalid:
			return RGBA{}, false
		default:
			c, ok := ParseColor(v.str)
			if ok {
				v.colorCache = colorCacheSet
				v.colorCacheValue = c
				return c, true
			}
			v.colorCache = colorCacheInvalid
			return RGBA{}, false
		}
	default:
		return RGBA{}, false
	}
}

// GetCollator returns v's collator and true, or (Collator{}, false) if v is
// not a collator.
func (v Value) GetCollator() (Collator, bool) {
	if v.kind != KindCollator {
		return Collator{}, false
	}
	return v.coll, true
}

// GetImage returns the resolved-image's name and resolver, or ("", nil,
// false) if v is not a resolved-image.
func (v Value) GetImage() (name string, resolver SpriteResolver, ok bool) {
	if v.kind != KindResolvedImage {
		return "", nil, false
	}
	return v.imageName, v.imageResolver, true
}

// GetArray returns v's elements, or (nil, false) if v is not an array.
// The returned slice must not be mutated by the caller.
func (v Value) GetArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// GetFormatted returns v's format parts, or (nil, false) if v is not
// formatted text. The returned slice must not be mutated by the caller.
func (v Value) GetFormatted() ([]FormatPart, bool) {
	if v.kind != KindFormatted {
		return nil, false
	}
	return v.formatted, true
}

// IsNull reports whether v is the null case.
func (v Value) IsNull() bool { return v.kind == KindNull }
