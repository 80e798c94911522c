// Package style implements the compiled style-layer pipeline: background,
// fill, line, and symbol layers, each wrapping compiled expr.Expression
// values for every paint/layout property the MapLibre/Mapbox GL Style
// Specification defines for that layer type.
package style

import (
	"math"

	"github.com/gogpu/vectortile/expr"
	"github.com/gogpu/vectortile/featureindex"
	"github.com/gogpu/vectortile/value"
)

// Kind identifies a style layer's rendering behavior.
type Kind uint8

const (
	KindBackground Kind = iota
	KindFill
	KindLine
	KindSymbol
)

// Dash is a stroke dash pattern: alternating dash/gap lengths, each a
// multiple of the stroked line's width per the Style Spec's line-dasharray
// semantics. An odd-length Array is logically duplicated, matching the
// rendering package's dash-pattern convention.
type Dash struct {
	Array  []float64
	Offset float64
}

// NewDash builds a Dash from alternating dash/gap lengths (taken as absolute
// values); returns nil if no length is positive.
func NewDash(lengths ...float64) *Dash {
	allZero := true
	for _, l := range lengths {
		if l > 0 {
			allZero = false
			break
		}
	}
	if allZero || len(lengths) == 0 {
		return nil
	}
	norm := make([]float64, len(lengths))
	for i, l := range lengths {
		norm[i] = math.Abs(l)
	}
	return &Dash{Array: norm}
}

// LineCap enumerates line-cap values.
type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin enumerates line-join values.
type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// PlacementMode enumerates symbol-placement values.
type PlacementMode uint8

const (
	PlacementPoint PlacementMode = iota
	PlacementLine
	PlacementLineCenter
)

// SymbolPlacement is one computed label/icon placement the Tile Pipeline
// collects while rendering a symbol layer, for a later (not-yet-built)
// collision/label-placement pass to consume.
type SymbolPlacement struct {
	LayerID  string
	X, Y     float64
	Text     string
	IconName string
	SortKey  float64
}

// OverlapPolicy enumerates icon-overlap/text-overlap values.
type OverlapPolicy uint8

const (
	OverlapNever OverlapPolicy = iota
	OverlapAlways
	OverlapCooperative
)

// Layer is the shared contract every style layer satisfies.
type Layer interface {
	ID() string
	SourceLayer() string
	MinZoom() float64
	MaxZoom() float64
	// Filter is nil if the layer has no filter (matches every feature).
	Filter() *expr.Expression
	Kind() Kind
}

// base holds the fields common to every layer type.
type base struct {
	id          string
	sourceLayer string
	minZoom     float64
	maxZoom     float64
	filter      *expr.Expression
}

func (b *base) ID() string                 { return b.id }
func (b *base) SourceLayer() string        { return b.sourceLayer }
func (b *base) MinZoom() float64           { return b.minZoom }
func (b *base) MaxZoom() float64           { return b.maxZoom }
func (b *base) Filter() *expr.Expression   { return b.filter }

// InRange reports whether zoom z falls within [MinZoom, MaxZoom).
func (b *base) InRange(z float64) bool {
	return (b.minZoom == 0 || z >= b.minZoom) && (b.maxZoom == 0 || z < b.maxZoom)
}

// Common holds the layer fields every constructor needs, mirroring the
// fields a parsed style-layer JSON object always carries regardless of
// its "type".
type Common struct {
	ID          string
	SourceLayer string
	MinZoom     float64
	MaxZoom     float64
	Filter      *expr.Expression
}

func (c Common) toBase() base {
	return base{id: c.ID, sourceLayer: c.SourceLayer, minZoom: c.MinZoom, maxZoom: c.MaxZoom, filter: c.Filter}
}

// Background is the `background` layer type: paints the whole tile.
type Background struct {
	base
	Color   *expr.Expression // → color
	Opacity *expr.Expression // → number
}

// NewBackground builds a Background layer from its compiled properties.
func NewBackground(c Common, color, opacity *expr.Expression) *Background {
	return &Background{base: c.toBase(), Color: color, Opacity: opacity}
}

func (l *Background) Kind() Kind { return KindBackground }

// Fill is the `fill` layer type.
type Fill struct {
	base
	Color        *expr.Expression
	Opacity      *expr.Expression
	OutlineColor *expr.Expression // nil if absent
	Pattern      *expr.Expression // nil if absent; resolves to a resolved-image
}

// NewFill builds a Fill layer from its compiled properties. outline and
// pattern may be nil if the style omits them.
func NewFill(c Common, color, opacity, outline, pattern *expr.Expression) *Fill {
	return &Fill{base: c.toBase(), Color: color, Opacity: opacity, OutlineColor: outline, Pattern: pattern}
}

func (l *Fill) Kind() Kind { return KindFill }

// Line is the `line` layer type.
type Line struct {
	base
	Color      *expr.Expression
	Opacity    *expr.Expression
	Width      *expr.Expression
	GapWidth   *expr.Expression // nil if absent
	Offset     *expr.Expression // nil if absent
	DashArray  []float64        // static per Style Spec (not expression-valued)
	Pattern    *expr.Expression // nil if absent

	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
}

// LineProps groups a Line layer's non-expression-valued paint/layout
// properties, which the Style Spec defines as static (not data/zoom
// driven).
type LineProps struct {
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
	DashArray  []float64
}

// NewLine builds a Line layer from its compiled properties. gapWidth,
// offset, and pattern may be nil if the style omits them.
func NewLine(c Common, color, opacity, width, gapWidth, offset, pattern *expr.Expression, props LineProps) *Line {
	return &Line{
		base:       c.toBase(),
		Color:      color,
		Opacity:    opacity,
		Width:      width,
		GapWidth:   gapWidth,
		Offset:     offset,
		DashArray:  props.DashArray,
		Pattern:    pattern,
		Cap:        props.Cap,
		Join:       props.Join,
		MiterLimit: props.MiterLimit,
	}
}

func (l *Line) Kind() Kind { return KindLine }

// Symbol is the `symbol` layer type.
type Symbol struct {
	base
	// Layout
	TextField           *expr.Expression // → string or formatted
	TextSize            *expr.Expression
	TextFont             []string
	TextAnchor           *expr.Expression
	TextOffset           [2]float64
	TextMaxWidth         *expr.Expression
	TextLetterSpacing    *expr.Expression
	TextKeepUpright      bool
	TextRotationAlignment string // "auto" | "map" | "viewport" | "viewport-glyph"
	Placement            PlacementMode
	SymbolSpacing        float64
	IconImage            *expr.Expression
	IconSize             *expr.Expression
	IconAnchor           *expr.Expression
	IconOffset           [2]float64
	IconPadding          [4]float64
	IconOverlap          OverlapPolicy
	TextOverlap          OverlapPolicy
	IconIgnorePlacement  bool
	TextIgnorePlacement  bool
	IconOptional         bool
	TextOptional         bool
	SymbolSortKey        *expr.Expression

	// Paint
	TextColor   *expr.Expression
	TextOpacity *expr.Expression
	IconColor   *expr.Expression
	IconOpacity *expr.Expression
}

// SymbolExprs groups a Symbol layer's expression-valued properties.
type SymbolExprs struct {
	TextField         *expr.Expression
	TextSize          *expr.Expression
	TextAnchor        *expr.Expression
	TextMaxWidth      *expr.Expression
	TextLetterSpacing *expr.Expression
	IconImage         *expr.Expression
	IconSize          *expr.Expression
	IconAnchor        *expr.Expression
	SymbolSortKey     *expr.Expression
	TextColor         *expr.Expression
	TextOpacity       *expr.Expression
	IconColor         *expr.Expression
	IconOpacity       *expr.Expression
}

// SymbolProps groups a Symbol layer's static (non-expression) layout
// properties.
type SymbolProps struct {
	TextFont              []string
	TextOffset            [2]float64
	TextKeepUpright       bool
	TextRotationAlignment string
	Placement             PlacementMode
	SymbolSpacing         float64
	IconOffset            [2]float64
	IconPadding           [4]float64
	IconOverlap           OverlapPolicy
	TextOverlap           OverlapPolicy
	IconIgnorePlacement   bool
	TextIgnorePlacement   bool
	IconOptional          bool
	TextOptional          bool
}

// NewSymbol builds a Symbol layer from its compiled expressions and static
// layout properties.
func NewSymbol(c Common, e SymbolExprs, p SymbolProps) *Symbol {
	return &Symbol{
		base:                  c.toBase(),
		TextField:             e.TextField,
		TextSize:              e.TextSize,
		TextFont:              p.TextFont,
		TextAnchor:            e.TextAnchor,
		TextOffset:            p.TextOffset,
		TextMaxWidth:          e.TextMaxWidth,
		TextLetterSpacing:     e.TextLetterSpacing,
		TextKeepUpright:       p.TextKeepUpright,
		TextRotationAlignment: p.TextRotationAlignment,
		Placement:             p.Placement,
		SymbolSpacing:         p.SymbolSpacing,
		IconImage:             e.IconImage,
		IconSize:              e.IconSize,
		IconAnchor:            e.IconAnchor,
		IconOffset:            p.IconOffset,
		IconPadding:           p.IconPadding,
		IconOverlap:           p.IconOverlap,
		TextOverlap:           p.TextOverlap,
		IconIgnorePlacement:   p.IconIgnorePlacement,
		TextIgnorePlacement:   p.TextIgnorePlacement,
		IconOptional:          p.IconOptional,
		TextOptional:          p.TextOptional,
		SymbolSortKey:         e.SymbolSortKey,
		TextColor:             e.TextColor,
		TextOpacity:           e.TextOpacity,
		IconColor:             e.IconColor,
		IconOpacity:           e.IconOpacity,
	}
}

func (l *Symbol) Kind() Kind { return KindSymbol }

// EvalColor evaluates expr e against scope and returns its color (with
// opacity applied to alpha), or ok=false on evaluation failure — the
// caller should skip drawing that feature/property rather than abort the
// tile (spec.md §7).
func EvalColor(e *expr.Expression, opacity *expr.Expression, s expr.Scope) (value.RGBA, bool) {
	if e == nil {
		return value.RGBA{}, false
	}
	cv, err := e.Eval(s)
	if err != nil {
		return value.RGBA{}, false
	}
	c, ok := cv.GetColor()
	if !ok {
		return value.RGBA{}, false
	}
	if opacity != nil {
		ov, err := opacity.Eval(s)
		if err == nil {
			if o, ok := ov.GetNumber(); ok {
				c.A *= o
			}
		}
	}
	return c, true
}

// EvalNumber evaluates e and returns its numeric value, or ok=false.
func EvalNumber(e *expr.Expression, s expr.Scope) (float64, bool) {
	if e == nil {
		return 0, false
	}
	v, err := e.Eval(s)
	if err != nil {
		return 0, false
	}
	return v.GetNumber()
}

// EvalString evaluates e and renders it via as_string (using Formatted
// values' concatenated text), or ok=false.
func EvalString(e *expr.Expression, s expr.Scope) (string, bool) {
	if e == nil {
		return "", false
	}
	v, err := e.Eval(s)
	if err != nil {
		return "", false
	}
	return v.String(), true
}

// IndexDemand returns the field/value, has, or geometry-type demand this
// layer's filter would place on a featureindex.Description, or ok=false if
// the filter has no single-predicate fast-path form.
func IndexDemand(l Layer) (field string, interesting []value.Value, needsHas bool, needsGeomType bool, ok bool) {
	f := l.Filter()
	if f == nil {
		return "", nil, false, false, false
	}
	ff := f.FastFilter()
	if ff == nil {
		return "", nil, false, false, false
	}
	if ff.GeomType != "" {
		return "", nil, false, true, true
	}
	if len(ff.Equals) == 1 && len(ff.Has) == 0 && len(ff.NotHas) == 0 {
		return ff.Equals[0].Field, []value.Value{ff.Equals[0].Value}, false, false, true
	}
	if len(ff.Has) == 1 && len(ff.Equals) == 0 {
		return ff.Has[0], nil, true, false, true
	}
	return "", nil, false, false, false
}

// Matches reports whether feature (bound in s) passes l's filter. A nil
// filter matches everything. A filter evaluation error is treated as a
// non-match rather than aborting the tile (spec.md §7).
func Matches(l Layer, s expr.Scope) bool {
	f := l.Filter()
	if f == nil {
		return true
	}
	v, err := f.Eval(s)
	if err != nil {
		return false
	}
	b, _ := v.GetBoolean()
	return b
}

var _ = featureindex.Bitset{} // referenced by callers wiring IndexDemand to a built Index
