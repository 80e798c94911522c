// Package scope implements the Render Scope bound to each feature as a
// style layer's paint/layout expressions are evaluated: the current zoom,
// the feature's tags and geometry, sprite resolution, and the overzoom
// transform applied to raw MVT coordinates.
package scope

import (
	"github.com/gogpu/vectortile/mvt"
	"github.com/gogpu/vectortile/sprite"
	"github.com/gogpu/vectortile/value"
)

// Scope implements expr.Scope against one MVT iterator positioned on a
// feature, plus the render-wide state (zoom, scale, sprite sheet, overzoom
// transform) shared across every feature in a tile. It satisfies
// expr.Scope structurally without importing package expr, keeping expr and
// scope's dependency direction one-way (expr has no knowledge of scope).
type Scope struct {
	zoom        float64
	scaleFactor float64
	locale      string

	it *mvt.Iterator

	sprites *sprite.Sheet

	// OverzoomScale/OverzoomTranslate remap a child tile's [0,1] window
	// onto the [0,1] space of an ancestor tile actually fetched by the data
	// source, per spec.md §9(a) — the overzoom policy itself (which parent
	// to pick) is left to the Data Source collaborator; Scope only applies
	// the resulting affine transform to decoded geometry.
	OverzoomScale     float64
	OverzoomTranslate [2]float64

	tagCache map[string]value.Value
}

// New builds a Scope bound to it (already positioned on a layer) for one
// tile render. zoom and scaleFactor are constant across every feature in
// the tile. OverzoomScale starts at 1 and OverzoomTranslate at {0,0} (the
// identity transform); callers set them afterwards when overzooming.
func New(it *mvt.Iterator, zoom, scaleFactor float64, sheet *sprite.Sheet, locale string) *Scope {
	return &Scope{
		zoom:              zoom,
		scaleFactor:       scaleFactor,
		locale:            locale,
		it:                it,
		sprites:           sheet,
		OverzoomScale:     1,
		OverzoomTranslate: [2]float64{0, 0},
	}
}

// BindFeature repositions the scope onto a new current feature, clearing
// the per-feature tag cache. Call once per feature before evaluating any
// paint/layout/filter expression against it.
func (s *Scope) BindFeature() {
	s.tagCache = nil
}

func (s *Scope) Zoom() float64 { return s.zoom }

func (s *Scope) GetTag(key string) (value.Value, bool) {
	if s.tagCache == nil {
		tags, err := s.it.FeatureTags()
		if err != nil {
			return value.Value{}, false
		}
		s.tagCache = make(map[string]value.Value, len(tags))
		for _, t := range tags {
			s.tagCache[t.Key] = t.Value
		}
	}
	v, ok := s.tagCache[key]
	return v, ok
}

func (s *Scope) GeometryType() string {
	gt, err := s.it.FeatureGeometryType()
	if err != nil {
		return "Unknown"
	}
	return gt.String()
}

func (s *Scope) FeatureID() (value.Value, bool) {
	id, ok, err := s.it.FeatureID()
	if err != nil || !ok {
		return value.Value{}, false
	}
	return value.NewNumber(float64(id)), true
}

func (s *Scope) ResolveImage(name string) (value.Value, bool) {
	if s.sprites == nil {
		return value.Value{}, false
	}
	_, ok := s.sprites.Get(name, s.scaleFactor)
	if !ok {
		return value.Value{}, false
	}
	return value.NewResolvedImage(name, spriteResolverFor(s.sprites, s.scaleFactor)), true
}

func (s *Scope) ScaleFactor() float64 { return s.scaleFactor }

func (s *Scope) Locale() string { return s.locale }

// spriteResolverAdapter lets the sheet satisfy value.SpriteResolver without
// the sprite package depending on value (the reverse would be an import
// cycle: value is a leaf package).
type spriteResolverAdapter struct {
	sheet *sprite.Sheet
	scale float64
}

func (a spriteResolverAdapter) ResolveSprite(name string, scale float64) (any, bool) {
	sp, ok := a.sheet.Get(name, scale)
	if !ok {
		return nil, false
	}
	return sp, true
}

func spriteResolverFor(sheet *sprite.Sheet, scale float64) value.SpriteResolver {
	return spriteResolverAdapter{sheet: sheet, scale: scale}
}

// GeometrySink is re-exported from mvt for convenience so callers in
// package pipeline don't need to import mvt just to name the sink
// interface.
type GeometrySink = mvt.GeometrySink

// OverzoomSink wraps a GeometrySink, remapping normalized [0,1] MVT
// coordinates by the scope's overzoom scale/translate before forwarding to
// inner. Construct one per feature render when OverzoomScale != 1 or
// OverzoomTranslate != {0,0}; pass the scope's raw feature geometry through
// it via mvt.Iterator.ExecuteGeometry.
type OverzoomSink struct {
	Inner             GeometrySink
	Scale             float64
	Translate         [2]float64
}

func (s *Scope) NewOverzoomSink(inner GeometrySink) GeometrySink {
	if s.OverzoomScale == 1 && s.OverzoomTranslate == [2]float64{0, 0} {
		return inner
	}
	return &OverzoomSink{Inner: inner, Scale: s.OverzoomScale, Translate: s.OverzoomTranslate}
}

func (o *OverzoomSink) MoveTo(x, y float64) {
	o.Inner.MoveTo(x*o.Scale+o.Translate[0], y*o.Scale+o.Translate[1])
}

func (o *OverzoomSink) LineTo(x, y float64) {
	o.Inner.LineTo(x*o.Scale+o.Translate[0], y*o.Scale+o.Translate[1])
}

func (o *OverzoomSink) ClosePath() { o.Inner.ClosePath() }
