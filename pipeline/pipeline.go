// Package pipeline implements the Tile Pipeline: given a decoded MVT tile
// and a compiled style, it walks each style layer in order, evaluates its
// filter/paint/layout expressions against every matching feature, and
// records the resulting draw commands onto a canvas.Canvas.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/gogpu/vectortile/canvas"
	"github.com/gogpu/vectortile/expr"
	"github.com/gogpu/vectortile/internal/ratelimit"
	"github.com/gogpu/vectortile/mvt"
	"github.com/gogpu/vectortile/scope"
	"github.com/gogpu/vectortile/sprite"
	"github.com/gogpu/vectortile/style"
	"github.com/gogpu/vectortile/value"
)

// featureBatchSize is the cancellation-check granularity within a single
// style layer's feature loop (spec.md §5: "before each ≥64-feature batch").
const featureBatchSize = 64

// Descriptor names the tile being filled and the render parameters that
// stay constant across every feature in it.
type Descriptor struct {
	Z, X, Y     int
	Zoom        float64 // rendered zoom, may differ from Z when overzoomed
	ScaleFactor float64 // device pixel ratio for sprite lookups
	Width       int
	Height      int
	Locale      string

	// OverzoomScale/OverzoomTranslate are non-identity when the data source
	// returned an ancestor tile in place of the requested one; see
	// scope.Scope's fields of the same name.
	OverzoomScale     float64
	OverzoomTranslate [2]float64
}

// Layer is the subset of a loaded stylesheet the pipeline consumes: an
// ordered list of style layers plus the source-layer each draws from.
type Layer struct {
	Style  style.Layer
	Source string // MVT source layer name
}

// Pipeline renders tiles against one compiled set of style layers.
type Pipeline struct {
	Layers  []Layer
	Sprites *sprite.Sheet
	Logger  *slog.Logger

	limiter *ratelimit.Bucket
}

// New returns a Pipeline over layers, logging nothing unless logger is
// non-nil. Evaluation-failure diagnostics are rate-limited to 5/sec with a
// burst of 20, so a malformed style or feed can't flood the logger.
func New(layers []Layer, sprites *sprite.Sheet, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Pipeline{
		Layers:  layers,
		Sprites: sprites,
		Logger:  logger,
		limiter: ratelimit.New(5, 20),
	}
}

// FillTile decodes tileData (raw MVT bytes already fetched by a DataSource
// collaborator) and renders every style layer, in order, onto a freshly
// allocated Raster. It returns ctx.Err() if ctx is canceled before the
// initial decode (with a nil Raster), or at a layer boundary or a
// ≥64-feature batch boundary (with the partially-filled Raster) — matching
// spec.md §5's cancellation-check placement.
func (p *Pipeline) FillTile(ctx context.Context, d Descriptor, tileData []byte) (*canvas.Raster, []style.SymbolPlacement, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, nil, err
	}

	t, err := mvt.New(tileData)
	if err != nil {
		return nil, nil, err
	}

	r := canvas.NewRaster(d.Width, d.Height)
	var placements []style.SymbolPlacement

	for _, layer := range p.Layers {
		if err := ctxErr(ctx); err != nil {
			return r, placements, err
		}
		lp, err := p.fillLayer(ctx, t, d, layer, r)
		if err != nil {
			return r, placements, err
		}
		placements = append(placements, lp...)
	}
	return r, placements, nil
}

func (p *Pipeline) fillLayer(ctx context.Context, t *mvt.Tile, d Descriptor, layer Layer, r *canvas.Raster) ([]style.SymbolPlacement, error) {
	if bl, ok := layer.Style.(*style.Background); ok {
		c, ok := style.EvalColor(bl.Color, bl.Opacity, &fixedZoomScope{zoom: d.Zoom})
		if ok {
			r.Clear(c)
		}
		return nil, nil
	}

	it := t.Iter()
	found, err := it.ReadLayerByName(layer.Source)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	n, err := it.LayerFeatureCount()
	if err != nil {
		return nil, err
	}

	s := scope.New(it, d.Zoom, d.ScaleFactor, p.Sprites, d.Locale)
	s.OverzoomScale = orOne(d.OverzoomScale)
	s.OverzoomTranslate = d.OverzoomTranslate

	var placements []style.SymbolPlacement
	for i := 0; i < n; i++ {
		if i%featureBatchSize == 0 {
			if err := ctxErr(ctx); err != nil {
				return placements, err
			}
		}
		if err := it.ReadFeature(i); err != nil {
			p.logEvalFailure("read-feature", layer.Style.ID(), err)
			continue
		}
		s.BindFeature()
		if !style.Matches(layer.Style, s) {
			continue
		}
		p.renderFeature(s, it, layer.Style, r, &placements)
	}
	return placements, nil
}

func (p *Pipeline) renderFeature(s *scope.Scope, it *mvt.Iterator, l style.Layer, r *canvas.Raster, placements *[]style.SymbolPlacement) {
	switch lv := l.(type) {
	case *style.Fill:
		path := canvas.NewPath()
		sink := pathSink{path: path}
		if err := it.ExecuteGeometry(s.NewOverzoomSink(sink)); err != nil {
			p.logEvalFailure("geometry", l.ID(), err)
			return
		}
		c, ok := style.EvalColor(lv.Color, lv.Opacity, s)
		if !ok {
			return
		}
		r.FillPath(path, c, false)
	case *style.Line:
		path := canvas.NewPath()
		sink := pathSink{path: path}
		if err := it.ExecuteGeometry(s.NewOverzoomSink(sink)); err != nil {
			p.logEvalFailure("geometry", l.ID(), err)
			return
		}
		c, ok := style.EvalColor(lv.Color, lv.Opacity, s)
		if !ok {
			return
		}
		w, ok := style.EvalNumber(lv.Width, s)
		if !ok {
			w = 1
		}
		st := canvas.DefaultStroke().WithWidth(w).WithCap(canvas.LineCap(lv.Cap)).WithJoin(canvas.LineJoin(lv.Join))
		if lv.MiterLimit > 0 {
			st = st.WithMiterLimit(lv.MiterLimit)
		}
		if len(lv.DashArray) > 0 {
			st = st.WithDashPattern(lv.DashArray...)
		}
		r.StrokePath(path, c, st)
	case *style.Symbol:
		text, _ := style.EvalString(lv.TextField, s)
		icon, _ := style.EvalString(lv.IconImage, s)
		if text == "" && icon == "" {
			return
		}
		*placements = append(*placements, style.SymbolPlacement{
			LayerID:  l.ID(),
			Text:     text,
			IconName: icon,
		})
	}
}

func (p *Pipeline) logEvalFailure(op, layerID string, err error) {
	if !p.limiter.Allow() {
		return
	}
	p.Logger.Warn("tile layer evaluation failed", slog.String("op", op), slog.String("layer", layerID), slog.Any("error", err))
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func orOne(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

// pathSink adapts mvt.GeometrySink to canvas.Path, flattening MVT's
// integer-delta-decoded [0,1]-normalized coordinates directly into path
// commands (the canvas's curve ops are unused since MVT geometry is
// polyline-only).
type pathSink struct{ path *canvas.Path }

func (s pathSink) MoveTo(x, y float64) { s.path.MoveTo(x, y) }
func (s pathSink) LineTo(x, y float64) { s.path.LineTo(x, y) }
func (s pathSink) ClosePath()          { s.path.Close() }

// fixedZoomScope is the minimal expr.Scope a background layer's expressions
// need: no feature, no tags, just the current zoom.
type fixedZoomScope struct{ zoom float64 }

func (f *fixedZoomScope) Zoom() float64 { return f.zoom }
func (f *fixedZoomScope) GetTag(string) (value.Value, bool) {
	return value.Value{}, false
}
func (f *fixedZoomScope) GeometryType() string { return "Unknown" }
func (f *fixedZoomScope) FeatureID() (value.Value, bool) {
	return value.Value{}, false
}
func (f *fixedZoomScope) ResolveImage(string) (value.Value, bool) {
	return value.Value{}, false
}
func (f *fixedZoomScope) ScaleFactor() float64 { return 1 }
func (f *fixedZoomScope) Locale() string       { return "" }

var _ expr.Scope = (*fixedZoomScope)(nil)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
