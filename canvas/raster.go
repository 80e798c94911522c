package canvas

import (
	"image"

	"golang.org/x/image/vector"

	"github.com/gogpu/vectortile/internal/stroke"
)

// Canvas is the drawing surface a style layer's render step targets: record
// a fill or stroke command, or clear the whole surface. Implementations are
// free to batch, defer, or rasterize immediately.
type Canvas interface {
	FillPath(path *Path, c RGBA, evenOdd bool)
	StrokePath(path *Path, c RGBA, s Stroke)
	Clear(c RGBA)
	Image() image.Image
}

// Raster is a software Canvas backed by a Pixmap and golang.org/x/image/vector
// for anti-aliased scan-conversion — the scan-converter the teacher's own
// rasterizer (internal/raster) doesn't use internally, wired in here as the
// tile pipeline's drawing surface instead of introducing a second pixel
// buffer type.
type Raster struct {
	pm            *Pixmap
	width, height int
}

// NewRaster allocates a Raster of the given pixel dimensions.
func NewRaster(width, height int) *Raster {
	return &Raster{pm: NewPixmap(width, height), width: width, height: height}
}

func (r *Raster) Clear(c RGBA) { r.pm.Clear(c) }

func (r *Raster) Image() image.Image { return r.pm.ToImage() }

// Pixmap exposes the backing buffer for callers that need direct pixel
// access (e.g. sprite compositing during symbol placement).
func (r *Raster) Pixmap() *Pixmap { return r.pm }

func (r *Raster) FillPath(path *Path, c RGBA, evenOdd bool) {
	z := vector.NewRasterizer(r.width, r.height)
	feedRasterizer(z, path.Elements())
	r.paint(z, c)
}

func (r *Raster) StrokePath(path *Path, c RGBA, s Stroke) {
	outline := stroke.NewStrokeExpander(toStrokeStyle(s)).Expand(toStrokeElements(path.Elements()))
	z := vector.NewRasterizer(r.width, r.height)
	feedRasterizer(z, fromStrokeElements(outline))
	r.paint(z, c)
}

func (r *Raster) paint(z *vector.Rasterizer, c RGBA) {
	src := image.NewUniform(c.Color())
	z.Draw(r.pm, image.Rect(0, 0, r.width, r.height), src, image.Point{})
}

func feedRasterizer(z *vector.Rasterizer, elems []PathElement) {
	for _, e := range elems {
		switch v := e.(type) {
		case MoveTo:
			z.MoveTo(float32(v.Point.X), float32(v.Point.Y))
		case LineTo:
			z.LineTo(float32(v.Point.X), float32(v.Point.Y))
		case QuadTo:
			z.QuadTo(float32(v.Control.X), float32(v.Control.Y), float32(v.Point.X), float32(v.Point.Y))
		case CubicTo:
			z.CubeTo(
				float32(v.Control1.X), float32(v.Control1.Y),
				float32(v.Control2.X), float32(v.Control2.Y),
				float32(v.Point.X), float32(v.Point.Y),
			)
		case Close:
			z.ClosePath()
		}
	}
}

func toStrokeStyle(s Stroke) stroke.Stroke {
	return stroke.Stroke{
		Width:      s.Width,
		Cap:        stroke.LineCap(s.Cap),
		Join:       stroke.LineJoin(s.Join),
		MiterLimit: s.MiterLimit,
	}
}

func toStrokeElements(elems []PathElement) []stroke.PathElement {
	out := make([]stroke.PathElement, 0, len(elems))
	for _, e := range elems {
		switch v := e.(type) {
		case MoveTo:
			out = append(out, stroke.MoveTo{Point: stroke.Point{X: v.Point.X, Y: v.Point.Y}})
		case LineTo:
			out = append(out, stroke.LineTo{Point: stroke.Point{X: v.Point.X, Y: v.Point.Y}})
		case QuadTo:
			out = append(out, stroke.QuadTo{
				Control: stroke.Point{X: v.Control.X, Y: v.Control.Y},
				Point:   stroke.Point{X: v.Point.X, Y: v.Point.Y},
			})
		case CubicTo:
			out = append(out, stroke.CubicTo{
				Control1: stroke.Point{X: v.Control1.X, Y: v.Control1.Y},
				Control2: stroke.Point{X: v.Control2.X, Y: v.Control2.Y},
				Point:    stroke.Point{X: v.Point.X, Y: v.Point.Y},
			})
		case Close:
			out = append(out, stroke.Close{})
		}
	}
	return out
}

func fromStrokeElements(elems []stroke.PathElement) []PathElement {
	out := make([]PathElement, 0, len(elems))
	for _, e := range elems {
		switch v := e.(type) {
		case stroke.MoveTo:
			out = append(out, MoveTo{Point: Pt(v.Point.X, v.Point.Y)})
		case stroke.LineTo:
			out = append(out, LineTo{Point: Pt(v.Point.X, v.Point.Y)})
		case stroke.QuadTo:
			out = append(out, QuadTo{Control: Pt(v.Control.X, v.Control.Y), Point: Pt(v.Point.X, v.Point.Y)})
		case stroke.CubicTo:
			out = append(out, CubicTo{
				Control1: Pt(v.Control1.X, v.Control1.Y),
				Control2: Pt(v.Control2.X, v.Control2.Y),
				Point:    Pt(v.Point.X, v.Point.Y),
			})
		case stroke.Close:
			out = append(out, Close{})
		}
	}
	return out
}
