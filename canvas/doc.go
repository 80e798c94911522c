// Package canvas is the tile pipeline's drawing surface: a Raster
// (a Pixmap plus golang.org/x/image/vector scan-conversion) that fills and
// strokes Paths with flat colors.
//
//	r := canvas.NewRaster(512, 512)
//	r.Clear(canvas.White)
//	path := canvas.NewPath()
//	path.MoveTo(10, 10)
//	path.LineTo(500, 500)
//	path.Close()
//	r.FillPath(path, canvas.Red, false)
//	r.StrokePath(path, canvas.Black, canvas.DefaultStroke().WithWidth(2))
//	img := r.Image() // image.Image, ready for png.Encode
//
// # Coordinate system
//
// Origin (0,0) at top-left, X increases right, Y increases down — the same
// convention MVT tile-local coordinates use, so pathSink in package pipeline
// feeds geometry straight in without a flip.
package canvas
