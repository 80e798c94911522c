// Command vtrender renders one vector tile through the full pipeline:
// load a stylesheet, fetch a tile from a local directory or HTTP source,
// and write the rendered raster out as a PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/vectortile"
	"github.com/gogpu/vectortile/pipeline"
	"github.com/gogpu/vectortile/style"
)

func main() {
	var (
		stylePath = flag.String("style", "", "path to a style JSON document (required)")
		tilesDir  = flag.String("tiles-dir", "", "local directory of {z}/{x}/{y}.mvt tiles (mutually exclusive with -tiles-url)")
		tilesURL  = flag.String("tiles-url", "", "override the style's tiles[0] URL template (mutually exclusive with -tiles-dir)")
		z         = flag.Int("z", 0, "tile Z coordinate")
		x         = flag.Int("x", 0, "tile X coordinate")
		y         = flag.Int("y", 0, "tile Y coordinate")
		width     = flag.Int("width", 512, "output raster width")
		height    = flag.Int("height", 512, "output raster height")
		output    = flag.String("output", "tile.png", "output PNG path")
		verbose   = flag.Bool("v", false, "log tile-layer evaluation failures to stderr")
	)
	flag.Parse()

	if *stylePath == "" {
		log.Fatal("vtrender: -style is required")
	}
	if *tilesDir != "" && *tilesURL != "" {
		log.Fatal("vtrender: -tiles-dir and -tiles-url are mutually exclusive")
	}

	styleJSON, err := os.ReadFile(*stylePath)
	if err != nil {
		log.Fatalf("vtrender: read style: %v", err)
	}

	st, err := vectortile.LoadStyle(styleJSON, nil, nil)
	if err != nil {
		log.Fatalf("vtrender: load style: %v", err)
	}

	source := resolveSource(st, *tilesDir, *tilesURL)

	tileData, err := source.FetchTile(context.Background(), *z, *x, *y)
	if err != nil {
		log.Fatalf("vtrender: fetch tile %d/%d/%d: %v", *z, *x, *y, err)
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	p := pipeline.New(layersFor(st), st.Sprites, logger)
	descriptor := pipeline.Descriptor{
		Z: *z, X: *x, Y: *y,
		Zoom:        float64(*z),
		ScaleFactor: 1,
		Width:       *width,
		Height:      *height,
	}

	raster, placements, err := p.FillTile(context.Background(), descriptor, tileData)
	if err != nil {
		log.Fatalf("vtrender: render tile: %v", err)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "vtrender: %d symbol placements collected\n", len(placements))
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("vtrender: create output: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, raster.Image()); err != nil {
		log.Fatalf("vtrender: encode PNG: %v", err)
	}
}

func resolveSource(st *vectortile.Style, tilesDir, tilesURL string) vectortile.DataSource {
	switch {
	case tilesDir != "":
		return vectortile.NewFileSource(tilesDir)
	case tilesURL != "":
		return vectortile.NewHTTPSource(tilesURL, nil)
	case strings.HasPrefix(st.TileURL, "http://"), strings.HasPrefix(st.TileURL, "https://"):
		return vectortile.NewHTTPSource(st.TileURL, nil)
	default:
		return vectortile.NewFileSource(st.TileURL)
	}
}

func layersFor(st *vectortile.Style) []pipeline.Layer {
	layers := make([]pipeline.Layer, 0, len(st.Layers))
	for _, l := range st.Layers {
		source := l.SourceLayer()
		if _, ok := l.(*style.Background); ok {
			source = ""
		}
		layers = append(layers, pipeline.Layer{Style: l, Source: source})
	}
	return layers
}
