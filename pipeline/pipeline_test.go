package pipeline

import (
	"context"
	"testing"

	"github.com/gogpu/vectortile/expr"
	"github.com/gogpu/vectortile/style"
)

func mustCompile(t *testing.T, jsonLiteral string) *expr.Expression {
	t.Helper()
	e, err := expr.Compile(jsonLiteral)
	if err != nil {
		t.Fatalf("compile %q: %v", jsonLiteral, err)
	}
	return e
}

func mustCompileNum(t *testing.T, n float64) *expr.Expression {
	t.Helper()
	e, err := expr.Compile(n)
	if err != nil {
		t.Fatalf("compile %v: %v", n, err)
	}
	return e
}

// --- minimal MVT tile encoder for tests (protobuf varint/length-delimited
// wire format, mirroring package mvt's own test fixtures) ---

type pbBuf struct{ b []byte }

func (p *pbBuf) tag(field int, wireType int) {
	p.varint(uint64(field<<3 | wireType))
}

func (p *pbBuf) varint(v uint64) {
	for v >= 0x80 {
		p.b = append(p.b, byte(v)|0x80)
		v >>= 7
	}
	p.b = append(p.b, byte(v))
}

func (p *pbBuf) bytesField(field int, b []byte) {
	p.tag(field, 2)
	p.varint(uint64(len(b)))
	p.b = append(p.b, b...)
}

func (p *pbBuf) stringField(field int, s string) { p.bytesField(field, []byte(s)) }

func (p *pbBuf) varintField(field int, v uint64) {
	p.tag(field, 0)
	p.varint(v)
}

func zigzag(n int32) uint32 { return uint32((n << 1) ^ (n >> 31)) }

func buildOnePointLayer(name string) []byte {
	// geometry: MoveTo(1,1) command, single point at extent-relative (1,1)
	var geom pbBuf
	geom.varint(uint64(1<<3 | 1)) // MoveTo, count 1
	geom.varint(uint64(zigzag(1)))
	geom.varint(uint64(zigzag(1)))

	var feature pbBuf
	feature.varintField(1, 1)                      // id
	feature.tag(2, 2)                               // tags (key/value index pairs)
	feature.varint(2)
	feature.varint(0) // key index 0
	feature.varint(0) // value index 0
	feature.varintField(3, 1)                        // geom type POINT=1
	feature.bytesField(4, geom.b)                    // geometry

	var layer pbBuf
	layer.varintField(15, 2) // version
	layer.stringField(1, name)
	layer.bytesField(2, feature.b) // one feature
	layer.stringField(3, "cls")    // keys[0]
	var valMsg pbBuf
	valMsg.stringField(1, "building") // string_value
	layer.bytesField(4, valMsg.b)     // values[0]
	layer.varintField(5, 4096)        // extent

	var tile pbBuf
	tile.bytesField(3, layer.b)
	return tile.b
}

func TestFillTileBackgroundAndFillLayers(t *testing.T) {
	bg := compileBackground(t, "#336699", 1)
	fillLayer := compileFill(t, "land", "#ff0000", 1)

	p := New([]Layer{
		{Style: bg},
		{Style: fillLayer, Source: "land"},
	}, nil, nil)

	tileData := buildOnePointLayer("land")
	r, _, err := p.FillTile(context.Background(), Descriptor{Width: 8, Height: 8, Zoom: 10, ScaleFactor: 1}, tileData)
	if err != nil {
		t.Fatalf("FillTile failed: %v", err)
	}
	if r == nil {
		t.Fatal("expected non-nil raster")
	}
}

func TestFillTileCanceledContext(t *testing.T) {
	p := New(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := p.FillTile(ctx, Descriptor{Width: 4, Height: 4}, buildOnePointLayer("land"))
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func compileBackground(t *testing.T, color string, opacity float64) *style.Background {
	t.Helper()
	c := mustCompile(t, color)
	o := mustCompileNum(t, opacity)
	return &style.Background{Color: c, Opacity: o}
}

func compileFill(t *testing.T, source, color string, opacity float64) *style.Fill {
	t.Helper()
	c := mustCompile(t, color)
	o := mustCompileNum(t, opacity)
	_ = source
	return &style.Fill{Color: c, Opacity: o}
}
