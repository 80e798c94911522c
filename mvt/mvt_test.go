package mvt

import "testing"

func simpleTile() []byte {
	return encodeTestTile([]testLayer{
		{
			name:   "roads",
			extent: 4096,
			keys:   []string{"class", "name"},
			values: []testValue{
				{kind: "string", s: "primary"},
				{kind: "string", s: "Hello, world!"},
			},
			features: []testFeature{
				{
					id: 1, hasID: true,
					geomType: GeomLineString,
					tags:     []uint32{0, 0, 1, 1},
					geometry: buildGeometry([][][2]int32{{{0, 0}, {10, 10}, {20, 0}}}, false),
				},
			},
		},
	})
}

func TestDecodeLayerAndFeature(t *testing.T) {
	tile, err := New(simpleTile())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tile.LayerCount() != 1 {
		t.Fatalf("LayerCount = %d, want 1", tile.LayerCount())
	}

	it := tile.Iter()
	if it.State() != StateNoLayer {
		t.Fatalf("initial state = %v, want NoLayer", it.State())
	}
	ok, err := it.ReadLayerByName("roads")
	if err != nil || !ok {
		t.Fatalf("ReadLayerByName: ok=%v err=%v", ok, err)
	}
	if name, _ := it.LayerName(); name != "roads" {
		t.Errorf("LayerName = %q", name)
	}
	if ext, _ := it.LayerExtent(); ext != 4096 {
		t.Errorf("LayerExtent = %d", ext)
	}

	more, err := it.NextFeature()
	if err != nil || !more {
		t.Fatalf("NextFeature: more=%v err=%v", more, err)
	}
	if it.State() != StateOnFeature {
		t.Fatalf("state after NextFeature = %v", it.State())
	}
	id, ok, _ := it.FeatureID()
	if !ok || id != 1 {
		t.Errorf("FeatureID = %d, %v", id, ok)
	}
	gt, _ := it.FeatureGeometryType()
	if gt != GeomLineString {
		t.Errorf("FeatureGeometryType = %v", gt)
	}
	v, ok, err := it.FeatureTag("name")
	if err != nil || !ok {
		t.Fatalf("FeatureTag: ok=%v err=%v", ok, err)
	}
	if s, _ := v.GetString(); s != "Hello, world!" {
		t.Errorf("tag name = %q", s)
	}

	more, err = it.NextFeature()
	if err != nil || more {
		t.Fatalf("expected end of features, got more=%v err=%v", more, err)
	}
	if it.State() != StateOnLayer {
		t.Fatalf("state after exhausting features = %v, want OnLayer", it.State())
	}
}

func TestFeatureTagsSkipsOutOfRangeSilently(t *testing.T) {
	tile, err := New(encodeTestTile([]testLayer{
		{
			name: "l", keys: []string{"a"},
			values: []testValue{{kind: "string", s: "v"}},
			features: []testFeature{
				{geomType: GeomPoint, tags: []uint32{0, 0, 99, 99}, geometry: buildGeometry([][][2]int32{{{1, 1}}}, false)},
			},
		},
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	it := tile.Iter()
	if err := it.ReadLayerByIndex(0); err != nil {
		t.Fatalf("ReadLayerByIndex: %v", err)
	}
	if err := it.ReadFeature(0); err != nil {
		t.Fatalf("ReadFeature: %v", err)
	}
	tags, err := it.FeatureTags()
	if err != nil {
		t.Fatalf("FeatureTags: %v", err)
	}
	if len(tags) != 1 || tags[0].Key != "a" {
		t.Fatalf("tags = %+v, want exactly the in-range pair", tags)
	}
}

func TestExecuteGeometryNormalizesToUnitSquare(t *testing.T) {
	tile, err := New(encodeTestTile([]testLayer{
		{
			name: "l", extent: 100,
			features: []testFeature{
				{geomType: GeomPolygon, geometry: buildGeometry([][][2]int32{{{0, 0}, {100, 0}, {100, 100}, {0, 100}}}, true)},
			},
		},
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	it := tile.Iter()
	it.ReadLayerByIndex(0)
	it.ReadFeature(0)

	var pts []struct{ x, y float64 }
	sink := geomCollector{onMove: func(x, y float64) { pts = append(pts, struct{ x, y float64 }{x, y}) },
		onLine: func(x, y float64) { pts = append(pts, struct{ x, y float64 }{x, y}) }}
	if err := it.ExecuteGeometry(&sink); err != nil {
		t.Fatalf("ExecuteGeometry: %v", err)
	}
	if len(pts) != 4 {
		t.Fatalf("got %d points, want 4", len(pts))
	}
	if pts[1].x != 1.0 || pts[2].y != 1.0 {
		t.Errorf("points not normalized to [0,1]: %+v", pts)
	}
}

// geomCollector adapts function fields to the GeometrySink interface for
// table-free inline assertions.
type geomCollector struct {
	onMove  func(x, y float64)
	onLine  func(x, y float64)
	onClose func()
}

func (g *geomCollector) MoveTo(x, y float64) { g.onMove(x, y) }
func (g *geomCollector) LineTo(x, y float64) { g.onLine(x, y) }
func (g *geomCollector) ClosePath() {
	if g.onClose != nil {
		g.onClose()
	}
}

// TestExecuteGeometryTruncatedFailsCleanly is scenario S5 from spec.md §8:
// a LineTo declares 3 pairs of deltas but the stream only contains 2 before
// EOF. The iterator must reject with a clean error and emit no sink calls.
func TestExecuteGeometryTruncatedFailsCleanly(t *testing.T) {
	var w pbWriter
	// MoveTo count=1
	w.varint(uint64(cmdMoveTo) | 1<<3)
	w.varint(uint64(zigzagEncode(0)))
	w.varint(uint64(zigzagEncode(0)))
	// LineTo claims count=3 but only provides 2 pairs of deltas.
	w.varint(uint64(cmdLineTo) | 3<<3)
	w.varint(uint64(zigzagEncode(5)))
	w.varint(uint64(zigzagEncode(5)))
	w.varint(uint64(zigzagEncode(5)))
	w.varint(uint64(zigzagEncode(5)))
	// stream ends here — truncated.

	tile, err := New(encodeTestTile([]testLayer{
		{
			name: "l",
			features: []testFeature{
				{geomType: GeomLineString, geometry: w.buf},
			},
		},
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	it := tile.Iter()
	it.ReadLayerByIndex(0)
	it.ReadFeature(0)

	var calls int
	sink := geomCollector{
		onMove:  func(x, y float64) { calls++ },
		onLine:  func(x, y float64) { calls++ },
		onClose: func() { calls++ },
	}
	if err := it.ExecuteGeometry(&sink); err == nil {
		t.Fatalf("expected ExecuteGeometry to fail on truncated stream")
	}
	if calls != 0 {
		t.Fatalf("expected zero sink calls on truncation, got %d", calls)
	}
}

func TestReadFeatureWrongStateFails(t *testing.T) {
	tile, _ := New(simpleTile())
	it := tile.Iter()
	if err := it.ReadFeature(0); err != ErrWrongState {
		t.Fatalf("ReadFeature before selecting a layer: err = %v, want ErrWrongState", err)
	}
}

func TestMalformedTileRejected(t *testing.T) {
	if _, err := New([]byte{0xff}); err == nil {
		t.Fatalf("expected error decoding garbage bytes")
	}
}
