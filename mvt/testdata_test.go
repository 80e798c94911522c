package mvt

import "math"

// Minimal protobuf writer used only by tests to build synthetic MVT tiles
// without depending on a protobuf codec.

type pbWriter struct {
	buf []byte
}

func (w *pbWriter) tag(field int, wt wireType) {
	w.varint(uint64(field)<<3 | uint64(wt))
}

func (w *pbWriter) varint(v uint64) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

func (w *pbWriter) bytesField(field int, b []byte) {
	w.tag(field, wireBytes)
	w.varint(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *pbWriter) stringField(field int, s string) {
	w.bytesField(field, []byte(s))
}

func (w *pbWriter) varintField(field int, v uint64) {
	w.tag(field, wireVarint)
	w.varint(v)
}

func zigzagEncode(n int32) uint32 {
	return uint32((n << 1) ^ (n >> 31))
}

// buildGeometry encodes a geometry command stream from move-to/line-to
// point lists (in raw tile units, one contour == one moveTo + N lineTos).
func buildGeometry(contours [][][2]int32, closed bool) []byte {
	var w pbWriter
	cx, cy := int32(0), int32(0)
	for _, pts := range contours {
		if len(pts) == 0 {
			continue
		}
		// MoveTo (count=1)
		w.varint(uint64(cmdMoveTo) | 1<<3)
		dx, dy := pts[0][0]-cx, pts[0][1]-cy
		w.varint(uint64(zigzagEncode(dx)))
		w.varint(uint64(zigzagEncode(dy)))
		cx, cy = pts[0][0], pts[0][1]

		if len(pts) > 1 {
			w.varint(uint64(cmdLineTo) | uint64(len(pts)-1)<<3)
			for _, p := range pts[1:] {
				dx, dy := p[0]-cx, p[1]-cy
				w.varint(uint64(zigzagEncode(dx)))
				w.varint(uint64(zigzagEncode(dy)))
				cx, cy = p[0], p[1]
			}
		}
		if closed {
			w.varint(uint64(cmdClosePath) | 1<<3)
		}
	}
	return w.buf
}

type testFeature struct {
	id       uint64
	hasID    bool
	geomType GeomType
	tags     []uint32
	geometry []byte
}

type testLayer struct {
	name     string
	extent   uint32
	version  uint32
	keys     []string
	values   []testValue
	features []testFeature
}

type testValue struct {
	kind string // "string", "number", "bool"
	s    string
	f    float64
	b    bool
}

func encodeTestValue(v testValue) []byte {
	var w pbWriter
	switch v.kind {
	case "string":
		w.stringField(valueFieldString, v.s)
	case "number":
		bits := math.Float64bits(v.f)
		w.tag(valueFieldDouble, wire64bit)
		for i := 0; i < 8; i++ {
			w.buf = append(w.buf, byte(bits>>(8*uint(i))))
		}
	case "bool":
		n := uint64(0)
		if v.b {
			n = 1
		}
		w.varintField(valueFieldBool, n)
	}
	return w.buf
}

func encodeTestFeature(f testFeature) []byte {
	var w pbWriter
	if f.hasID {
		w.varintField(featureFieldID, f.id)
	}
	if len(f.tags) > 0 {
		var tw pbWriter
		for _, t := range f.tags {
			tw.varint(uint64(t))
		}
		w.bytesField(featureFieldTags, tw.buf)
	}
	w.varintField(featureFieldType, uint64(f.geomType))
	if f.geometry != nil {
		w.bytesField(featureFieldGeometry, f.geometry)
	}
	return w.buf
}

func encodeTestLayer(l testLayer) []byte {
	var w pbWriter
	w.stringField(layerFieldName, l.name)
	for _, feat := range l.features {
		w.bytesField(layerFieldFeatures, encodeTestFeature(feat))
	}
	for _, k := range l.keys {
		w.stringField(layerFieldKeys, k)
	}
	for _, v := range l.values {
		w.bytesField(layerFieldValues, encodeTestValue(v))
	}
	extent := l.extent
	if extent == 0 {
		extent = defaultExtent
	}
	w.varintField(layerFieldExtent, uint64(extent))
	version := l.version
	if version == 0 {
		version = 1
	}
	w.varintField(layerFieldVersion, uint64(version))
	return w.buf
}

func encodeTestTile(layers []testLayer) []byte {
	var w pbWriter
	for _, l := range layers {
		w.bytesField(tileFieldLayers, encodeTestLayer(l))
	}
	return w.buf
}
