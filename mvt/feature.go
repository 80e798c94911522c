package mvt

// GeomType is an MVT feature's declared geometry type.
type GeomType uint8

const (
	GeomUnknown GeomType = iota
	GeomPoint
	GeomLineString
	GeomPolygon
)

func (g GeomType) String() string {
	switch g {
	case GeomPoint:
		return "Point"
	case GeomLineString:
		return "LineString"
	case GeomPolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// Feature field numbers.
const (
	featureFieldID       = 1
	featureFieldTags     = 2
	featureFieldType     = 3
	featureFieldGeometry = 4
)

// rawFeature is a decoded MVT feature. The tag array and geometry command
// stream are kept as raw packed-varint byte slices (no copy of the tile's
// backing buffer is made); they are only unpacked into ints on demand by
// tag lookup / geometry execution.
type rawFeature struct {
	id       uint64
	hasID    bool
	geomType GeomType
	tagsRaw  []byte
	geomRaw  []byte
}

func decodeFeature(raw []byte) (*rawFeature, error) {
	f := &rawFeature{geomType: GeomUnknown}
	r := newPBReader(raw)
	for !r.done() {
		field, wt, err := r.readTag()
		if err != nil {
			return nil, err
		}
		switch {
		case field == featureFieldID && wt == wireVarint:
			v, err := r.readVarint()
			if err != nil {
				return nil, err
			}
			f.id = v
			f.hasID = true
		case field == featureFieldTags && wt == wireBytes:
			b, err := r.readBytes()
			if err != nil {
				return nil, err
			}
			f.tagsRaw = b
		case field == featureFieldType && wt == wireVarint:
			v, err := r.readVarint()
			if err != nil {
				return nil, err
			}
			f.geomType = GeomType(v)
		case field == featureFieldGeometry && wt == wireBytes:
			b, err := r.readBytes()
			if err != nil {
				return nil, err
			}
			f.geomRaw = b
		default:
			if err := r.skipField(wt); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// tagPairs unpacks the feature's packed tag varints into (key index, value
// index) pairs. An odd count of varints is malformed (tags must come in
// pairs).
func (f *rawFeature) tagPairs() ([]uint32, error) {
	if len(f.tagsRaw) == 0 {
		return nil, nil
	}
	r := newPBReader(f.tagsRaw)
	var out []uint32
	for !r.done() {
		v, err := r.readVarint()
		if err != nil {
			return nil, err
		}
		out = append(out, uint32(v))
	}
	if len(out)%2 != 0 {
		return nil, ErrMalformed
	}
	return out, nil
}
