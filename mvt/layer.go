package mvt

import "github.com/gogpu/vectortile/value"

// Layer field numbers.
const (
	layerFieldName     = 1
	layerFieldFeatures = 2
	layerFieldKeys     = 3
	layerFieldValues   = 4
	layerFieldExtent   = 5
	layerFieldVersion  = 15
)

// defaultExtent is the MVT spec's default coordinate resolution when a
// layer omits the extent field.
const defaultExtent = 4096

// Layer is a decoded MVT layer: its key/value tables and the raw byte range
// of each feature (features are decoded further only as an Iterator visits
// them).
type Layer struct {
	Name        string
	Extent      uint32
	Version     uint32
	Keys        []string
	Values      []value.Value
	featureRaw  [][]byte
	featureDec  []*rawFeature
}

// decodeLayer decodes a Layer submessage. A missing name is malformed (name
// is a required field per the MVT spec).
func decodeLayer(raw []byte) (*Layer, error) {
	l := &Layer{Extent: defaultExtent, Version: 1}
	haveName := false
	r := newPBReader(raw)
	for !r.done() {
		field, wt, err := r.readTag()
		if err != nil {
			return nil, err
		}
		switch {
		case field == layerFieldName && wt == wireBytes:
			b, err := r.readBytes()
			if err != nil {
				return nil, err
			}
			l.Name = string(b)
			haveName = true
		case field == layerFieldFeatures && wt == wireBytes:
			b, err := r.readBytes()
			if err != nil {
				return nil, err
			}
			l.featureRaw = append(l.featureRaw, b)
		case field == layerFieldKeys && wt == wireBytes:
			b, err := r.readBytes()
			if err != nil {
				return nil, err
			}
			l.Keys = append(l.Keys, string(b))
		case field == layerFieldValues && wt == wireBytes:
			b, err := r.readBytes()
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(b)
			if err != nil {
				return nil, err
			}
			l.Values = append(l.Values, v)
		case field == layerFieldExtent && wt == wireVarint:
			v, err := r.readVarint()
			if err != nil {
				return nil, err
			}
			l.Extent = uint32(v)
		case field == layerFieldVersion && wt == wireVarint:
			v, err := r.readVarint()
			if err != nil {
				return nil, err
			}
			l.Version = uint32(v)
		default:
			if err := r.skipField(wt); err != nil {
				return nil, err
			}
		}
	}
	if !haveName {
		return nil, ErrMalformed
	}
	l.featureDec = make([]*rawFeature, len(l.featureRaw))
	return l, nil
}

// FeatureCount returns the number of features in the layer.
func (l *Layer) FeatureCount() int { return len(l.featureRaw) }

// featureAt decodes (and caches) the feature at index i.
func (l *Layer) featureAt(i int) (*rawFeature, error) {
	if i < 0 || i >= len(l.featureRaw) {
		return nil, ErrMalformed
	}
	if l.featureDec[i] == nil {
		f, err := decodeFeature(l.featureRaw[i])
		if err != nil {
			return nil, err
		}
		l.featureDec[i] = f
	}
	return l.featureDec[i], nil
}

// tagValue resolves a feature tag pair (key index, value index) to a
// (key, Value) pair. Indices out of range are reported via ok=false so
// callers can skip the pair silently, per the MVT forward-compatibility
// rule in spec.md §4.2.
func (l *Layer) tagValue(kIdx, vIdx uint32) (key string, val value.Value, ok bool) {
	if int(kIdx) >= len(l.Keys) || int(vIdx) >= len(l.Values) {
		return "", value.Value{}, false
	}
	return l.Keys[kIdx], l.Values[vIdx], true
}
