package mvt

// Tile field numbers (see vector_tile.proto, Mapbox Vector Tile spec 2.1).
const (
	tileFieldLayers = 3
)

// Tile is a parsed-once, zero-copy view over an MVT tile's layers: New does
// a single structural scan to find each Layer submessage's byte range (no
// copying), and per-layer/per-feature decoding happens lazily as an
// Iterator walks them.
type Tile struct {
	layerRaw [][]byte
	layers   []*Layer // lazily decoded, same length/order as layerRaw
}

// New parses an MVT tile's top-level structure. It rejects malformed input
// (truncated varints, bad wire types, payloads exceeding the buffer) but
// does not decode layer or feature contents yet.
func New(data []byte) (*Tile, error) {
	r := newPBReader(data)
	t := &Tile{}
	for !r.done() {
		field, wt, err := r.readTag()
		if err != nil {
			return nil, err
		}
		if field == tileFieldLayers && wt == wireBytes {
			raw, err := r.readBytes()
			if err != nil {
				return nil, err
			}
			t.layerRaw = append(t.layerRaw, raw)
			continue
		}
		if err := r.skipField(wt); err != nil {
			return nil, err
		}
	}
	t.layers = make([]*Layer, len(t.layerRaw))
	return t, nil
}

// LayerCount returns the number of layers in the tile.
func (t *Tile) LayerCount() int { return len(t.layerRaw) }

// layerAt decodes (and caches) the layer at index i.
func (t *Tile) layerAt(i int) (*Layer, error) {
	if i < 0 || i >= len(t.layerRaw) {
		return nil, ErrMalformed
	}
	if t.layers[i] == nil {
		l, err := decodeLayer(t.layerRaw[i])
		if err != nil {
			return nil, err
		}
		t.layers[i] = l
	}
	return t.layers[i], nil
}

// indexOfLayer returns the index of the layer named name, decoding layers in
// order until found, or -1 if no layer has that name.
func (t *Tile) indexOfLayer(name string) (int, error) {
	for i := range t.layerRaw {
		l, err := t.layerAt(i)
		if err != nil {
			return -1, err
		}
		if l.Name == name {
			return i, nil
		}
	}
	return -1, nil
}

// Iter returns a new Iterator positioned before the first layer.
func (t *Tile) Iter() *Iterator {
	return &Iterator{tile: t, layerIdx: -1, featureIdx: -1}
}
