package mvt

import (
	"errors"

	"github.com/gogpu/vectortile/value"
)

// ErrWrongState is returned when an Iterator method is called in a state
// that does not support it (e.g. reading a feature before any layer has
// been selected).
var ErrWrongState = errors.New("mvt: iterator in wrong state for this call")

// IterState is one of the three states an Iterator can be in.
type IterState uint8

const (
	StateNoLayer IterState = iota
	StateOnLayer
	StateOnFeature
)

// Iterator walks a Tile's layers and features. It is not safe for
// concurrent use and is scoped to a single tile render, per spec.md §5.
type Iterator struct {
	tile *Tile

	state    IterState
	layerIdx int
	layer    *Layer

	featureIdx int
	feature    *rawFeature
}

// State returns the iterator's current state.
func (it *Iterator) State() IterState { return it.state }

// ReadLayerByIndex seeks to the layer at index i, resetting the feature
// cursor. Valid from any state.
func (it *Iterator) ReadLayerByIndex(i int) error {
	l, err := it.tile.layerAt(i)
	if err != nil {
		return err
	}
	it.layerIdx = i
	it.layer = l
	it.featureIdx = -1
	it.feature = nil
	it.state = StateOnLayer
	return nil
}

// ReadLayerByName seeks to the named layer. Returns false (with no error)
// if no layer has that name.
func (it *Iterator) ReadLayerByName(name string) (bool, error) {
	idx, err := it.tile.indexOfLayer(name)
	if err != nil {
		return false, err
	}
	if idx < 0 {
		return false, nil
	}
	return true, it.ReadLayerByIndex(idx)
}

// NextFeature advances to the next feature in the current layer. Returns
// false (with no error) when the layer is exhausted, transitioning back to
// StateOnLayer. Requires the iterator to be on a layer or a feature.
func (it *Iterator) NextFeature() (bool, error) {
	if it.state == StateNoLayer {
		return false, ErrWrongState
	}
	next := it.featureIdx + 1
	if next >= it.layer.FeatureCount() {
		it.featureIdx = -1
		it.feature = nil
		it.state = StateOnLayer
		return false, nil
	}
	return true, it.ReadFeature(next)
}

// ReadFeature seeks to the feature at index within the current layer.
// Requires the iterator to be on a layer or a feature.
func (it *Iterator) ReadFeature(index int) error {
	if it.state == StateNoLayer {
		return ErrWrongState
	}
	f, err := it.layer.featureAt(index)
	if err != nil {
		return err
	}
	it.featureIdx = index
	it.feature = f
	it.state = StateOnFeature
	return nil
}

// LayerName returns the current layer's name. Requires OnLayer or
// OnFeature.
func (it *Iterator) LayerName() (string, error) {
	if it.state == StateNoLayer {
		return "", ErrWrongState
	}
	return it.layer.Name, nil
}

// LayerExtent returns the current layer's coordinate extent. Requires
// OnLayer or OnFeature.
func (it *Iterator) LayerExtent() (uint32, error) {
	if it.state == StateNoLayer {
		return 0, ErrWrongState
	}
	return it.layer.Extent, nil
}

// LayerFeatureCount returns the number of features in the current layer.
// Requires OnLayer or OnFeature.
func (it *Iterator) LayerFeatureCount() (int, error) {
	if it.state == StateNoLayer {
		return 0, ErrWrongState
	}
	return it.layer.FeatureCount(), nil
}

// FeatureID returns the current feature's id, or ok=false if it has none.
// Requires OnFeature.
func (it *Iterator) FeatureID() (id uint64, ok bool, err error) {
	if it.state != StateOnFeature {
		return 0, false, ErrWrongState
	}
	return it.feature.id, it.feature.hasID, nil
}

// FeatureGeometryType returns the current feature's geometry type. Requires
// OnFeature.
func (it *Iterator) FeatureGeometryType() (GeomType, error) {
	if it.state != StateOnFeature {
		return GeomUnknown, ErrWrongState
	}
	return it.feature.geomType, nil
}

// FeatureTag looks up a tag by key on the current feature. Requires
// OnFeature.
func (it *Iterator) FeatureTag(key string) (value.Value, bool, error) {
	if it.state != StateOnFeature {
		return value.Value{}, false, ErrWrongState
	}
	pairs, err := it.feature.tagPairs()
	if err != nil {
		return value.Value{}, false, err
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		k, v, ok := it.layer.tagValue(pairs[i], pairs[i+1])
		if ok && k == key {
			return v, true, nil
		}
	}
	return value.Value{}, false, nil
}

// Tag is one resolved (key, value) pair on a feature.
type Tag struct {
	Key   string
	Value value.Value
}

// FeatureTags returns every resolved tag on the current feature, in
// declaration order. Pairs whose key or value index is out of range are
// skipped silently (MVT forward-compatibility, spec.md §4.2). Requires
// OnFeature.
func (it *Iterator) FeatureTags() ([]Tag, error) {
	if it.state != StateOnFeature {
		return nil, ErrWrongState
	}
	pairs, err := it.feature.tagPairs()
	if err != nil {
		return nil, err
	}
	var out []Tag
	for i := 0; i+1 < len(pairs); i += 2 {
		k, v, ok := it.layer.tagValue(pairs[i], pairs[i+1])
		if ok {
			out = append(out, Tag{Key: k, Value: v})
		}
	}
	return out, nil
}

// ExecuteGeometry walks the current feature's geometry command stream,
// calling sink.MoveTo/LineTo/ClosePath with coordinates normalized to
// [0, 1] by dividing raw MVT units by the layer's extent. A malformed or
// truncated command stream fails the call cleanly without invoking sink at
// all (spec.md §4.2, §8 property 7). Requires OnFeature.
func (it *Iterator) ExecuteGeometry(sink GeometrySink) error {
	if it.state != StateOnFeature {
		return ErrWrongState
	}
	return executeGeometry(it.feature.geomRaw, it.layer.Extent, sink)
}
