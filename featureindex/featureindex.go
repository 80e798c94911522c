// Package featureindex accelerates repeated filter evaluation across the
// many style layers that share one MVT source layer, by precomputing
// per-(field,value), per-field-presence, and per-geometry-type bitsets in a
// single pass over a layer's features.
package featureindex

import (
	"math/bits"

	"github.com/gogpu/vectortile/mvt"
	"github.com/gogpu/vectortile/value"
)

// Bitset is a packed bit array of length equal to a layer's feature count
// at index time.
type Bitset struct {
	bits []uint64
	n    int
}

// NewBitset returns a zeroed bitset sized for n features.
func NewBitset(n int) *Bitset {
	return &Bitset{bits: make([]uint64, (n+63)/64), n: n}
}

// Len reports the bitset's feature-count length.
func (b *Bitset) Len() int { return b.n }

// Set sets bit i.
func (b *Bitset) Set(i int) { b.bits[i/64] |= 1 << uint(i%64) }

// Test reports whether bit i is set.
func (b *Bitset) Test(i int) bool { return b.bits[i/64]&(1<<uint(i%64)) != 0 }

// Union returns a new bitset that is the bitwise OR of a and b. Both must
// have the same length.
func (a *Bitset) Union(b *Bitset) *Bitset {
	out := NewBitset(a.n)
	for i := range out.bits {
		out.bits[i] = a.bits[i] | b.bits[i]
	}
	return out
}

// Intersect returns the bitwise AND of a and b.
func (a *Bitset) Intersect(b *Bitset) *Bitset {
	out := NewBitset(a.n)
	for i := range out.bits {
		out.bits[i] = a.bits[i] & b.bits[i]
	}
	return out
}

// Complement returns the bitwise NOT of a, masked to its feature count so
// trailing pad bits beyond n never read as set.
func (a *Bitset) Complement() *Bitset {
	out := NewBitset(a.n)
	for i := range out.bits {
		out.bits[i] = ^a.bits[i]
	}
	out.maskTrailing()
	return out
}

func (a *Bitset) maskTrailing() {
	if a.n%64 == 0 {
		return
	}
	last := len(a.bits) - 1
	validBits := uint(a.n % 64)
	a.bits[last] &= (1 << validBits) - 1
}

// NextSetBit returns the index of the first set bit at or after from, or -1
// if none exists.
func (a *Bitset) NextSetBit(from int) int {
	if from < 0 {
		from = 0
	}
	if from >= a.n {
		return -1
	}
	word := from / 64
	offset := uint(from % 64)
	w := a.bits[word] >> offset
	if w != 0 {
		return from + bits.TrailingZeros64(w)
	}
	for word++; word < len(a.bits); word++ {
		if a.bits[word] != 0 {
			return word*64 + bits.TrailingZeros64(a.bits[word])
		}
	}
	return -1
}

// Demand is one indexing request collected from a style layer's filter
// during style load, via Describe.
type Demand struct {
	Field        string
	NeedsValue   []value.Value
	NeedsHas     bool
	NeedsGeomType bool
}

// Description accumulates the union of index demands for one MVT source
// layer across every style layer that references it.
type Description struct {
	byField map[string]*fieldDemand
	geomTypes bool
}

type fieldDemand struct {
	interesting []value.Value
	needsHas    bool
}

// NewDescription returns an empty description.
func NewDescription() *Description {
	return &Description{byField: make(map[string]*fieldDemand)}
}

// Describe merges one layer's index demand into the accumulated
// description. Called during style load by walking each layer's fast-path
// filter (expr.FastFilter).
func (d *Description) Describe(field string, interestingValues []value.Value, needsHas bool) {
	fd, ok := d.byField[field]
	if !ok {
		fd = &fieldDemand{}
		d.byField[field] = fd
	}
	fd.needsHas = fd.needsHas || needsHas
outer:
	for _, v := range interestingValues {
		for _, existing := range fd.interesting {
			if value.Equal(existing, v) {
				continue outer
			}
		}
		fd.interesting = append(fd.interesting, v)
	}
}

// DescribeGeometryType records that at least one layer filters on $type.
func (d *Description) DescribeGeometryType() { d.geomTypes = true }

// Index holds the built bitsets for one MVT source layer.
type Index struct {
	featureCount int
	// equals[field] maps a canonical string key (via keyOf) to the bitset
	// of features whose field equals that interesting value.
	equals map[string]map[string]*Bitset
	has    map[string]*Bitset
	geom   map[mvt.GeomType]*Bitset
	broad  map[string]*Bitset // "point" | "line" | "polygon"

	// uninteresting records, per field, values seen during Build that were
	// NOT in the interesting set (spec.md §4.5). Build only writes it; Get
	// does not consult it and returns nil for such values.
	uninteresting map[string]map[string]bool
}

// Build makes a single pass over every feature in an MVT layer, populating
// bitsets for each (field, interesting-value) pair, has(field), each
// concrete geometry type, and each broad geometry type class, per desc.
func Build(it *mvt.Iterator, desc *Description) (*Index, error) {
	n, err := it.LayerFeatureCount()
	if err != nil {
		return nil, err
	}
	idx := &Index{
		featureCount:  n,
		equals:        make(map[string]map[string]*Bitset),
		has:           make(map[string]*Bitset),
		geom:          make(map[mvt.GeomType]*Bitset),
		broad:         make(map[string]*Bitset),
		uninteresting: make(map[string]map[string]bool),
	}
	for field, fd := range desc.byField {
		if fd.needsHas {
			idx.has[field] = NewBitset(n)
		}
		if len(fd.interesting) > 0 {
			m := make(map[string]*Bitset)
			for _, v := range fd.interesting {
				m[keyOf(v)] = NewBitset(n)
			}
			idx.equals[field] = m
		}
		idx.uninteresting[field] = make(map[string]bool)
	}

	for i := 0; i < n; i++ {
		if err := it.ReadFeature(i); err != nil {
			return nil, err
		}
		gt, err := it.FeatureGeometryType()
		if err != nil {
			return nil, err
		}
		idx.markGeomType(i, gt)

		for field, fd := range desc.byField {
			v, ok, err := it.FeatureTag(field)
			if err != nil {
				return nil, err
			}
			if fd.needsHas && ok {
				idx.has[field].Set(i)
			}
			if !ok || len(fd.interesting) == 0 {
				continue
			}
			k := keyOf(v)
			if m, isInteresting := idx.equals[field][k]; isInteresting {
				m.Set(i)
			} else {
				idx.uninteresting[field][k] = true
			}
		}
	}
	return idx, nil
}

func (idx *Index) markGeomType(i int, gt mvt.GeomType) {
	if idx.geom[gt] == nil {
		idx.geom[gt] = NewBitset(idx.featureCount)
	}
	idx.geom[gt].Set(i)

	broad := broadClass(gt)
	if idx.broad[broad] == nil {
		idx.broad[broad] = NewBitset(idx.featureCount)
	}
	idx.broad[broad].Set(i)
}

func broadClass(gt mvt.GeomType) string {
	switch gt {
	case mvt.GeomPoint:
		return "point"
	case mvt.GeomLineString:
		return "line"
	case mvt.GeomPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Get returns the bitset of features whose field equals value, or nil if
// that (field, value) pair wasn't part of the index's build-time
// description (the caller should fall back to per-feature evaluation).
func (idx *Index) Get(field string, v value.Value) *Bitset {
	m, ok := idx.equals[field]
	if !ok {
		return nil
	}
	return m[keyOf(v)]
}

// Has returns the bitset of features that have field set, or nil if has()
// wasn't requested for field.
func (idx *Index) Has(field string) *Bitset { return idx.has[field] }

// GeometryType returns the bitset of features with the given concrete
// geometry type.
func (idx *Index) GeometryType(gt mvt.GeomType) *Bitset { return idx.geom[gt] }

// BroadGeometryType returns the bitset of features in one of "point",
// "line", "polygon".
func (idx *Index) BroadGeometryType(class string) *Bitset { return idx.broad[class] }

// keyOf renders a Value to a canonical map key for the interesting-value
// index; as_string is good enough since interesting values are always
// scalar literals extracted from a compiled filter.
func keyOf(v value.Value) string { return v.String() + "\x00" + v.Kind().String() }
