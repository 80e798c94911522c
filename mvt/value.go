package mvt

import (
	"math"

	"github.com/gogpu/vectortile/value"
)

// Tile.Value field numbers.
const (
	valueFieldString = 1
	valueFieldFloat  = 2
	valueFieldDouble = 3
	valueFieldInt    = 4
	valueFieldUint   = 5
	valueFieldSint   = 6
	valueFieldBool   = 7
)

// decodeValue decodes a Tile.Value submessage into a scalar value.Value.
// The MVT spec allows at most one of the seven scalar fields to be set;
// this decoder takes whichever is present last, matching standard protobuf
// "last field wins" semantics for forward compatibility.
func decodeValue(raw []byte) (value.Value, error) {
	var v value.Value
	v.SetNull()
	r := newPBReader(raw)
	for !r.done() {
		field, wt, err := r.readTag()
		if err != nil {
			return value.Value{}, err
		}
		switch {
		case field == valueFieldString && wt == wireBytes:
			b, err := r.readBytes()
			if err != nil {
				return value.Value{}, err
			}
			v.SetString(string(b))
		case field == valueFieldFloat && wt == wire32bit:
			b, err := r.readFixed32()
			if err != nil {
				return value.Value{}, err
			}
			v.SetNumber(float64(math.Float32frombits(b)))
		case field == valueFieldDouble && wt == wire64bit:
			b, err := r.readFixed64()
			if err != nil {
				return value.Value{}, err
			}
			v.SetNumber(math.Float64frombits(b))
		case field == valueFieldInt && wt == wireVarint:
			b, err := r.readVarint()
			if err != nil {
				return value.Value{}, err
			}
			v.SetNumber(float64(int64(b)))
		case field == valueFieldUint && wt == wireVarint:
			b, err := r.readVarint()
			if err != nil {
				return value.Value{}, err
			}
			v.SetNumber(float64(b))
		case field == valueFieldSint && wt == wireVarint:
			b, err := r.readVarint()
			if err != nil {
				return value.Value{}, err
			}
			v.SetNumber(float64(zigzagDecode64(b)))
		case field == valueFieldBool && wt == wireVarint:
			b, err := r.readVarint()
			if err != nil {
				return value.Value{}, err
			}
			v.SetBoolean(b != 0)
		default:
			if err := r.skipField(wt); err != nil {
				return value.Value{}, err
			}
		}
	}
	return v, nil
}

func zigzagDecode64(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}
