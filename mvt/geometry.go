package mvt

// GeometrySink receives normalized drawing calls as a feature's geometry
// command stream is executed. Coordinates are in [0, 1], mapped from raw
// MVT units by dividing by the layer's extent; any further overzoom
// remapping is applied by a decorator the caller wraps around its sink (see
// package scope), not by this package.
type GeometrySink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
}

// geomOp is a single decoded command: either a MoveTo/LineTo with its
// (already zig-zag-decoded and normalized) coordinate, or a ClosePath.
type geomOp struct {
	kind opKind
	x, y float64
}

type opKind uint8

const (
	opMoveTo opKind = iota
	opLineTo
	opClosePath
)

const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7
)

// decodeGeometry fully decodes a feature's geometry command stream into a
// slice of ops, validating that every MoveTo/LineTo's declared coordinate
// count is actually present. It never partially emits: either the whole
// stream is well-formed and decodeGeometry returns every op, or it returns
// an error and no ops at all, so ExecuteGeometry can guarantee "fails
// cleanly, no calls for a truncated feature" (spec.md §8 property 7, S5).
func decodeGeometry(raw []byte, extent uint32) ([]geomOp, error) {
	if extent == 0 {
		return nil, ErrMalformed
	}
	r := newPBReader(raw)
	var ops []geomOp
	cx, cy := int64(0), int64(0)
	scale := float64(extent)
	for !r.done() {
		cmdInt, err := r.readVarint()
		if err != nil {
			return nil, err
		}
		cmd := cmdInt & 0x7
		count := cmdInt >> 3
		switch cmd {
		case cmdMoveTo, cmdLineTo:
			for i := uint64(0); i < count; i++ {
				dxv, err := r.readVarint()
				if err != nil {
					return nil, err
				}
				dyv, err := r.readVarint()
				if err != nil {
					return nil, err
				}
				dx := int64(zigzagDecode(uint32(dxv)))
				dy := int64(zigzagDecode(uint32(dyv)))
				cx += dx
				cy += dy
				kind := opLineTo
				if cmd == cmdMoveTo {
					kind = opMoveTo
				}
				ops = append(ops, geomOp{
					kind: kind,
					x:    float64(cx) / scale,
					y:    float64(cy) / scale,
				})
			}
		case cmdClosePath:
			if count != 1 {
				return nil, ErrMalformed
			}
			ops = append(ops, geomOp{kind: opClosePath})
		default:
			return nil, ErrMalformed
		}
	}
	return ops, nil
}

// executeGeometry decodes raw fully (see decodeGeometry) and then replays
// the decoded ops to sink. No calls reach sink unless the whole stream
// decoded successfully.
func executeGeometry(raw []byte, extent uint32, sink GeometrySink) error {
	ops, err := decodeGeometry(raw, extent)
	if err != nil {
		return err
	}
	for _, op := range ops {
		switch op.kind {
		case opMoveTo:
			sink.MoveTo(op.x, op.y)
		case opLineTo:
			sink.LineTo(op.x, op.y)
		case opClosePath:
			sink.ClosePath()
		}
	}
	return nil
}
