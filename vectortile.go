// Package vectortile ties the value, mvt, expr, featureindex, scope,
// style, canvas, and pipeline packages together into the public surface
// a caller actually drives: load a stylesheet, fetch tiles from a data
// source, and render them through the Tile Pipeline.
package vectortile

import (
	"fmt"
	"image"
	_ "image/jpeg" // sprite atlases are commonly shipped as PNG or JPEG
	_ "image/png"
	"io"

	"github.com/gogpu/vectortile/featureindex"
	"github.com/gogpu/vectortile/sprite"
	"github.com/gogpu/vectortile/style"
)

// Style is a parsed, compiled stylesheet: one vector source plus an
// ordered list of style layers, each with precompiled filter/paint/layout
// expressions and a feature-index demand description per source layer.
type Style struct {
	Source  string // declared source name
	TileURL string // tiles[0], with #Z#/#X#/#Y#/#TMSY# placeholders unresolved

	Layers []style.Layer

	// IndexDemand maps a source layer name to the fast-path field/geometry
	// demand every layer drawing from it collectively needs, built by
	// running style.IndexDemand over every compiled filter (spec.md
	// §4.5/§4.7 step 2). A caller builds a featureindex.Index from this
	// before the Tile Pipeline's per-feature evaluation loop, if it wants
	// to skip features the index can rule out in bulk.
	IndexDemand map[string]*featureindex.Description

	Sprites *sprite.Sheet
}

// LoadStyle parses a MapLibre/Mapbox GL Style Specification document
// (the subset spec.md §6 defines), compiles every layer's expressions,
// and — if spriteJSON and atlasImage are both non-nil — loads the sprite
// sheet those layers' icon-image/fill-pattern/line-pattern properties
// may reference.
func LoadStyle(jsonBytes []byte, spriteJSON []byte, atlasImage io.Reader) (*Style, error) {
	s, err := parseStyleDoc(jsonBytes)
	if err != nil {
		return nil, err
	}

	if spriteJSON == nil || atlasImage == nil {
		return s, nil
	}

	img, _, err := image.Decode(atlasImage)
	if err != nil {
		return nil, &Error{Kind: ErrMalformedStyle, Msg: "decode sprite atlas image", Err: err}
	}

	sheet := sprite.New()
	if err := sheet.AddPage(img, spriteJSON, 1); err != nil {
		return nil, &Error{Kind: ErrMalformedStyle, Msg: "parse sprite atlas descriptor", Err: err}
	}
	s.Sprites = sheet
	return s, nil
}

// ErrorKind classifies a public-surface failure, matching spec.md §6's
// error-kind enumeration.
type ErrorKind uint8

const (
	// ErrMalformedStyle covers stylesheet JSON that fails to parse, names
	// an unsupported layer type, or declares a source this package can't
	// resolve (not exactly one "vector" source with a tiles[] URL).
	ErrMalformedStyle ErrorKind = iota
	// ErrOffline covers a DataSource's transport failing outright (no
	// response at all — connection refused, DNS failure, timeout).
	ErrOffline
	// ErrBadResponse covers a DataSource's transport succeeding but
	// returning a non-2xx status or a body that isn't a tile.
	ErrBadResponse
	// ErrMalformedURL covers a tile URL template this package can't
	// resolve into a valid request URL.
	ErrMalformedURL
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedStyle:
		return "malformed-style"
	case ErrOffline:
		return "offline"
	case ErrBadResponse:
		return "bad-response"
	case ErrMalformedURL:
		return "malformed-url"
	default:
		return "unknown"
	}
}

// Error is the public error type: an ErrorKind plus enough context
// (offending layer id or operator, for style errors; z/x/y, for data
// source errors) to act on, matching the teacher's sentinel-error style
// generalized to carry structured fields instead of a fixed message.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vectortile: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("vectortile: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }
