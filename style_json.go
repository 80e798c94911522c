package vectortile

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/vectortile/expr"
	"github.com/gogpu/vectortile/featureindex"
	"github.com/gogpu/vectortile/style"
)

// styleDoc mirrors the subset of the MapLibre/Mapbox GL Style Specification
// this package understands: one vector source, a flat layer list.
type styleDoc struct {
	Sources map[string]sourceDoc `json:"sources"`
	Layers  []layerDoc           `json:"layers"`
}

type sourceDoc struct {
	Type  string   `json:"type"`
	Tiles []string `json:"tiles"`
}

type layerDoc struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	SourceLayer string          `json:"source-layer"`
	MinZoom     float64         `json:"minzoom"`
	MaxZoom     float64         `json:"maxzoom"`
	Filter      json.RawMessage `json:"filter"`
	Paint       json.RawMessage `json:"paint"`
	Layout      json.RawMessage `json:"layout"`
}

// parseStyleDoc unmarshals jsonBytes and compiles every layer's filter,
// paint, and layout expressions into the style package's layer types.
func parseStyleDoc(jsonBytes []byte) (*Style, error) {
	var doc styleDoc
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return nil, &Error{Kind: ErrMalformedStyle, Msg: "parse style JSON", Err: err}
	}

	source, tileURL, err := resolveSource(doc.Sources)
	if err != nil {
		return nil, err
	}

	layers := make([]style.Layer, 0, len(doc.Layers))
	demands := make(map[string]*featureindex.Description)
	for _, ld := range doc.Layers {
		l, err := compileLayer(ld)
		if err != nil {
			return nil, &Error{Kind: ErrMalformedStyle, Msg: fmt.Sprintf("layer %q", ld.ID), Err: err}
		}
		layers = append(layers, l)

		desc := demands[ld.SourceLayer]
		if desc == nil {
			desc = featureindex.NewDescription()
			demands[ld.SourceLayer] = desc
		}
		describeLayer(desc, l)
	}

	return &Style{
		Source:      source,
		TileURL:     tileURL,
		Layers:      layers,
		IndexDemand: demands,
	}, nil
}

// resolveSource requires exactly one vector source, per spec.md §6.
func resolveSource(sources map[string]sourceDoc) (name, tileURL string, err error) {
	if len(sources) != 1 {
		return "", "", &Error{Kind: ErrMalformedStyle, Msg: fmt.Sprintf("style must declare exactly one source, found %d", len(sources))}
	}
	for n, s := range sources {
		if s.Type != "vector" {
			return "", "", &Error{Kind: ErrMalformedStyle, Msg: fmt.Sprintf("source %q: unsupported type %q, want \"vector\"", n, s.Type)}
		}
		if len(s.Tiles) == 0 {
			return "", "", &Error{Kind: ErrMalformedStyle, Msg: fmt.Sprintf("source %q: tiles[] is empty", n)}
		}
		return n, s.Tiles[0], nil
	}
	panic("unreachable")
}

func compileLayer(ld layerDoc) (style.Layer, error) {
	filter, err := compileOptionalExpr(ld.Filter)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	paint := map[string]any{}
	if len(ld.Paint) > 0 {
		if err := json.Unmarshal(ld.Paint, &paint); err != nil {
			return nil, fmt.Errorf("paint: %w", err)
		}
	}
	layout := map[string]any{}
	if len(ld.Layout) > 0 {
		if err := json.Unmarshal(ld.Layout, &layout); err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
	}

	common := style.Common{
		ID:          ld.ID,
		SourceLayer: ld.SourceLayer,
		MinZoom:     ld.MinZoom,
		MaxZoom:     ld.MaxZoom,
		Filter:      filter,
	}

	switch ld.Type {
	case "background":
		color, err := compileProp(paint, "background-color", `"#000000"`)
		if err != nil {
			return nil, err
		}
		opacity, err := compileProp(paint, "background-opacity", "1")
		if err != nil {
			return nil, err
		}
		return style.NewBackground(common, color, opacity), nil

	case "fill":
		color, err := compileProp(paint, "fill-color", `"#000000"`)
		if err != nil {
			return nil, err
		}
		opacity, err := compileProp(paint, "fill-opacity", "1")
		if err != nil {
			return nil, err
		}
		outline, err := compileOptionalProp(paint, "fill-outline-color")
		if err != nil {
			return nil, err
		}
		pattern, err := compileOptionalProp(paint, "fill-pattern")
		if err != nil {
			return nil, err
		}
		return style.NewFill(common, color, opacity, outline, pattern), nil

	case "line":
		return compileLineLayer(common, paint, layout)

	case "symbol":
		return compileSymbolLayer(common, paint, layout)

	default:
		return nil, fmt.Errorf("unsupported layer type %q", ld.Type)
	}
}

func compileLineLayer(common style.Common, paint, layout map[string]any) (style.Layer, error) {
	color, err := compileProp(paint, "line-color", `"#000000"`)
	if err != nil {
		return nil, err
	}
	opacity, err := compileProp(paint, "line-opacity", "1")
	if err != nil {
		return nil, err
	}
	width, err := compileProp(paint, "line-width", "1")
	if err != nil {
		return nil, err
	}
	gapWidth, err := compileOptionalProp(paint, "line-gap-width")
	if err != nil {
		return nil, err
	}
	offset, err := compileOptionalProp(paint, "line-offset")
	if err != nil {
		return nil, err
	}
	pattern, err := compileOptionalProp(paint, "line-pattern")
	if err != nil {
		return nil, err
	}

	props := style.LineProps{Cap: style.CapButt, Join: style.JoinMiter, MiterLimit: 2}
	if v, ok := layout["line-cap"].(string); ok {
		props.Cap = parseLineCap(v)
	}
	if v, ok := layout["line-join"].(string); ok {
		props.Join = parseLineJoin(v)
	}
	if v, ok := paint["line-miter-limit"].(float64); ok {
		props.MiterLimit = v
	}
	if raw, ok := paint["line-dasharray"].([]any); ok {
		lengths := make([]float64, 0, len(raw))
		for _, v := range raw {
			if f, ok := v.(float64); ok {
				lengths = append(lengths, f)
			}
		}
		if d := style.NewDash(lengths...); d != nil {
			props.DashArray = d.Array
		}
	}

	return style.NewLine(common, color, opacity, width, gapWidth, offset, pattern, props), nil
}

func parseLineCap(v string) style.LineCap {
	switch v {
	case "round":
		return style.CapRound
	case "square":
		return style.CapSquare
	default:
		return style.CapButt
	}
}

func parseLineJoin(v string) style.LineJoin {
	switch v {
	case "round":
		return style.JoinRound
	case "bevel":
		return style.JoinBevel
	default:
		return style.JoinMiter
	}
}

func compileSymbolLayer(common style.Common, paint, layout map[string]any) (style.Layer, error) {
	var exprs style.SymbolExprs
	var err error
	if exprs.TextField, err = compileOptionalProp(layout, "text-field"); err != nil {
		return nil, err
	}
	if exprs.TextSize, err = compileOptionalProp(layout, "text-size"); err != nil {
		return nil, err
	}
	if exprs.TextAnchor, err = compileOptionalProp(layout, "text-anchor"); err != nil {
		return nil, err
	}
	if exprs.TextMaxWidth, err = compileOptionalProp(layout, "text-max-width"); err != nil {
		return nil, err
	}
	if exprs.TextLetterSpacing, err = compileOptionalProp(layout, "text-letter-spacing"); err != nil {
		return nil, err
	}
	if exprs.IconImage, err = compileOptionalProp(layout, "icon-image"); err != nil {
		return nil, err
	}
	if exprs.IconSize, err = compileOptionalProp(layout, "icon-size"); err != nil {
		return nil, err
	}
	if exprs.IconAnchor, err = compileOptionalProp(layout, "icon-anchor"); err != nil {
		return nil, err
	}
	if exprs.SymbolSortKey, err = compileOptionalProp(layout, "symbol-sort-key"); err != nil {
		return nil, err
	}
	if exprs.TextColor, err = compileProp(paint, "text-color", `"#000000"`); err != nil {
		return nil, err
	}
	if exprs.TextOpacity, err = compileProp(paint, "text-opacity", "1"); err != nil {
		return nil, err
	}
	if exprs.IconColor, err = compileProp(paint, "icon-color", `"#000000"`); err != nil {
		return nil, err
	}
	if exprs.IconOpacity, err = compileProp(paint, "icon-opacity", "1"); err != nil {
		return nil, err
	}

	props := style.SymbolProps{TextRotationAlignment: "auto"}
	if v, ok := layout["text-font"].([]any); ok {
		for _, f := range v {
			if s, ok := f.(string); ok {
				props.TextFont = append(props.TextFont, s)
			}
		}
	}
	if v, ok := layout["symbol-placement"].(string); ok {
		props.Placement = parsePlacement(v)
	}
	if v, ok := layout["symbol-spacing"].(float64); ok {
		props.SymbolSpacing = v
	} else {
		props.SymbolSpacing = 250
	}
	if v, ok := layout["icon-optional"].(bool); ok {
		props.IconOptional = v
	}
	if v, ok := layout["text-optional"].(bool); ok {
		props.TextOptional = v
	}

	return style.NewSymbol(common, exprs, props), nil
}

func parsePlacement(v string) style.PlacementMode {
	switch v {
	case "line":
		return style.PlacementLine
	case "line-center":
		return style.PlacementLineCenter
	default:
		return style.PlacementPoint
	}
}

func compileOptionalExpr(raw json.RawMessage) (*expr.Expression, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return expr.Compile(v)
}

// compileProp compiles props[key], falling back to fallbackJSON (a JSON
// literal) when the key is absent, so every layer gets a usable default
// rather than a nil expression the pipeline would have to special-case.
func compileProp(props map[string]any, key, fallbackJSON string) (*expr.Expression, error) {
	if v, ok := props[key]; ok {
		e, err := expr.Compile(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return e, nil
	}
	var fallback any
	if err := json.Unmarshal([]byte(fallbackJSON), &fallback); err != nil {
		return nil, err
	}
	return expr.Compile(fallback)
}

func compileOptionalProp(props map[string]any, key string) (*expr.Expression, error) {
	v, ok := props[key]
	if !ok {
		return nil, nil
	}
	e, err := expr.Compile(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return e, nil
}

func describeLayer(desc *featureindex.Description, l style.Layer) {
	field, interesting, needsHas, needsGeomType, ok := style.IndexDemand(l)
	if !ok {
		return
	}
	if needsGeomType {
		desc.DescribeGeometryType()
		return
	}
	desc.Describe(field, interesting, needsHas)
}
