package expr

import "github.com/gogpu/vectortile/value"

// formatPartNode is one compiled (text, font-scale?, color?) triple of a
// `format` expression.
type formatPartNode struct {
	text      Node
	fontScale Node // nil if absent
	color     Node // nil if absent
}

// formatNode implements `format`: alternating text-expression /
// format-options-object pairs, compiling to a formatted Value.
type formatNode struct{ parts []formatPartNode }

func (n formatNode) Eval(ctx Context) (value.Value, error) {
	parts := make([]value.FormatPart, len(n.parts))
	for i, p := range n.parts {
		tv, err := p.text.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		fp := value.FormatPart{}
		if tv.Kind() == value.KindResolvedImage {
			img := tv
			fp.Image = &img
		} else {
			fp.Text = tv.String()
		}
		if p.fontScale != nil {
			sv, err := p.fontScale.Eval(ctx)
			if err != nil {
				return value.Value{}, err
			}
			if f, ok := sv.GetNumber(); ok {
				fp.FontScale = f
				fp.HasFontScale = true
			}
		}
		if p.color != nil {
			cv, err := p.color.Eval(ctx)
			if err != nil {
				return value.Value{}, err
			}
			if c, ok := cv.GetColor(); ok {
				fp.Color = c
				fp.HasColor = true
			}
		}
		parts[i] = fp
	}
	return value.NewFormatted(parts), nil
}

func compileFormat(op string, raw []any) (Node, error) {
	if len(raw) == 0 {
		return nil, errInvalid(op, "format requires at least one text argument")
	}
	var n formatNode
	i := 0
	for i < len(raw) {
		isNull := raw[i] == nil
		text, err := compile(raw[i])
		if err != nil {
			return nil, err
		}
		part := formatPartNode{text: text}
		i++
		if i < len(raw) {
			if opts, ok := raw[i].(map[string]any); ok {
				if fs, ok := opts["font-scale"]; ok {
					fsNode, err := compile(fs)
					if err != nil {
						return nil, err
					}
					part.fontScale = fsNode
				}
				if tc, ok := opts["text-color"]; ok {
					tcNode, err := compile(tc)
					if err != nil {
						return nil, err
					}
					part.color = tcNode
				}
				i++
			}
		}
		// A bare JSON null in text position is a list-alignment filler, not
		// a part of its own (it contributes no output and no options slot).
		if !isNull {
			n.parts = append(n.parts, part)
		}
	}
	return n, nil
}

// imageNode implements `image(name)`: resolves name through the scope's
// sprite resolver at the scope's current scale factor.
type imageNode struct{ name Node }

func (n imageNode) Eval(ctx Context) (value.Value, error) {
	nv, err := n.name.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	name, ok := nv.GetString()
	if !ok {
		return value.Value{}, errEval("image", "argument must be a string")
	}
	v, ok := ctx.Scope.ResolveImage(name)
	if !ok {
		return value.Null, nil
	}
	return v, nil
}

func buildImage(op string, args []Node) (Node, error) {
	return imageNode{name: args[0]}, nil
}

func init() {
	registerSpecialForm("format", compileFormat)
	registerOperator("image", opSpec{minArgs: 1, maxArgs: 1, build: buildImage})
}
