package render

import (
	"fmt"
	"maps"
	"slices"

	"github.com/lvillar/formfill/coord"
	"github.com/lvillar/formfill/fields"
	"github.com/lvillar/formfill/fonts"
	"github.com/lvillar/formfill/mapping"
	"github.com/lvillar/formfill/textwrap"
)

// lineHeightFactor spaces wrapped lines when a box sets no line height.
const lineHeightFactor = 1.2

// Build lays out doc for rec. Keys are visited in sorted order so the same
// input always yields the same plan. An error means a spot could not be
// placed (for example it names a page the template does not have).
func Build(ctx *Context, doc *mapping.Document, rec fields.Record) (*Plan, error) {
	if ctx.Default == nil {
		return nil, fmt.Errorf("render: no default face")
	}
	b := builder{ctx: ctx, plan: &Plan{}}

	for _, key := range slices.Sorted(maps.Keys(doc.Text)) {
		value := rec.String(key)
		if value == "" {
			continue
		}
		for _, spot := range doc.Text[key] {
			if err := b.text(key, value, spot); err != nil {
				return nil, err
			}
		}
	}

	for _, key := range slices.Sorted(maps.Keys(doc.Checkbox)) {
		if !fields.Match(rec, key) {
			continue
		}
		for _, spot := range doc.Checkbox[key] {
			if err := b.check(key, spot); err != nil {
				return nil, err
			}
		}
	}

	for i, spot := range doc.Lines {
		if err := b.line(i, spot); err != nil {
			return nil, err
		}
	}

	for i, spot := range doc.Fixed {
		if spot.Text == "" {
			continue
		}
		ts := mapping.TextSpot{Page: spot.Page, X: spot.X, Y: spot.Y, Size: spot.Size, Font: spot.Font}
		if err := b.single(fmt.Sprintf("fixed[%d]", i), spot.Text, ts); err != nil {
			return nil, err
		}
	}

	return b.plan, nil
}

type builder struct {
	ctx  *Context
	plan *Plan
}

func (b *builder) transformer(source string, page int) (coord.Transformer, error) {
	tr, err := b.ctx.Transformer(page)
	if err != nil {
		return tr, fmt.Errorf("render: %s: %w", source, err)
	}
	return tr, nil
}

// face picks the face for value. The embedded face is used only when asked
// for and when the value has glyphs the core font cannot show.
func (b *builder) face(source string, requested mapping.Font, value string) fonts.Face {
	if !requested.Embedded() || !fonts.NeedsUnicode(value) {
		return b.ctx.Default
	}
	if b.ctx.Embedded == nil {
		b.plan.warnf("no embedded font available; %s drawn with %s", source, b.ctx.Default.Family())
		return b.ctx.Default
	}
	if tt, ok := b.ctx.Embedded.(*fonts.TrueType); ok {
		if missing := tt.Missing(value); len(missing) > 0 {
			b.plan.warnf("%s: font %s has no glyph for %q", source, tt.Name(), string(missing))
		}
	}
	return b.ctx.Embedded
}

func (b *builder) text(key, value string, spot mapping.TextSpot) error {
	name := spot.WrapKey
	if name == "" {
		name = key
	}
	box, ok := b.ctx.WrapBoxes[name]
	if !ok {
		return b.single(key, value, spot)
	}

	tr, err := b.transformer(key, spot.Page)
	if err != nil {
		return err
	}
	face := b.face(key, spot.Font, value)
	lineHeight := box.LineHeight
	if lineHeight <= 0 {
		lineHeight = spot.Size * lineHeightFactor
	}
	top := tr.Point(spot.X, spot.Y, coord.KindText, face.Ascent(spot.Size))
	for i, line := range textwrap.Wrap(value, face, spot.Size, box.MaxWidth, box.MaxLines) {
		b.plan.Ops = append(b.plan.Ops, Op{
			Kind:   OpText,
			Page:   spot.Page,
			X:      top.X,
			Y:      top.Y - float64(i)*lineHeight,
			Text:   line,
			Family: face.Family(),
			Size:   spot.Size,
			Source: key,
		})
	}
	return nil
}

func (b *builder) single(source, value string, spot mapping.TextSpot) error {
	tr, err := b.transformer(source, spot.Page)
	if err != nil {
		return err
	}
	face := b.face(source, spot.Font, value)
	p := tr.Point(spot.X, spot.Y, coord.KindText, face.Ascent(spot.Size))
	b.plan.Ops = append(b.plan.Ops, Op{
		Kind:   OpText,
		Page:   spot.Page,
		X:      p.X,
		Y:      p.Y,
		Text:   value,
		Family: face.Family(),
		Size:   spot.Size,
		Source: source,
	})
	return nil
}

func (b *builder) check(key string, spot mapping.CheckSpot) error {
	char := spot.Char
	if char == "" {
		char = mapping.DefaultCheckChar
	}
	// a non-ASCII mark such as ✓ needs the embedded face
	ts := mapping.TextSpot{Page: spot.Page, X: spot.X, Y: spot.Y, Size: spot.Size, Font: mapping.FontEmbedded}
	return b.single(key, char, ts)
}

func (b *builder) line(i int, spot mapping.LineSpot) error {
	source := fmt.Sprintf("lines[%d]", i)
	tr, err := b.transformer(source, spot.Page)
	if err != nil {
		return err
	}
	p1 := tr.Point(spot.X1, spot.Y1, coord.KindLine, 0)
	p2 := tr.Point(spot.X2, spot.Y2, coord.KindLine, 0)
	b.plan.Ops = append(b.plan.Ops, Op{
		Kind:   OpLine,
		Page:   spot.Page,
		X:      p1.X,
		Y:      p1.Y,
		X2:     p2.X,
		Y2:     p2.Y,
		Width:  spot.Width,
		Source: source,
	})
	return nil
}
