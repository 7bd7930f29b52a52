// Package fonts provides the two faces the form renderer draws with: the
// built-in Helvetica core font and an optional TrueType font (typically a
// Korean face such as Malgun Gothic) embedded on demand.
//
// Faces answer the metric questions layout needs (ascent, advance width)
// without touching the output document, so a request whose values are all
// ASCII never pays for parsing and subsetting the TrueType file.
package fonts

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// EmbeddedFamily is the family name the TrueType face is registered under
// in the output document.
const EmbeddedFamily = "formfill-embedded"

// CoreFamily is the default core font.
const CoreFamily = "Helvetica"

// helveticaAscent is Helvetica's AFM ascender in 1/1000 em, used when the
// PDF library does not expose a descriptor for core fonts.
const helveticaAscent = 718

var ErrNoGlyphs = errors.New("fonts: font has no usable glyph table")

// ErrUnsupportedOutlines is returned for font files the PDF writer cannot
// embed: CFF-flavoured OpenType ("OTTO") and font collections ("ttcf").
var ErrUnsupportedOutlines = errors.New("fonts: only TrueType outlines can be embedded")

// Face is a font as seen by layout and drawing code.
type Face interface {
	// Family is the name the face is selected by when drawing.
	Family() string
	// Ascent is the distance from baseline to the top of the tallest glyph
	// at size, in points.
	Ascent(size float64) float64
	// Width is the advance width of text at size, in points.
	Width(text string, size float64) float64
}

// Core is the Helvetica core font. Metrics come from the PDF library's
// built-in width tables.
type Core struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string // UTF-8 to cp1252, as drawn
	ascent float64             // per 1 pt of size
}

// NewCore returns the default face. A Core is not safe for concurrent use;
// build one per render.
func NewCore() *Core {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont(CoreFamily, "", 10)
	asc := float64(pdf.GetFontDesc(CoreFamily, "").Ascent)
	if asc <= 0 {
		asc = helveticaAscent
	}
	return &Core{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), ascent: asc / 1000}
}

func (c *Core) Family() string { return CoreFamily }

func (c *Core) Ascent(size float64) float64 { return c.ascent * size }

func (c *Core) Width(text string, size float64) float64 {
	c.pdf.SetFontSize(size)
	return c.pdf.GetStringWidth(c.tr(text))
}

// TrueType is a parsed TrueType-outline font. It is immutable and safe for
// concurrent use.
type TrueType struct {
	name   string
	data   []byte
	font   *sfnt.Font
	upem   float64
	ascent float64 // font units
}

// ParseTrueType parses font file data. name identifies the source in
// messages.
func ParseTrueType(name string, data []byte) (*TrueType, error) {
	if len(data) >= 4 {
		switch string(data[:4]) {
		case "OTTO", "ttcf":
			return nil, fmt.Errorf("fonts: %s: %w", name, ErrUnsupportedOutlines)
		}
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fonts: parsing %s: %w", name, err)
	}
	upem := f.UnitsPerEm()
	if upem == 0 || f.NumGlyphs() == 0 {
		return nil, fmt.Errorf("fonts: %s: %w", name, ErrNoGlyphs)
	}
	m, err := f.Metrics(nil, fixed.I(int(upem)), font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("fonts: reading metrics of %s: %w", name, err)
	}
	return &TrueType{
		name:   name,
		data:   data,
		font:   f,
		upem:   float64(upem),
		ascent: fixedToFloat(m.Ascent),
	}, nil
}

func (t *TrueType) Family() string { return EmbeddedFamily }

// Name is the source the font was loaded from.
func (t *TrueType) Name() string { return t.name }

// Data returns the raw font file for embedding.
func (t *TrueType) Data() []byte { return t.data }

func (t *TrueType) Ascent(size float64) float64 {
	return t.ascent / t.upem * size
}

func (t *TrueType) Width(text string, size float64) float64 {
	ppem := fixed.I(int(t.upem))
	var units float64
	for _, r := range text {
		gi, err := t.font.GlyphIndex(nil, r)
		if err != nil {
			continue
		}
		adv, err := t.font.GlyphAdvance(nil, gi, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		units += fixedToFloat(adv)
	}
	return units / t.upem * size
}

// Missing returns the distinct runes of text the font has no glyph for.
func (t *TrueType) Missing(text string) []rune {
	var out []rune
	seen := map[rune]bool{}
	for _, r := range text {
		if seen[r] || r < utf8.RuneSelf {
			continue
		}
		seen[r] = true
		if gi, err := t.font.GlyphIndex(nil, r); err != nil || gi == 0 {
			out = append(out, r)
		}
	}
	return out
}

// NeedsUnicode reports whether s has any rune outside ASCII and therefore
// needs the embedded face to render correctly.
func NeedsUnicode(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
