// Package render turns a canonical mapping and a resolved input record into
// a Plan: the exact list of text and line draws, in PDF user space, that
// stamp the record onto the template.
//
// Building a plan needs only page geometry and font metrics. Writing it
// into a document is left to package pageops, which keeps layout testable
// without producing PDFs.
package render

import (
	"fmt"

	"github.com/lvillar/formfill/coord"
	"github.com/lvillar/formfill/fonts"
	"github.com/lvillar/formfill/mapping"
	"github.com/lvillar/formfill/pdfinfo"
)

// OpKind distinguishes draw operations.
type OpKind int

const (
	OpText OpKind = iota
	OpLine
)

func (k OpKind) String() string {
	switch k {
	case OpText:
		return "text"
	case OpLine:
		return "line"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op is one draw call. Coordinates are PDF points with a bottom-left origin;
// for text, (X, Y) is the baseline start.
type Op struct {
	Kind   OpKind  `json:"kind"`
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	Text   string  `json:"text,omitempty"`
	Family string  `json:"family,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Width  float64 `json:"width,omitempty"` // line thickness
	Source string  `json:"source"`          // mapping key that produced the op
}

// Plan is the ordered list of draws for one document.
type Plan struct {
	Ops      []Op     `json:"ops"`
	Warnings []string `json:"warnings,omitempty"`

	warned map[string]bool
}

// Empty reports whether nothing would be drawn.
func (p *Plan) Empty() bool { return len(p.Ops) == 0 }

// UsesFamily reports whether any text op draws with the given face family.
func (p *Plan) UsesFamily(family string) bool {
	for _, op := range p.Ops {
		if op.Kind == OpText && op.Family == family {
			return true
		}
	}
	return false
}

// UsesEmbedded reports whether the embedded TrueType face is needed.
func (p *Plan) UsesEmbedded() bool { return p.UsesFamily(fonts.EmbeddedFamily) }

// ByPage groups ops by 1-based page number, preserving order.
func (p *Plan) ByPage() map[int][]Op {
	out := make(map[int][]Op)
	for _, op := range p.Ops {
		out[op.Page] = append(out[op.Page], op)
	}
	return out
}

func (p *Plan) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.warned == nil {
		p.warned = map[string]bool{}
	}
	if p.warned[msg] {
		return
	}
	p.warned[msg] = true
	p.Warnings = append(p.Warnings, msg)
}

// Context is everything a render needs besides the mapping and record. It
// is built per request and never modified.
type Context struct {
	Meta  mapping.Meta
	Pages []pdfinfo.PageSize

	Default  fonts.Face
	Embedded fonts.Face // nil when no TrueType font could be loaded

	// WrapBoxes is the wrap-box registry: box name to bounds.
	WrapBoxes map[string]mapping.WrapBox
}

// Transformer returns the coordinate transformer for the 1-based page n.
func (c *Context) Transformer(n int) (coord.Transformer, error) {
	if n < 1 || n > len(c.Pages) {
		return coord.Transformer{}, fmt.Errorf("%w: page %d of %d", pdfinfo.ErrPageRange, n, len(c.Pages))
	}
	p := c.Pages[n-1]
	return coord.New(c.Meta, p.Width, p.Height), nil
}
