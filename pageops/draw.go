package pageops

import (
	"github.com/go-pdf/fpdf"

	"github.com/lvillar/formfill/fonts"
	"github.com/lvillar/formfill/render"
)

// canvas draws ops on the current page. fpdf measures y from the top of the
// page while plans use PDF's bottom-left origin, so every y is flipped.
type canvas struct {
	pdf        *fpdf.Fpdf
	pageHeight float64

	// latin maps UTF-8 to the cp1252 encoding of the core fonts.
	latin func(string) string
}

func (c *canvas) y(v float64) float64 { return c.pageHeight - v }

func (c *canvas) draw(op render.Op) {
	switch op.Kind {
	case render.OpText:
		c.text(op)
	case render.OpLine:
		c.line(op)
	}
}

func (c *canvas) text(op render.Op) {
	if op.Text == "" {
		return
	}
	txt := op.Text
	if op.Family == fonts.EmbeddedFamily {
		c.pdf.SetFont(fonts.EmbeddedFamily, "", op.Size)
	} else {
		c.pdf.SetFont(fonts.CoreFamily, "", op.Size)
		txt = c.latin(txt)
	}
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.Text(op.X, c.y(op.Y), txt)
}

func (c *canvas) line(op render.Op) {
	c.pdf.SetDrawColor(0, 0, 0)
	c.pdf.SetLineWidth(op.Width)
	c.pdf.Line(op.X, c.y(op.Y), op.X2, c.y(op.Y2))
}
