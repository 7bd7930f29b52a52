// Package coord converts mapping-author coordinates into PDF user space.
//
// Mappings are authored against a preview image of the form: pixel units,
// origin at the top-left. PDF pages use points with the origin at the
// bottom-left, and text is positioned by its baseline. A Transformer bridges
// the two for a single page; it holds no mutable state and is safe to share.
package coord

import "github.com/lvillar/formfill/mapping"

// Kind selects how a point is interpreted.
type Kind int

const (
	// KindText points mark the top of a glyph box; the font ascent is
	// subtracted to obtain the baseline.
	KindText Kind = iota
	// KindLine points map straight through.
	KindLine
)

// Point is a position in PDF user space (points, bottom-left origin).
type Point struct {
	X, Y float64
}

// Transformer maps coordinates for one page.
type Transformer struct {
	meta       mapping.Meta
	pageWidth  float64
	pageHeight float64
	fx, fy     float64
}

// New builds a Transformer for a page of the given size in points.
// A missing preview size falls back to the page size, which disables pixel
// scaling; a non-positive scale counts as 1.
func New(meta mapping.Meta, pageWidth, pageHeight float64) Transformer {
	t := Transformer{meta: meta, pageWidth: pageWidth, pageHeight: pageHeight}

	sx, sy := meta.ScaleX, meta.ScaleY
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = 1
	}
	t.fx, t.fy = sx, sy

	if meta.Units != mapping.UnitsPoint {
		pw, ph := meta.PreviewWidth, meta.PreviewHeight
		if pw <= 0 {
			pw = pageWidth
		}
		if ph <= 0 {
			ph = pageHeight
		}
		if pw > 0 {
			t.fx *= pageWidth / pw
		}
		if ph > 0 {
			t.fy *= pageHeight / ph
		}
	}
	return t
}

// Factors returns the effective per-axis multipliers (unit conversion times
// scale) applied before nudging.
func (t Transformer) Factors() (fx, fy float64) {
	return t.fx, t.fy
}

// PageSize returns the page size the transformer was built for.
func (t Transformer) PageSize() (w, h float64) {
	return t.pageWidth, t.pageHeight
}

// X converts a horizontal coordinate.
func (t Transformer) X(x float64) float64 {
	return x*t.fx + t.meta.NudgeX
}

// YRaw converts a vertical coordinate to a bottom-origin value without any
// baseline correction.
func (t Transformer) YRaw(y float64) float64 {
	scaled := y * t.fy
	if t.meta.YOrigin != mapping.OriginBottom {
		scaled = t.pageHeight - scaled
	}
	return scaled + t.meta.NudgeY
}

// Point converts (x, y). For KindText, ascent is the distance from baseline
// to glyph top at the drawn size, in points; it is ignored for KindLine.
func (t Transformer) Point(x, y float64, kind Kind, ascent float64) Point {
	p := Point{X: t.X(x), Y: t.YRaw(y)}
	if kind == KindText {
		p.Y -= ascent
	}
	return p
}
