// Package pageops writes a render plan onto an existing PDF.
//
// Each template page is imported as a form XObject with the gofpdi contrib
// package, placed full-size on a new page of the same dimensions, and the
// plan's text and lines are drawn over it.
package pageops

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"

	"github.com/lvillar/formfill/fonts"
	"github.com/lvillar/formfill/pdfinfo"
	"github.com/lvillar/formfill/render"
)

var (
	ErrNoPages     = errors.New("pageops: template has no pages")
	ErrMissingFont = errors.New("pageops: plan uses the embedded face but no font data was given")
)

// Creator is recorded in the document information of every output.
const Creator = "formfill"

// Overlay draws plan over template and returns the new document. pages are
// the template's page sizes in points, one per page, as reported by
// pdfinfo. fontBytes is the TrueType font registered for
// fonts.EmbeddedFamily; it is only read when the plan uses that face.
//
// An empty plan returns template unchanged.
func Overlay(template []byte, pages []pdfinfo.PageSize, plan *render.Plan, fontBytes []byte) (out []byte, err error) {
	if plan == nil || plan.Empty() {
		return template, nil
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	embed := plan.UsesEmbedded()
	if embed && len(fontBytes) == 0 {
		return nil, ErrMissingFont
	}

	// The importer panics on malformed input.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("pageops: overlay: %v", r)
		}
	}()

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(Creator, true)
	if embed {
		pdf.AddUTF8FontFromBytes(fonts.EmbeddedFamily, "", fontBytes)
	}

	byPage := plan.ByPage()
	for n := range byPage {
		if n < 1 || n > len(pages) {
			return nil, fmt.Errorf("pageops: %w: page %d of %d", pdfinfo.ErrPageRange, n, len(pages))
		}
	}

	c := canvas{pdf: pdf, latin: pdf.UnicodeTranslatorFromDescriptor("")}
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(template))
	for i, size := range pages {
		n := i + 1
		tpl := imp.ImportPageFromStream(pdf, &rs, n, "/MediaBox")
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, size.Width, size.Height)

		c.pageHeight = size.Height
		for _, op := range byPage[n] {
			c.draw(op)
		}
		if pdf.Err() {
			return nil, fmt.Errorf("pageops: page %d: %w", n, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pageops: writing output: %w", err)
	}
	return buf.Bytes(), nil
}
