package pageops_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lvillar/formfill/fonts"
	"github.com/lvillar/formfill/pageops"
	"github.com/lvillar/formfill/pdfinfo"
	"github.com/lvillar/formfill/render"
)

var letter = pdfinfo.PageSize{Width: 612, Height: 792}

// createTestPDF generates a template with one labelled page per size.
func createTestPDF(t *testing.T, sizes ...pdfinfo.PageSize) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for i, s := range sizes {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: s.Width, Ht: s.Height})
		pdf.Text(20, 30, fmt.Sprintf("Page %d of %d", i+1, len(sizes)))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("creating test PDF: %v", err)
	}
	return buf.Bytes()
}

func TestOverlayEmptyPlanIsIdentity(t *testing.T) {
	tpl := createTestPDF(t, letter)
	for _, plan := range []*render.Plan{nil, {}} {
		out, err := pageops.Overlay(tpl, []pdfinfo.PageSize{letter}, plan, nil)
		if err != nil {
			t.Fatalf("overlay: %v", err)
		}
		if !bytes.Equal(out, tpl) {
			t.Errorf("empty plan changed the document")
		}
	}
}

func TestOverlayKeepsPages(t *testing.T) {
	wide := pdfinfo.PageSize{Width: 842, Height: 595}
	pages := []pdfinfo.PageSize{letter, wide}
	tpl := createTestPDF(t, pages...)

	plan := &render.Plan{Ops: []render.Op{
		{Kind: render.OpText, Page: 1, X: 72, Y: 700, Text: "Kim", Family: fonts.CoreFamily, Size: 10, Source: "name"},
		{Kind: render.OpText, Page: 1, X: 72, Y: 680, Text: "Café", Family: fonts.CoreFamily, Size: 10, Source: "cafe"},
		{Kind: render.OpLine, Page: 2, X: 10, Y: 10, X2: 200, Y2: 10, Width: 1, Source: "lines[0]"},
	}}
	out, err := pageops.Overlay(tpl, pages, plan, nil)
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if bytes.Equal(out, tpl) {
		t.Fatal("overlay returned the template unchanged")
	}

	info, err := pdfinfo.Read(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if info.NumPages() != 2 {
		t.Fatalf("expected 2 pages, got %d", info.NumPages())
	}
	for i, want := range pages {
		got := info.Pages[i]
		if abs(got.Width-want.Width) > 0.01 || abs(got.Height-want.Height) > 0.01 {
			t.Errorf("page %d: size %v, want %v", i+1, got, want)
		}
	}
}

func TestOverlayEmbedsFont(t *testing.T) {
	tpl := createTestPDF(t, letter)
	plan := &render.Plan{Ops: []render.Op{
		{Kind: render.OpText, Page: 1, X: 72, Y: 700, Text: "Ünïcode", Family: fonts.EmbeddedFamily, Size: 12, Source: "name"},
	}}

	plain, err := pageops.Overlay(tpl, []pdfinfo.PageSize{letter}, &render.Plan{Ops: []render.Op{
		{Kind: render.OpText, Page: 1, X: 72, Y: 700, Text: "ascii", Family: fonts.CoreFamily, Size: 12, Source: "name"},
	}}, goregular.TTF)
	if err != nil {
		t.Fatalf("overlay without embedded ops: %v", err)
	}
	embedded, err := pageops.Overlay(tpl, []pdfinfo.PageSize{letter}, plan, goregular.TTF)
	if err != nil {
		t.Fatalf("overlay with embedded ops: %v", err)
	}
	if !bytes.Contains(embedded, []byte("FontFile2")) {
		t.Error("embedded face was not written")
	}
	if bytes.Contains(plain, []byte("FontFile2")) {
		t.Error("font embedded although no op uses it")
	}
}

func TestOverlayMissingFont(t *testing.T) {
	tpl := createTestPDF(t, letter)
	plan := &render.Plan{Ops: []render.Op{
		{Kind: render.OpText, Page: 1, Text: "x", Family: fonts.EmbeddedFamily, Size: 10},
	}}
	_, err := pageops.Overlay(tpl, []pdfinfo.PageSize{letter}, plan, nil)
	if !errors.Is(err, pageops.ErrMissingFont) {
		t.Fatalf("expected ErrMissingFont, got %v", err)
	}
}

func TestOverlayPageOutOfRange(t *testing.T) {
	tpl := createTestPDF(t, letter)
	plan := &render.Plan{Ops: []render.Op{
		{Kind: render.OpText, Page: 2, Text: "x", Family: fonts.CoreFamily, Size: 10},
	}}
	_, err := pageops.Overlay(tpl, []pdfinfo.PageSize{letter}, plan, nil)
	if !errors.Is(err, pdfinfo.ErrPageRange) {
		t.Fatalf("expected ErrPageRange, got %v", err)
	}
}

func TestOverlayNoPages(t *testing.T) {
	plan := &render.Plan{Ops: []render.Op{{Kind: render.OpLine, Page: 1}}}
	_, err := pageops.Overlay(createTestPDF(t, letter), nil, plan, nil)
	if !errors.Is(err, pageops.ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
