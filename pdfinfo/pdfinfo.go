// Package pdfinfo reads the page geometry of a template PDF.
//
// It validates that the template parses before any drawing starts, so a
// corrupt template is reported as an error instead of failing deep inside
// the page importer.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// keep pdfcpu from creating a config directory under $HOME
	api.DisableConfigDir()
}

var (
	ErrNoPages   = errors.New("pdfinfo: document has no pages")
	ErrPageRange = errors.New("pdfinfo: page out of range")
)

// PageSize is a page's width and height in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Info describes a template.
type Info struct {
	Version string     `json:"version"`
	Pages   []PageSize `json:"pages"`
}

// NumPages returns the page count.
func (i *Info) NumPages() int { return len(i.Pages) }

// Page returns the size of the 1-based page n.
func (i *Info) Page(n int) (PageSize, error) {
	if n < 1 || n > len(i.Pages) {
		return PageSize{}, fmt.Errorf("%w: page %d of %d", ErrPageRange, n, len(i.Pages))
	}
	return i.Pages[n-1], nil
}

// Read inspects PDF data.
func Read(data []byte) (*Info, error) {
	return ReadFrom(bytes.NewReader(data))
}

// ReadFrom inspects a PDF from rs.
func ReadFrom(rs io.ReadSeeker) (*Info, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfinfo: reading PDF: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("pdfinfo: counting pages: %w", err)
	}
	if ctx.PageCount == 0 {
		return nil, ErrNoPages
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("pdfinfo: reading page sizes: %w", err)
	}

	info := &Info{Pages: make([]PageSize, len(dims))}
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}
	for i, d := range dims {
		info.Pages[i] = PageSize{Width: d.Width, Height: d.Height}
	}
	return info, nil
}
