package formfill

import (
	"context"

	"github.com/lvillar/formfill/fields"
	"github.com/lvillar/formfill/mapping"
	"github.com/lvillar/formfill/render"
)

// Diagnostics describes how a record would be rendered, without writing
// a PDF.
type Diagnostics struct {
	MappingPath     string            `json:"mappingPath"`
	MappingFound    bool              `json:"mappingFound"`
	TemplatePath    string            `json:"templatePath"`
	TemplateVersion string            `json:"templateVersion,omitempty"`
	FontPath        string            `json:"fontPath,omitempty"`
	FontLoaded      bool              `json:"fontLoaded"`
	FontError       string            `json:"fontError,omitempty"`
	Meta            mapping.Meta      `json:"meta"`
	Pages           []PageDiagnostics `json:"pages"`
	Spots           SpotCounts        `json:"spots"`
	Record          fields.Record     `json:"record"`
	Ops             []render.Op       `json:"ops"`
	Warnings        []string          `json:"warnings"`
}

// PageDiagnostics is one template page and the coordinate factors computed
// for it.
type PageDiagnostics struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
}

// SpotCounts summarizes the mapping.
type SpotCounts struct {
	Text     int `json:"text"`
	Checkbox int `json:"checkbox"`
	Lines    int `json:"lines"`
	Fixed    int `json:"fixed"`
}

// Diagnose runs the pipeline up to layout and reports what it found.
func (e *Engine) Diagnose(ctx context.Context, rec fields.Record) (*Diagnostics, error) {
	j, err := e.prepare(ctx, rec)
	if err != nil {
		return nil, err
	}
	d := &Diagnostics{
		MappingPath:     j.mappingPath,
		MappingFound:    j.mappingFound,
		TemplatePath:    j.template.Path,
		TemplateVersion: j.info.Version,
		FontPath:        j.fontPath,
		FontLoaded:      j.font != nil,
		Meta:            j.doc.Meta,
		Record:          j.record,
		Ops:             j.plan.Ops,
		Warnings:        j.warnings,
		Spots: SpotCounts{
			Lines: len(j.doc.Lines),
			Fixed: len(j.doc.Fixed),
		},
	}
	if j.fontErr != nil {
		d.FontError = j.fontErr.Error()
	}
	for _, spots := range j.doc.Text {
		d.Spots.Text += len(spots)
	}
	for _, spots := range j.doc.Checkbox {
		d.Spots.Checkbox += len(spots)
	}
	for i, p := range j.info.Pages {
		pd := PageDiagnostics{Page: i + 1, Width: p.Width, Height: p.Height}
		if tr, err := j.rctx.Transformer(i + 1); err == nil {
			pd.ScaleX, pd.ScaleY = tr.Factors()
		}
		d.Pages = append(d.Pages, pd)
	}
	return d, nil
}
