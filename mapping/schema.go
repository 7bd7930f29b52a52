// Package mapping describes where on a PDF template each data field, checkbox
// mark and ruling line is drawn, and normalizes the two mapping-file schemas
// found in the wild into one canonical Document.
//
// Canonical JSON:
//
//	{
//	  "meta": {"pdfPath": "template.pdf", "units": "px", "yOrigin": "top",
//	           "previewWidth": 1299, "previewHeight": 1837},
//	  "text": {"name": [{"page": 1, "x": 120, "y": 310, "size": 10, "font": "embedded"}]},
//	  "checkbox": {"gender.male": [{"page": 1, "x": 80, "y": 400, "size": 12}]},
//	  "lines": [{"page": 1, "x1": 10, "y1": 20, "x2": 200, "y2": 20, "width": 1}]
//	}
//
// Legacy JSON uses "fields", "vmap" (keys "field:expected") and "lines" with
// "p"/"w" shorthands instead.
package mapping

import "strings"

// Units is the coordinate unit a mapping was authored in.
type Units string

const (
	UnitsPixel Units = "px" // pixels of the preview image
	UnitsPoint Units = "pt" // PDF points
)

// Origin is the vertical origin a mapping was authored against.
type Origin string

const (
	OriginTop    Origin = "top"
	OriginBottom Origin = "bottom"
)

// Font selects the face a text spot asks for.
type Font string

const (
	FontDefault  Font = "default"
	FontEmbedded Font = "embedded"
)

// Embedded reports whether the spot requests the embedded (UTF-8) face.
// The renderer still uses the default face when the value is plain ASCII.
func (f Font) Embedded() bool {
	return f == FontEmbedded
}

// DefaultPDFPath is the template file name used when a mapping names none.
const DefaultPDFPath = "template.pdf"

// DefaultCheckChar is drawn for a matched checkbox spot without its own char.
const DefaultCheckChar = "V"

// FixedFieldPrefix prefixes the text fields legacy fixed_flags entries
// become: label "block" reads the record key "fixed_block".
const FixedFieldPrefix = "fixed_"

const defaultFixedLabel = "intl"

const (
	defaultTextSize  = 10
	defaultCheckSize = 12
	defaultLineWidth = 1
)

// Meta holds document-wide coordinate settings.
type Meta struct {
	PDFPath       string  `json:"pdfPath"`
	Units         Units   `json:"units"`
	YOrigin       Origin  `json:"yOrigin"`
	PreviewWidth  float64 `json:"previewWidth"`  // 0 = use the page width
	PreviewHeight float64 `json:"previewHeight"` // 0 = use the page height
	NudgeX        float64 `json:"nudgeX"`
	NudgeY        float64 `json:"nudgeY"`
	ScaleX        float64 `json:"scaleX"`
	ScaleY        float64 `json:"scaleY"`
}

// DefaultMeta returns the metadata applied underneath every mapping.
func DefaultMeta() Meta {
	return Meta{
		PDFPath: DefaultPDFPath,
		Units:   UnitsPixel,
		YOrigin: OriginTop,
		ScaleX:  1,
		ScaleY:  1,
	}
}

// TextSpot places the value of one field.
type TextSpot struct {
	Page    int     `json:"page"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Font    Font    `json:"font"`
	WrapKey string  `json:"wrapKey,omitempty"`
}

// CheckSpot places a check mark drawn when its compound key matches.
type CheckSpot struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
	Char string  `json:"char"`
}

// LineSpot is a straight ruling line.
type LineSpot struct {
	Page  int     `json:"page"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Width float64 `json:"width"`
}

// FixedSpot is static text drawn on every output regardless of input data.
type FixedSpot struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
	Text string  `json:"text"`
	Font Font    `json:"font"`
}

// WrapBox bounds a wrapped text field. Widths and heights are in points.
type WrapBox struct {
	MaxWidth   float64 `json:"maxWidth"`
	MaxLines   int     `json:"maxLines"`
	LineHeight float64 `json:"lineHeight,omitempty"` // 0 = 1.2 x font size
}

// Document is the canonical mapping.
type Document struct {
	Meta     Meta                   `json:"meta"`
	Text     map[string][]TextSpot  `json:"text"`
	Checkbox map[string][]CheckSpot `json:"checkbox"`
	Lines    []LineSpot             `json:"lines"`
	Fixed    []FixedSpot            `json:"fixed,omitempty"`
	Wrap     map[string]WrapBox     `json:"wrap,omitempty"`
}

// Empty returns a document with default metadata and nothing to draw.
func Empty() *Document {
	return &Document{
		Meta:     DefaultMeta(),
		Text:     map[string][]TextSpot{},
		Checkbox: map[string][]CheckSpot{},
		Lines:    []LineSpot{},
	}
}

// IsEmpty reports whether the document has no spots at all.
func (d *Document) IsEmpty() bool {
	return len(d.Text) == 0 && len(d.Checkbox) == 0 && len(d.Lines) == 0 && len(d.Fixed) == 0
}

// SplitCompound splits a checkbox key into field and expected value. The
// first '.' separates them; keys without a '.' fall back to ':'.
func SplitCompound(key string) (field, expected string) {
	sep := "."
	if !strings.Contains(key, ".") {
		sep = ":"
	}
	field, expected, _ = strings.Cut(key, sep)
	return field, expected
}
