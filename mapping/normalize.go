package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotObject is returned when the top-level JSON value is not an object.
var ErrNotObject = errors.New("mapping: top-level value is not an object")

type variant int

const (
	variantEmpty variant = iota
	variantCanonical
	variantLegacy
)

// Normalize parses a mapping file in either schema and returns the canonical
// document. Malformed optional entries are skipped or defaulted; an error is
// returned only when data is not JSON or not a JSON object.
func Normalize(data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Empty(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("mapping: parsing JSON: %w", err)
	}
	return NormalizeValue(raw)
}

// NormalizeValue normalizes an already decoded JSON value (as produced by
// encoding/json into an any).
func NormalizeValue(raw any) (*Document, error) {
	if raw == nil {
		return Empty(), nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}

	var doc *Document
	switch detectVariant(obj) {
	case variantCanonical:
		doc = parseCanonical(obj)
	case variantLegacy:
		doc = parseLegacy(obj)
	default:
		doc = Empty()
	}
	doc.Meta = parseMeta(asObject(obj["meta"]))
	doc.Wrap = parseWrap(asObject(obj["wrap"]))
	return doc, nil
}

func detectVariant(obj map[string]any) variant {
	if len(obj) == 0 {
		return variantEmpty
	}
	if obj["text"] != nil || obj["checkbox"] != nil {
		return variantCanonical
	}
	// "lines" exists in both schemas; only legacy documents carry fields/vmap.
	if obj["lines"] != nil && obj["fields"] == nil && obj["vmap"] == nil {
		return variantCanonical
	}
	return variantLegacy
}

func parseMeta(m map[string]any) Meta {
	meta := DefaultMeta()
	if m == nil {
		return meta
	}
	if s := asString(first(m, "pdfPath", "pdf")); s != "" {
		meta.PDFPath = s
	}
	if strings.EqualFold(asString(first(m, "units", "unit")), string(UnitsPoint)) {
		meta.Units = UnitsPoint
	}
	if strings.EqualFold(asString(m["yOrigin"]), string(OriginBottom)) {
		meta.YOrigin = OriginBottom
	}
	meta.PreviewWidth = nonNegative(m["previewWidth"])
	meta.PreviewHeight = nonNegative(m["previewHeight"])
	meta.NudgeX, _ = toNumber(m["nudgeX"])
	meta.NudgeY, _ = toNumber(m["nudgeY"])
	meta.ScaleX = positiveOr(m["scaleX"], 1)
	meta.ScaleY = positiveOr(m["scaleY"], 1)
	return meta
}

func parseCanonical(obj map[string]any) *Document {
	doc := Empty()
	text := asObject(obj["text"])
	for _, key := range sortedKeys(text) {
		for _, s := range asList(text[key]) {
			if m := asObject(s); m != nil {
				doc.Text[key] = append(doc.Text[key], textSpot(m, canonicalFont(asString(m["font"]))))
			}
		}
	}
	checks := asObject(obj["checkbox"])
	for _, raw := range sortedKeys(checks) {
		key := normalizeCompound(raw)
		for _, s := range asList(checks[raw]) {
			if m := asObject(s); m != nil {
				doc.Checkbox[key] = append(doc.Checkbox[key], checkSpot(m))
			}
		}
	}
	doc.Lines = lineSpots(obj["lines"])
	for _, s := range asList(obj["fixed"]) {
		if m := asObject(s); m != nil {
			doc.Fixed = append(doc.Fixed, fixedSpot(m))
		}
	}
	return doc
}

func parseLegacy(obj map[string]any) *Document {
	doc := Empty()
	fields := asObject(obj["fields"])
	for _, name := range sortedKeys(fields) {
		m := asObject(fields[name])
		if m == nil {
			continue
		}
		key := name
		if src := asList(m["source"]); len(src) > 0 {
			if s := asString(src[0]); s != "" {
				key = s
			}
		}
		doc.Text[key] = append(doc.Text[key], textSpot(m, legacyFont(asString(m["font"]))))
	}
	vmap := asObject(obj["vmap"])
	for _, compound := range sortedKeys(vmap) {
		m := asObject(vmap[compound])
		if m == nil {
			continue
		}
		key := normalizeCompound(compound)
		doc.Checkbox[key] = append(doc.Checkbox[key], checkSpot(m))
	}
	doc.Lines = lineSpots(obj["lines"])
	// Roaming-block flags are ordinary embedded-font text fields keyed
	// "fixed_<label>"; they print only when the record supplies a value.
	if flags := asObject(obj["fixed_flags"]); flags != nil {
		for _, f := range asList(flags["intl_roaming_block"]) {
			m := asObject(f)
			if m == nil {
				continue
			}
			label := asString(m["label"])
			if label == "" {
				label = defaultFixedLabel
			}
			key := FixedFieldPrefix + label
			doc.Text[key] = append(doc.Text[key], textSpot(m, FontEmbedded))
		}
	}
	return doc
}

func parseWrap(m map[string]any) map[string]WrapBox {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]WrapBox, len(m))
	for key, v := range m {
		b := asObject(v)
		if b == nil {
			continue
		}
		box := WrapBox{
			MaxWidth:   nonNegative(b["maxWidth"]),
			MaxLines:   int(positiveOr(b["maxLines"], 1)),
			LineHeight: nonNegative(b["lineHeight"]),
		}
		if box.MaxWidth == 0 {
			continue
		}
		out[key] = box
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func textSpot(m map[string]any, font Font) TextSpot {
	return TextSpot{
		Page:    page(m),
		X:       number(m["x"]),
		Y:       number(m["y"]),
		Size:    positiveOr(first(m, "size", "sz"), defaultTextSize),
		Font:    font,
		WrapKey: asString(m["wrapKey"]),
	}
}

func checkSpot(m map[string]any) CheckSpot {
	char := asString(m["char"])
	if char == "" {
		char = DefaultCheckChar
	}
	return CheckSpot{
		Page: page(m),
		X:    number(m["x"]),
		Y:    number(m["y"]),
		Size: positiveOr(first(m, "size", "sz"), defaultCheckSize),
		Char: char,
	}
}

func fixedSpot(m map[string]any) FixedSpot {
	return FixedSpot{
		Page: page(m),
		X:    number(m["x"]),
		Y:    number(m["y"]),
		Size: positiveOr(first(m, "size", "sz"), defaultTextSize),
		Text: asString(m["text"]),
		Font: canonicalFont(asString(m["font"])),
	}
}

func lineSpots(v any) []LineSpot {
	lines := []LineSpot{}
	for _, l := range asList(v) {
		m := asObject(l)
		if m == nil {
			continue
		}
		lines = append(lines, LineSpot{
			Page:  page(m),
			X1:    number(m["x1"]),
			Y1:    number(m["y1"]),
			X2:    number(m["x2"]),
			Y2:    number(m["y2"]),
			Width: positiveOr(first(m, "width", "w"), defaultLineWidth),
		})
	}
	return lines
}

func page(m map[string]any) int {
	p := int(number(first(m, "page", "p")))
	if p < 1 {
		return 1
	}
	return p
}

// normalizeCompound rewrites "field:expected" as "field.expected".
func normalizeCompound(key string) string {
	if strings.Contains(key, ".") {
		return key
	}
	return strings.Replace(key, ":", ".", 1)
}

// canonicalFont maps a canonical-schema font name onto Font. Anything other
// than empty or "default" asks for the embedded face.
func canonicalFont(s string) Font {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FontDefault), "helvetica":
		return FontDefault
	}
	return FontEmbedded
}

// legacyFont: legacy field specs always rendered with the UTF-8 face unless
// they explicitly opted out.
func legacyFont(s string) Font {
	if strings.EqualFold(strings.TrimSpace(s), string(FontDefault)) {
		return FontDefault
	}
	return FontEmbedded
}
