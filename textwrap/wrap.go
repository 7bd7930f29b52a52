// Package textwrap splits field values into a bounded number of lines that
// fit a box of fixed width.
package textwrap

import (
	"strings"
	"unicode"
)

// Measurer reports the rendered width of text at a font size, in points.
type Measurer interface {
	Width(text string, size float64) float64
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(text string, size float64) float64

func (f MeasureFunc) Width(text string, size float64) float64 { return f(text, size) }

// Wrap breaks text into at most maxLines lines no wider than maxWidth.
// Words are kept whole where possible; a word wider than the box is split
// between characters. Text beyond maxLines is dropped without a marker.
// A newline in text always starts a new line.
func Wrap(text string, m Measurer, size, maxWidth float64, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	if !strings.Contains(text, "\n") && m.Width(text, size) <= maxWidth {
		return []string{text}
	}

	w := wrapper{m: m, size: size, maxWidth: maxWidth, maxLines: maxLines}
	for _, tok := range tokenize(text) {
		if w.full() {
			break
		}
		w.add(tok)
	}
	w.flush()
	if len(w.lines) == 0 {
		return []string{""}
	}
	return w.lines
}

type wrapper struct {
	m        Measurer
	size     float64
	maxWidth float64
	maxLines int

	lines []string
	cur   strings.Builder
}

func (w *wrapper) full() bool { return len(w.lines) >= w.maxLines }

func (w *wrapper) fits(s string) bool { return w.m.Width(s, w.size) <= w.maxWidth }

func (w *wrapper) add(tok string) {
	if isSpace(tok) {
		if strings.Contains(tok, "\n") {
			w.flush()
			return
		}
		if w.cur.Len() > 0 {
			w.cur.WriteString(tok)
		}
		return
	}
	if w.fits(w.cur.String() + tok) {
		w.cur.WriteString(tok)
		return
	}
	if strings.TrimSpace(w.cur.String()) != "" {
		w.flush()
		if w.full() {
			return
		}
		if w.fits(tok) {
			w.cur.WriteString(tok)
			return
		}
	}
	w.addChars(tok)
}

// addChars places an oversized token one rune at a time.
func (w *wrapper) addChars(tok string) {
	for _, r := range tok {
		if w.full() {
			return
		}
		s := string(r)
		if w.cur.Len() > 0 && !w.fits(w.cur.String()+s) {
			w.flush()
			if w.full() {
				return
			}
		}
		w.cur.WriteString(s)
	}
}

func (w *wrapper) flush() {
	line := strings.TrimRightFunc(w.cur.String(), unicode.IsSpace)
	w.cur.Reset()
	if line == "" {
		return
	}
	if !w.full() {
		w.lines = append(w.lines, line)
	}
}

// tokenize splits s into alternating runs of whitespace and non-whitespace.
func tokenize(s string) []string {
	var toks []string
	start := 0
	prev := -1
	for i, r := range s {
		kind := 0
		if unicode.IsSpace(r) {
			kind = 1
		}
		if prev >= 0 && kind != prev {
			toks = append(toks, s[start:i])
			start = i
		}
		prev = kind
	}
	if start < len(s) {
		toks = append(toks, s[start:])
	}
	return toks
}

func isSpace(tok string) bool {
	return strings.TrimSpace(tok) == ""
}
