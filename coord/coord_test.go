package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lvillar/formfill/mapping"
)

const letterW, letterH = 612.0, 792.0

func ptBottom() mapping.Meta {
	m := mapping.DefaultMeta()
	m.Units = mapping.UnitsPoint
	m.YOrigin = mapping.OriginBottom
	return m
}

func TestLineRoundTrip(t *testing.T) {
	for _, size := range [][2]float64{{letterW, letterH}, {595.28, 841.89}, {100, 50}} {
		tr := New(ptBottom(), size[0], size[1])
		for _, pt := range []Point{{0, 0}, {12.5, 700.25}, {611, 1}} {
			got := tr.Point(pt.X, pt.Y, KindLine, 99)
			assert.Equal(t, pt, got, "page %v", size)
		}
	}
}

func TestPixelScaling(t *testing.T) {
	m := mapping.DefaultMeta()
	m.PreviewWidth = 1299
	m.PreviewHeight = 1681
	tr := New(m, letterW, letterH)

	assert.InDelta(t, letterW, tr.X(1299), 1e-9)
	assert.InDelta(t, 0, tr.X(0), 1e-9)
	// top-origin: preview top maps to page top, preview bottom to zero
	assert.InDelta(t, letterH, tr.YRaw(0), 1e-9)
	assert.InDelta(t, 0, tr.YRaw(1681), 1e-9)
}

func TestMissingPreviewFallsBackToPageSize(t *testing.T) {
	tr := New(mapping.DefaultMeta(), letterW, letterH)
	fx, fy := tr.Factors()
	assert.Equal(t, 1.0, fx)
	assert.Equal(t, 1.0, fy)
	assert.Equal(t, 100.0, tr.X(100))
	assert.Equal(t, letterH-100, tr.YRaw(100))
}

func TestScaleAndNudge(t *testing.T) {
	m := ptBottom()
	m.ScaleX, m.ScaleY = 2, 0.5
	m.NudgeX, m.NudgeY = 3, -4
	tr := New(m, letterW, letterH)

	got := tr.Point(10, 100, KindLine, 0)
	assert.Equal(t, Point{X: 23, Y: 46}, got)

	m.ScaleX, m.ScaleY = 0, -1
	fx, fy := New(m, letterW, letterH).Factors()
	assert.Equal(t, 1.0, fx)
	assert.Equal(t, 1.0, fy)
}

func TestTextSubtractsAscent(t *testing.T) {
	m := mapping.DefaultMeta()
	m.Units = mapping.UnitsPoint
	tr := New(m, letterW, letterH)

	line := tr.Point(50, 100, KindLine, 7.18)
	text := tr.Point(50, 100, KindText, 7.18)
	assert.Equal(t, line.X, text.X)
	assert.InDelta(t, line.Y-7.18, text.Y, 1e-9)
	assert.InDelta(t, letterH-100-7.18, text.Y, 1e-9)
}

func TestTopOriginWithNudgeAppliesAfterFlip(t *testing.T) {
	m := mapping.DefaultMeta()
	m.Units = mapping.UnitsPoint
	m.NudgeY = 5
	tr := New(m, 200, 300)
	assert.Equal(t, 300.0-20+5, tr.YRaw(20))
}
