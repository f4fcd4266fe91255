// Package pdfpage models the positioned content of a single PDF page:
// glyphs, words and rectangles, plus cropping and grid-table extraction
// driven by explicit ruling lines. It has no dependency on a PDF backend.
package pdfpage

import (
	"sort"
	"strings"
)

// Page is the capability surface the score-sheet parsers need from a PDF
// backend.
type Page interface {
	// ExtractText returns the page text, one line per visual line.
	ExtractText() (string, error)
	// Words returns the page words in reading order.
	Words() []Word
	// Chars returns the raw glyphs.
	Chars() []Char
	// Rects returns the rectangle primitives in drawing order.
	Rects() []Rect
	// BBox returns the page (or cropped region) bounds.
	BBox() BBox
	// Crop returns the part of the page inside bbox.
	Crop(bbox BBox) Page
	// ExtractTable slices the region into cells along the given lines and
	// returns the text of every cell, row by row.
	ExtractTable(vertical, horizontal []float64) [][]string
}

// Content is an in-memory Page built from glyphs and rectangles.
type Content struct {
	bbox  BBox
	chars []Char
	rects []Rect
	words []Word
}

var _ Page = (*Content)(nil)

// NewContent builds a page from its primitives. The slices are not copied.
func NewContent(bbox BBox, chars []Char, rects []Rect) *Content {
	return &Content{bbox: bbox, chars: chars, rects: rects}
}

func (c *Content) BBox() BBox { return c.bbox }

func (c *Content) Chars() []Char { return c.chars }

func (c *Content) Rects() []Rect { return c.rects }

func (c *Content) Words() []Word {
	if c.words == nil {
		c.words = extractWords(c.chars)
	}
	return c.words
}

// ExtractText joins words into lines. It never fails for in-memory content.
func (c *Content) ExtractText() (string, error) {
	return joinLines(c.Words()), nil
}

// Crop keeps glyphs whose centre falls inside bbox and clips rectangles to it.
func (c *Content) Crop(bbox BBox) Page {
	area, ok := c.bbox.Intersect(bbox)
	if !ok {
		return NewContent(bbox, nil, nil)
	}

	var chars []Char
	for _, ch := range c.chars {
		if x, y := ch.center(); area.Contains(x, y) {
			chars = append(chars, ch)
		}
	}

	var rects []Rect
	for _, r := range c.rects {
		clip, ok := r.BBox().Intersect(area)
		if !ok {
			continue
		}
		rects = append(rects, Rect{
			X0:     clip.X0,
			X1:     clip.X1,
			Top:    clip.Top,
			Bottom: clip.Bottom,
			DocTop: r.DocTop + (clip.Top - r.Top),
		})
	}
	return NewContent(area, chars, rects)
}

func (c *Content) ExtractTable(vertical, horizontal []float64) [][]string {
	return extractTable(c.chars, vertical, horizontal)
}

// wordLines groups words into visual lines ordered top to bottom.
func wordLines(words []Word) [][]Word {
	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines [][]Word
	var lineTop float64
	for _, w := range sorted {
		if len(lines) == 0 || w.Top-lineTop > yTolerance {
			lines = append(lines, []Word{w})
			lineTop = w.Top
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], w)
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X0 < line[j].X0 })
	}
	return lines
}

// joinLines renders words as text: spaces within a line, newlines between.
func joinLines(words []Word) string {
	lines := wordLines(words)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		parts := make([]string, len(line))
		for i, w := range line {
			parts[i] = w.Text
		}
		out = append(out, strings.Join(parts, " "))
	}
	return strings.Join(out, "\n")
}
