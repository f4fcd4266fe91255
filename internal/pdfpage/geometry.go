package pdfpage

import "math"

// BBox is a page-space box. Vertical coordinates grow downwards from the top
// of the page, the way the score-sheet layout is described.
type BBox struct {
	X0     float64 `json:"x0"`
	Top    float64 `json:"top"`
	X1     float64 `json:"x1"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether the point lies inside the box, edges included.
func (b BBox) Contains(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Top && y <= b.Bottom
}

// Intersect returns the overlap of two boxes and whether they overlap at all.
func (b BBox) Intersect(o BBox) (BBox, bool) {
	out := BBox{
		X0:     math.Max(b.X0, o.X0),
		Top:    math.Max(b.Top, o.Top),
		X1:     math.Min(b.X1, o.X1),
		Bottom: math.Min(b.Bottom, o.Bottom),
	}
	if out.X0 > out.X1 || out.Top > out.Bottom {
		return BBox{}, false
	}
	return out, true
}

// Union returns the smallest box covering both boxes.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0:     math.Min(b.X0, o.X0),
		Top:    math.Min(b.Top, o.Top),
		X1:     math.Max(b.X1, o.X1),
		Bottom: math.Max(b.Bottom, o.Bottom),
	}
}

// Char is one positioned glyph, or a run of rotated glyphs collapsed into a
// single token by the backend.
type Char struct {
	Text    string
	X0      float64
	X1      float64
	Top     float64
	Bottom  float64
	Upright bool
}

func (c Char) BBox() BBox {
	return BBox{X0: c.X0, Top: c.Top, X1: c.X1, Bottom: c.Bottom}
}

func (c Char) center() (float64, float64) {
	return (c.X0 + c.X1) / 2, (c.Top + c.Bottom) / 2
}

// Word is a run of glyphs on one line with no whitespace or gap between them.
type Word struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Rect is a rectangle primitive drawn on the page. DocTop is the absolute
// vertical offset within the whole document.
type Rect struct {
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	DocTop float64 `json:"doctop"`
}

func (r Rect) BBox() BBox {
	return BBox{X0: r.X0, Top: r.Top, X1: r.X1, Bottom: r.Bottom}
}
