package pdfdoc

import (
	"math"
	"sort"
	"unicode"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/scoregest/internal/pdfpage"
)

const (
	// uprightEpsilon is the smallest horizontal font scale of upright text.
	uprightEpsilon = 1e-3
	// columnEpsilon groups rotated glyphs drawn on the same baseline.
	columnEpsilon = 0.5
	// defaultGlyphSize is used for rotated glyphs when no size can be derived.
	defaultGlyphSize = 8.0
	// maxParentDepth bounds the walk up the page tree.
	maxParentDepth = 32
)

// mediaBox is a page box in PDF user space (y grows upwards).
type mediaBox struct {
	llx, lly, urx, ury float64
}

var a4 = mediaBox{urx: 595, ury: 842}

func (b mediaBox) height() float64 { return b.ury - b.lly }

// bbox converts the media box to page space with the origin at the top left.
func (b mediaBox) bbox() pdfpage.BBox {
	return pdfpage.BBox{X0: b.llx, Top: 0, X1: b.urx, Bottom: b.height()}
}

// top maps a user-space y to a page-space vertical coordinate.
func (b mediaBox) top(y float64) float64 { return b.ury - y }

// readMediaBox finds the page's media box, inherited from the page tree
// when absent on the page itself.
func readMediaBox(v pdf.Value) mediaBox {
	for depth := 0; !v.IsNull() && depth < maxParentDepth; depth++ {
		mb := v.Key("MediaBox")
		if mb.Kind() == pdf.Array && mb.Len() == 4 {
			x0, y0 := mb.Index(0).Float64(), mb.Index(1).Float64()
			x1, y1 := mb.Index(2).Float64(), mb.Index(3).Float64()
			box := mediaBox{
				llx: math.Min(x0, x1),
				lly: math.Min(y0, y1),
				urx: math.Max(x0, x1),
				ury: math.Max(y0, y1),
			}
			if box.height() > 0 {
				return box
			}
		}
		v = v.Key("Parent")
	}
	return a4
}

// convertText turns backend glyphs into page-space chars. Upright glyphs map
// one to one; consecutive rotated glyphs on one baseline are collapsed into
// a single token read top to bottom, which is how vertical header labels
// such as "Info" come out as "ofnI". Combining marks are folded into the
// preceding glyph.
func convertText(texts []pdf.Text, box mediaBox) []pdfpage.Char {
	var out []pdfpage.Char
	var run []pdf.Text
	lastSize := defaultGlyphSize

	flush := func() {
		if len(run) > 0 {
			out = append(out, mergeRotated(run, box, lastSize))
			run = run[:0]
		}
	}

	for _, t := range texts {
		if t.S == "" || t.S == "\n" || t.S == "\r" {
			continue
		}
		if math.Abs(t.FontSize) < uprightEpsilon {
			if len(run) > 0 && math.Abs(run[len(run)-1].X-t.X) > columnEpsilon {
				flush()
			}
			run = append(run, t)
			continue
		}
		flush()

		if r := []rune(t.S); len(r) == 1 && unicode.Is(unicode.Mn, r[0]) && len(out) > 0 && out[len(out)-1].Upright {
			prev := &out[len(out)-1]
			prev.Text = norm.NFC.String(prev.Text + t.S)
			continue
		}

		size := math.Abs(t.FontSize)
		lastSize = size
		width := t.W
		if width <= 0 {
			width = size / 2
		}
		out = append(out, pdfpage.Char{
			Text:    norm.NFC.String(t.S),
			X0:      t.X,
			X1:      t.X + width,
			Top:     box.top(t.Y + size),
			Bottom:  box.top(t.Y),
			Upright: true,
		})
	}
	flush()
	return out
}

// mergeRotated collapses a run of rotated glyphs. The glyph size is derived
// from the baseline step between glyphs, or fallback for a single glyph.
func mergeRotated(run []pdf.Text, box mediaBox, fallback float64) pdfpage.Char {
	sorted := make([]pdf.Text, len(run))
	copy(sorted, run)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	minY, maxY := sorted[len(sorted)-1].Y, sorted[0].Y
	size := fallback
	if len(sorted) > 1 && maxY > minY {
		size = (maxY - minY) / float64(len(sorted)-1)
	}

	var text []rune
	for _, t := range sorted {
		text = append(text, []rune(t.S)...)
	}
	x := sorted[0].X
	return pdfpage.Char{
		Text:   norm.NFC.String(string(text)),
		X0:     x - size,
		X1:     x,
		Top:    box.top(maxY + size),
		Bottom: box.top(minY),
	}
}

// convertRects maps rectangles to page space and stamps their document offset.
func convertRects(rects []pdf.Rect, box mediaBox, offset float64) []pdfpage.Rect {
	out := make([]pdfpage.Rect, 0, len(rects))
	for _, r := range rects {
		x0, x1 := math.Min(r.Min.X, r.Max.X), math.Max(r.Min.X, r.Max.X)
		y0, y1 := math.Min(r.Min.Y, r.Max.Y), math.Max(r.Min.Y, r.Max.Y)
		top := box.top(y1)
		out = append(out, pdfpage.Rect{
			X0:     x0,
			X1:     x1,
			Top:    top,
			Bottom: box.top(y0),
			DocTop: offset + top,
		})
	}
	return out
}
