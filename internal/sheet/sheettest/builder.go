// Package sheettest draws synthetic judges-details pages for tests.
package sheettest

import (
	"slices"

	"github.com/dgallion1/scoregest/internal/pdfpage"
)

// Glyph size used by every fixture.
const (
	GlyphWidth  = 4.0
	GlyphHeight = 6.0
)

const (
	left  = 20.0
	right = 580.0
	rowH  = 10.0
)

// Element is one printed element row; empty strings are left blank.
type Element struct {
	Num, Desc, Info, Base, Credit, GOE string
	Judges                             [9]string
	Ref, Panel                         string
}

// Component is one printed program component row.
type Component struct {
	Desc, Factor string
	Judges       [9]string
	Ref, Panel   string
}

// Sheet describes one score sheet.
type Sheet struct {
	// Header holds rank, name, nation, starting number, segment, element,
	// component and deductions cells.
	Header          [8]string
	Elements        []Element
	ElementsTotal   Element
	Components      []Component
	ComponentsTotal string
	// DropLabels lists header labels that are not drawn.
	DropLabels []string
}

// DefaultSheet returns a consistent sheet: five elements whose base values
// sum to 12.34 and panel scores to 12.70, and five components factored 1.60.
func DefaultSheet() Sheet {
	marks := func(v string) [9]string {
		var m [9]string
		for i := range m {
			m[i] = v
		}
		m[8] = "-"
		return m
	}
	comp := func(desc, panel string) Component {
		return Component{Desc: desc, Factor: "1.60", Judges: marks("6.00"), Panel: panel}
	}
	return Sheet{
		Header: [8]string{"1", "John DOE", "FRA", "3", "45.67", "23.45", "23.22", "-1.00"},
		Elements: []Element{
			{Num: "1", Desc: "2A", Base: "1.10", GOE: "0.40", Judges: marks("1"), Panel: "1.50"},
			{Num: "2", Desc: "3T+2T", Info: "<", Base: "2.20", GOE: "0.30", Judges: marks("1"), Panel: "2.50"},
			{Num: "3", Desc: "FCSp4", Base: "3.30", GOE: "0.20", Judges: marks("0"), Panel: "3.50"},
			{Num: "4", Desc: "3Lz", Base: "4.40", Credit: "x", GOE: "-0.40", Judges: marks("-1"), Panel: "4.00"},
			{Num: "5", Desc: "StSq2", Base: "1.34", GOE: "-0.14", Judges: marks("0"), Panel: "1.20"},
		},
		ElementsTotal: Element{Base: "12.34", Panel: "12.70"},
		Components: []Component{
			comp("Skating Skills", "6.00"),
			comp("Transitions", "5.75"),
			comp("Performance", "6.25"),
			comp("Composition", "6.00"),
			comp("Interpretation of the Music", "6.25"),
		},
		ComponentsTotal: "48.40",
	}
}

type canvas struct {
	chars []pdfpage.Char
	rects []pdfpage.Rect
}

func (c *canvas) text(s string, x, top float64) {
	if s == "" {
		return
	}
	for _, r := range s {
		c.chars = append(c.chars, pdfpage.Char{
			Text:    string(r),
			X0:      x,
			X1:      x + GlyphWidth,
			Top:     top,
			Bottom:  top + GlyphHeight,
			Upright: true,
		})
		x += GlyphWidth
	}
}

func (c *canvas) rect(top, bottom float64) pdfpage.Rect {
	r := pdfpage.Rect{X0: left, X1: right, Top: top, Bottom: bottom, DocTop: top}
	c.rects = append(c.rects, r)
	return r
}

func judgeX(i int) float64 { return 200 + 25*float64(i) }

// Page draws a judges-details page titled program with the given sheets
// stacked top to bottom. An empty program omits the title line.
func Page(program string, sheets ...Sheet) *pdfpage.Content {
	c := &canvas{}
	if program != "" {
		c.text(program+" JUDGES DETAILS PER SKATER", left, 20)
	}
	y := 60.0
	for _, s := range sheets {
		y = c.sheet(s, y) + 20
	}
	return pdfpage.NewContent(pdfpage.BBox{X1: 600, Bottom: y + 20}, c.chars, c.rects)
}

// Plain draws a page with the given text lines and no rectangles.
func Plain(lines ...string) *pdfpage.Content {
	c := &canvas{}
	for i, l := range lines {
		c.text(l, left, 20+rowH*float64(i))
	}
	return pdfpage.NewContent(pdfpage.BBox{X1: 600, Bottom: 800}, c.chars, nil)
}

// sheet draws s from y and returns the bottom of its last rectangle.
func (c *canvas) sheet(s Sheet, y float64) float64 {
	label := func(text string, x, top float64) {
		if !slices.Contains(s.DropLabels, text) {
			c.text(text, x, top)
		}
	}

	// Header.
	c.rect(y, y+40)
	for _, l := range []struct {
		text string
		x    float64
	}{
		{"Rank", 22}, {"Name", 60}, {"Nation", 200}, {"Starting", 240},
		{"Segment", 300}, {"Element", 360}, {"Program", 420}, {"Deductions", 490},
	} {
		label(l.text, l.x, y+5)
	}
	c.text("Number", 240, y+13)
	for _, x := range []float64{300, 360, 420} {
		label("Score", x, y+13)
	}
	for i, x := range []float64{25, 62, 202, 245, 305, 365, 425, 495} {
		c.text(s.Header[i], x, y+25)
	}

	// Elements, then components inside the same rectangle.
	top := y + 50
	c.text("#", 22, top+10)
	c.text("Executed", 40, top+10)
	c.text("ofnI", 110, top+10)
	c.text("Base", 130, top+10)
	c.text("GOE", 170, top+10)
	for i := 0; i < 9; i++ {
		c.text("J"+string(rune('1'+i)), judgeX(i), top+10)
	}
	c.text("Ref", 430, top+10)
	c.text("Scores", 460, top+10)
	c.text("Elements", 40, top+18)
	c.text("Value", 130, top+18)

	row := top + 30
	for _, e := range append(slices.Clone(s.Elements), s.ElementsTotal) {
		c.text(e.Num, 24, row)
		c.text(e.Desc, 40, row)
		c.text(e.Info, 110, row)
		c.text(e.Base, 130, row)
		c.text(e.Credit, 163, row)
		c.text(e.GOE, 172, row)
		for i, m := range e.Judges {
			c.text(m, judgeX(i)-4, row)
		}
		c.text(e.Ref, 430, row)
		c.text(e.Panel, 462, row)
		row += rowH
	}

	row += rowH
	c.text("Program", 22, row)
	c.text("Components", 54, row)
	c.text("Factor", 150, row)
	row += rowH
	for _, p := range s.Components {
		c.text(p.Desc, 22, row)
		c.text(p.Factor, 150, row)
		for i, m := range p.Judges {
			c.text(m, judgeX(i)-4, row)
		}
		c.text(p.Ref, 430, row)
		c.text(p.Panel, 462, row)
		row += rowH
	}
	c.text("Program Components Score", 22, row)
	c.text(s.ComponentsTotal, 462, row)
	bottom := row + 2*rowH
	c.rect(top, bottom)

	return c.rect(bottom+5, bottom+20).Bottom
}
