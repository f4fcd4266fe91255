package pdfpage

import (
	"sort"
	"strings"
	"unicode"
)

// Tolerances used when grouping glyphs into words and lines.
const (
	xTolerance = 3.0
	yTolerance = 3.0
)

// extractWords groups glyphs into words: glyphs are clustered into lines by
// their top coordinate, then split on whitespace glyphs and horizontal gaps.
// Words come back top to bottom, left to right.
func extractWords(chars []Char) []Word {
	if len(chars) == 0 {
		return nil
	}

	sorted := make([]Char, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var words []Word
	for _, line := range charLines(sorted) {
		var cur []Char
		flush := func() {
			if len(cur) > 0 {
				words = append(words, mergeChars(cur))
				cur = cur[:0]
			}
		}
		for _, ch := range line {
			if isBlank(ch.Text) {
				flush()
				continue
			}
			if len(cur) > 0 && ch.X0 > cur[len(cur)-1].X1+xTolerance {
				flush()
			}
			cur = append(cur, ch)
		}
		flush()
	}
	return words
}

// charLines splits top-sorted glyphs into lines and orders each line by x.
func charLines(sorted []Char) [][]Char {
	var lines [][]Char
	var lineTop float64
	for _, ch := range sorted {
		if len(lines) == 0 || ch.Top-lineTop > yTolerance {
			lines = append(lines, []Char{ch})
			lineTop = ch.Top
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], ch)
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X0 < line[j].X0 })
	}
	return lines
}

func mergeChars(chars []Char) Word {
	var sb strings.Builder
	box := chars[0].BBox()
	for _, ch := range chars {
		sb.WriteString(ch.Text)
		box = box.Union(ch.BBox())
	}
	return Word{
		Text:   sb.String(),
		X0:     box.X0,
		X1:     box.X1,
		Top:    box.Top,
		Bottom: box.Bottom,
	}
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
