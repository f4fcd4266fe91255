// Package layout turns positioned words and glyphs into column and row
// boundaries. Everything here is a pure function of its inputs so a template
// change only touches the label and margin tables, never the control flow.
package layout

import (
	"fmt"
	"sort"

	"github.com/dgallion1/scoregest/internal/pdfpage"
)

// MissingLabelError reports a label that does not occur in a region.
type MissingLabelError struct {
	Label string
}

func (e *MissingLabelError) Error() string {
	return fmt.Sprintf("label %q not found", e.Label)
}

// FindWord returns the first word, in reading order, whose text is exactly label.
func FindWord(words []pdfpage.Word, label string) (pdfpage.Word, bool) {
	for _, w := range words {
		if w.Text == label {
			return w, true
		}
	}
	return pdfpage.Word{}, false
}

// LocateBoundaries returns one boundary per label: the left edge of the
// label's first occurrence minus margin. Order follows labels.
func LocateBoundaries(words []pdfpage.Word, labels []string, margin float64) ([]float64, error) {
	out := make([]float64, len(labels))
	for i, label := range labels {
		w, ok := FindWord(words, label)
		if !ok {
			return nil, &MissingLabelError{Label: label}
		}
		out[i] = w.X0 - margin
	}
	return out, nil
}

// ColumnLines turns label boundaries into vertical ruling lines. The first
// label's column starts at the region's left edge; right closes the last one.
func ColumnLines(boundaries []float64, left, right float64) []float64 {
	lines := make([]float64, 0, len(boundaries)+1)
	lines = append(lines, left)
	if len(boundaries) > 1 {
		lines = append(lines, boundaries[1:]...)
	}
	return append(lines, right)
}

// ClusterTops groups glyphs whose top coordinates lie within tolerance of
// each other and returns the smallest top of every group, ascending. With a
// zero tolerance only identical tops share a row.
func ClusterTops(chars []pdfpage.Char, tolerance float64) []float64 {
	if len(chars) == 0 {
		return nil
	}
	tops := make([]float64, len(chars))
	for i, ch := range chars {
		tops[i] = ch.Top
	}
	sort.Float64s(tops)

	out := []float64{tops[0]}
	last := tops[0]
	for _, v := range tops[1:] {
		if v-last > tolerance {
			out = append(out, v)
		}
		last = v
	}
	return out
}
