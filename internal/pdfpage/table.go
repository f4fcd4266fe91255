package pdfpage

import "sort"

// lineEpsilon merges ruling lines that are closer than this.
const lineEpsilon = 1e-6

// extractTable builds the grid spanned by the explicit ruling lines and
// assigns every glyph to the cell containing its centre. Each row has
// len(vertical)-1 cells; empty cells are "".
func extractTable(chars []Char, vertical, horizontal []float64) [][]string {
	xs := normalizeLines(vertical)
	ys := normalizeLines(horizontal)
	if len(xs) < 2 || len(ys) < 2 {
		return nil
	}

	nRows, nCols := len(ys)-1, len(xs)-1
	cells := make([][][]Char, nRows)
	for r := range cells {
		cells[r] = make([][]Char, nCols)
	}

	for _, ch := range chars {
		x, y := ch.center()
		row := interval(ys, y)
		col := interval(xs, x)
		if row < 0 || col < 0 {
			continue
		}
		cells[row][col] = append(cells[row][col], ch)
	}

	out := make([][]string, nRows)
	for r := range cells {
		out[r] = make([]string, nCols)
		for c := range cells[r] {
			out[r][c] = cellText(cells[r][c])
		}
	}
	return out
}

// normalizeLines sorts the lines and drops duplicates.
func normalizeLines(lines []float64) []float64 {
	sorted := make([]float64, len(lines))
	copy(sorted, lines)
	sort.Float64s(sorted)

	out := sorted[:0]
	for _, v := range sorted {
		if len(out) > 0 && v-out[len(out)-1] < lineEpsilon {
			continue
		}
		out = append(out, v)
	}
	return out
}

// interval returns i such that lines[i] <= v < lines[i+1]; the last interval
// also includes its closing line. It returns -1 outside the grid.
func interval(lines []float64, v float64) int {
	last := len(lines) - 1
	if v < lines[0] || v > lines[last] {
		return -1
	}
	i := sort.SearchFloat64s(lines, v)
	switch {
	case i < len(lines) && lines[i] == v && i < last:
		return i
	case i == 0:
		return 0
	default:
		return i - 1
	}
}

func cellText(chars []Char) string {
	if len(chars) == 0 {
		return ""
	}
	return joinLines(extractWords(chars))
}
