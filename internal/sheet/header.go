package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/scoregest/internal/layout"
	"github.com/dgallion1/scoregest/internal/pdfpage"
)

// ParseHeader reads the single data row of a sheet's header rectangle.
func ParseHeader(page pdfpage.Page, rect pdfpage.Rect, hl HeaderLayout) (HeaderFields, error) {
	cropped := page.Crop(rect.BBox())
	words := cropped.Words()

	bounds, err := layout.LocateBoundaries(words, hl.Labels, hl.Margin)
	if err != nil {
		return HeaderFields{}, &HeaderParseError{Kind: MissingLabel, Err: err}
	}
	score, ok := layout.FindWord(words, hl.ScoreLabel)
	if !ok {
		return HeaderFields{}, &HeaderParseError{Kind: MissingLabel, Err: &layout.MissingLabelError{Label: hl.ScoreLabel}}
	}

	vertical := layout.ColumnLines(bounds, rect.X0, rect.X1)
	horizontal := []float64{score.Bottom + hl.BandMargin, rect.Bottom}
	rows := cropped.ExtractTable(vertical, horizontal)
	if len(rows) != 1 {
		return HeaderFields{}, &HeaderParseError{
			Kind:   RowCountMismatch,
			Detail: fmt.Sprintf("expected 1 row, got %d", len(rows)),
		}
	}
	return headerFromCells(rows[0], hl.BonusSuffix)
}

// headerFromCells maps the cells of a header row:
// rank, name, nation, starting number, segment, element, component, deductions.
func headerFromCells(cells []string, bonusSuffix string) (HeaderFields, error) {
	if len(cells) < headerColumns {
		return HeaderFields{}, &HeaderParseError{
			Kind:   RowCountMismatch,
			Detail: fmt.Sprintf("expected %d cells, got %d", headerColumns, len(cells)),
		}
	}

	var h HeaderFields
	var err error
	if h.Rank, err = headerInt(cells[0], "rank"); err != nil {
		return HeaderFields{}, err
	}
	h.Name = strings.Join(strings.Fields(cells[1]), " ")
	h.Nation = strings.TrimSpace(cells[2])
	if h.StartingNumber, err = headerInt(cells[3], "starting_number"); err != nil {
		return HeaderFields{}, err
	}

	totals := []struct {
		dst    *float64
		column string
	}{
		{&h.TotalSegmentScore, "total_segment_score"},
		{&h.TotalElementScore, "total_element_score"},
		{&h.TotalComponentScore, "total_component_score"},
	}
	for i, t := range totals {
		if *t.dst, err = headerFloat(cells[4+i], t.column); err != nil {
			return HeaderFields{}, err
		}
	}

	h.TotalDeductions, h.Bonifications, err = parseDeductions(cells[7], bonusSuffix)
	if err != nil {
		return HeaderFields{}, err
	}
	return h, nil
}

// parseDeductions reads the deductions cell. A trailing bonus suffix marks
// the value as a bonification rather than a deduction.
func parseDeductions(cell, bonusSuffix string) (float64, bool, error) {
	cell = strings.TrimSpace(cell)
	v, err := parseFloat(cell)
	if err == nil {
		return v, false, nil
	}
	if bonusSuffix != "" && strings.HasSuffix(cell, bonusSuffix) {
		v, berr := parseFloat(strings.TrimSuffix(cell, bonusSuffix))
		if berr == nil {
			return v, true, nil
		}
	}
	return 0, false, &HeaderParseError{Kind: InvalidNumber, Detail: "total_deductions", Err: err}
}

func headerInt(cell, column string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return 0, &HeaderParseError{Kind: InvalidNumber, Detail: column, Err: err}
	}
	return v, nil
}

func headerFloat(cell, column string) (float64, error) {
	v, err := parseFloat(cell)
	if err != nil {
		return 0, &HeaderParseError{Kind: InvalidNumber, Detail: column, Err: err}
	}
	return v, nil
}
