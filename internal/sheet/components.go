package sheet

import (
	"fmt"
	"math"
	"strings"

	"github.com/dgallion1/scoregest/internal/layout"
	"github.com/dgallion1/scoregest/internal/pdfpage"
)

// ComponentsTable holds the program components without their total row.
type ComponentsTable struct {
	Rows []ComponentRow
	// Total is the printed factored total, already checked against Rows.
	Total float64
}

// ByKey indexes the components by normalised key.
func (t ComponentsTable) ByKey() map[string]ComponentRow {
	out := make(map[string]ComponentRow, len(t.Rows))
	for _, r := range t.Rows {
		out[r.Key] = r
	}
	return out
}

// ParseComponents reads the program components printed in the lower part of
// rect, below the start label, and checks the factored total.
func ParseComponents(page pdfpage.Page, rect pdfpage.Rect, cl ComponentsLayout) (ComponentsTable, error) {
	cropped := page.Crop(rect.BBox())
	words := cropped.Words()

	bounds, err := layout.LocateBoundaries(words, cl.Labels, cl.Margin)
	if err != nil {
		return ComponentsTable{}, &StructuralError{Kind: MissingSectionLabel, Detail: "components columns", Err: err}
	}
	vertical := layout.ColumnLines(bounds, rect.X0, rect.X1)

	start, ok := layout.FindWord(words, cl.StartLabel)
	if !ok {
		return ComponentsTable{}, &StructuralError{Kind: MissingSectionLabel, Err: &layout.MissingLabelError{Label: cl.StartLabel}}
	}
	bandTop := start.Bottom + cl.BandMargin

	band := cropped.Crop(pdfpage.BBox{X0: rect.X0, Top: bandTop, X1: rect.X1, Bottom: rect.Bottom})
	tops := layout.ClusterTops(band.Chars(), cl.RowTolerance)
	if len(tops) == 0 {
		return ComponentsTable{}, &StructuralError{Kind: EmptyTable, Detail: "components"}
	}
	horizontal := append(tops, rect.Bottom)

	rows := cropped.ExtractTable(vertical, horizontal)
	return buildComponents(rows, cl.Tolerance)
}

func buildComponents(rows [][]string, tolerance float64) (ComponentsTable, error) {
	if len(rows) == 0 {
		return ComponentsTable{}, &StructuralError{Kind: EmptyTable, Detail: "components"}
	}
	for i, cells := range rows {
		if len(cells) != componentsColumns {
			return ComponentsTable{}, fmt.Errorf("components row %d: %w", i+1, &StructuralError{
				Kind:   ColumnCountMismatch,
				Detail: fmt.Sprintf("expected %d cells, got %d", componentsColumns, len(cells)),
			})
		}
	}

	last := rows[len(rows)-1]
	total, err := reqFloat(last[12], "scores_of_panel")
	if err != nil {
		return ComponentsTable{}, fmt.Errorf("components total row: %w", err)
	}

	table := ComponentsTable{Rows: make([]ComponentRow, 0, len(rows)-1), Total: total}
	var weighted float64
	for i, cells := range rows[:len(rows)-1] {
		row, err := componentFromCells(cells)
		if err != nil {
			return ComponentsTable{}, fmt.Errorf("components row %d: %w", i+1, err)
		}
		weighted += row.PanelScore * row.Factor
		table.Rows = append(table.Rows, row)
	}

	if math.Abs(weighted-total) >= tolerance {
		return ComponentsTable{}, &ConsistencyError{Kind: WeightedSumMismatch, Expected: total, Actual: weighted}
	}
	return table, nil
}

// componentFromCells maps: description, factor, J1..J9, ref, scores of panel.
func componentFromCells(cells []string) (ComponentRow, error) {
	desc := strings.Join(strings.Fields(cells[0]), " ")
	row := ComponentRow{
		Key:         ComponentKey(desc),
		Description: desc,
		Ref:         optString(cells[11]),
	}

	var err error
	if row.Factor, err = reqFloat(cells[1], "factor"); err != nil {
		return ComponentRow{}, err
	}
	if row.Judges, err = parseMarks(cells[2:11]); err != nil {
		return ComponentRow{}, err
	}
	if row.PanelScore, err = reqFloat(cells[12], "scores_of_panel"); err != nil {
		return ComponentRow{}, err
	}
	return row, nil
}
