package sheet

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/scoregest/internal/layout"
	"github.com/dgallion1/scoregest/internal/pdfpage"
)

// elementColumns is the column count once the credit-flag boundary is added.
const elementColumns = elementLabels + 1

// ElementsTable is the parsed elements block: the detail rows in printed
// order followed by the total row.
type ElementsTable struct {
	Rows []ElementRow
	// BonusCorrection is the printed panel total minus the sum of the
	// element panel scores. It is only non-zero on sheets with bonifications.
	BonusCorrection float64
}

// Total returns the aggregate row.
func (t ElementsTable) Total() ElementRow {
	return t.Rows[len(t.Rows)-1]
}

// ByNum indexes the rows by element number; the aggregate row is under TotalKey.
func (t ElementsTable) ByNum() map[string]ElementRow {
	out := make(map[string]ElementRow, len(t.Rows))
	for _, r := range t.Rows {
		out[r.ElementNum] = r
	}
	return out
}

// ParseElements reads the elements block of rect and checks its totals.
// When bonifications is set the panel-score check is replaced by computing
// the bonus correction.
func ParseElements(page pdfpage.Page, rect pdfpage.Rect, el ElementsLayout, bonifications bool) (ElementsTable, error) {
	cropped := page.Crop(rect.BBox())
	words := cropped.Words()

	bounds, err := layout.LocateBoundaries(words, el.Labels, el.Margin)
	if err != nil {
		return ElementsTable{}, &StructuralError{Kind: MissingSectionLabel, Detail: "elements columns", Err: err}
	}
	vertical := layout.ColumnLines(bounds, rect.X0, rect.X1)
	if k := slices.Index(el.Labels, el.CreditFlagLabel); k > 0 {
		vertical = append(vertical, bounds[k]+el.CreditFlagOffset)
	}

	start, ok := layout.FindWord(words, el.StartLabel)
	if !ok {
		return ElementsTable{}, &StructuralError{Kind: MissingSectionLabel, Err: &layout.MissingLabelError{Label: el.StartLabel}}
	}
	end, ok := layout.FindWord(words, el.EndLabel)
	if !ok {
		return ElementsTable{}, &StructuralError{Kind: MissingSectionLabel, Err: &layout.MissingLabelError{Label: el.EndLabel}}
	}
	bandTop := start.Bottom + el.BandMargin
	bandBottom := end.Top - el.BandMargin

	band := cropped.Crop(pdfpage.BBox{X0: rect.X0, Top: bandTop, X1: rect.X1, Bottom: bandBottom})
	tops := layout.ClusterTops(band.Chars(), el.RowTolerance)
	if len(tops) == 0 {
		return ElementsTable{}, &StructuralError{Kind: EmptyTable, Detail: "elements"}
	}
	horizontal := append(tops, bandBottom)

	rows := cropped.ExtractTable(vertical, horizontal)
	return buildElements(rows, bonifications, el.Decimals)
}

func buildElements(rows [][]string, bonifications bool, decimals int) (ElementsTable, error) {
	if len(rows) == 0 {
		return ElementsTable{}, &StructuralError{Kind: EmptyTable, Detail: "elements"}
	}

	table := ElementsTable{Rows: make([]ElementRow, 0, len(rows))}
	for i, cells := range rows {
		row, err := elementFromCells(cells)
		if err != nil {
			return ElementsTable{}, fmt.Errorf("elements row %d: %w", i+1, err)
		}
		switch {
		case i == len(rows)-1:
			row.ElementNum = TotalKey
		case row.ElementNum == "":
			row.ElementNum = strconv.Itoa(i + 1)
		}
		table.Rows = append(table.Rows, row)
	}

	var baseSum, panelSum float64
	for _, r := range table.Rows[:len(table.Rows)-1] {
		baseSum += r.BaseValue
		panelSum += r.PanelScore
	}
	total := table.Total()

	if round(total.BaseValue-baseSum, decimals) != 0 {
		return ElementsTable{}, &ConsistencyError{Kind: BaseValueMismatch, Expected: total.BaseValue, Actual: baseSum}
	}
	diff := round(total.PanelScore-panelSum, decimals)
	if bonifications {
		table.BonusCorrection = diff
	} else if diff != 0 {
		return ElementsTable{}, &ConsistencyError{Kind: PanelScoreMismatch, Expected: total.PanelScore, Actual: panelSum}
	}
	return table, nil
}

// elementFromCells maps: #, executed element, info, base value, credit flag,
// GOE, J1..J9, ref, scores of panel.
func elementFromCells(cells []string) (ElementRow, error) {
	if len(cells) != elementColumns {
		return ElementRow{}, &StructuralError{
			Kind:   ColumnCountMismatch,
			Detail: fmt.Sprintf("expected %d cells, got %d", elementColumns, len(cells)),
		}
	}

	row := ElementRow{
		ElementNum:  strings.TrimSpace(cells[0]),
		Description: optString(cells[1]),
		InfoFlag:    optString(cells[2]),
		CreditFlag:  optString(cells[4]),
		Ref:         optString(cells[15]),
	}
	if nullCell(cells[0]) {
		row.ElementNum = ""
	}

	var err error
	if row.BaseValue, err = reqFloat(cells[3], "base_value"); err != nil {
		return ElementRow{}, err
	}
	if row.GOE, err = optFloat(cells[5]); err != nil {
		return ElementRow{}, &StructuralError{Kind: InvalidNumber, Detail: "goe", Err: err}
	}
	if row.Judges, err = parseMarks(cells[6:15]); err != nil {
		return ElementRow{}, err
	}
	if row.PanelScore, err = reqFloat(cells[16], "scores_of_panel"); err != nil {
		return ElementRow{}, err
	}
	return row, nil
}
