// Package sheet reconstructs the tables of a judges-details score sheet
// from positioned page content: the header row, the elements block and the
// program components, each checked against its printed totals.
package sheet

import (
	"fmt"
	"sort"

	"github.com/dgallion1/scoregest/internal/pdfpage"
)

// Locate sorts a page's rectangles by document offset and partitions them
// into consecutive triples, one per score sheet.
func Locate(rects []pdfpage.Rect) ([]Region, error) {
	if len(rects) == 0 {
		return nil, ErrEmptyResults
	}
	if len(rects)%3 != 0 {
		return nil, &StructuralError{
			Kind:   NotMultipleOfThree,
			Detail: fmt.Sprintf("%d rectangles", len(rects)),
		}
	}

	sorted := make([]pdfpage.Rect, len(rects))
	copy(sorted, rects)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DocTop < sorted[j].DocTop })

	regions := make([]Region, 0, len(sorted)/3)
	for i := 0; i < len(sorted); i += 3 {
		regions = append(regions, Region{
			Header:     sorted[i],
			Elements:   sorted[i+1],
			Components: sorted[i+2],
		})
	}
	return regions, nil
}
