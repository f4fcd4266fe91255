package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// nullCell reports whether a cell holds one of the placeholder values the
// protocols print for "no value".
func nullCell(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "-"
}

func optString(s string) *string {
	if nullCell(s) {
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

func optFloat(s string) (*float64, error) {
	if nullCell(s) {
		return nil, nil
	}
	v, err := parseFloat(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// reqFloat parses a required numeric cell of the given column.
func reqFloat(s, column string) (float64, error) {
	v, err := optFloat(s)
	if err != nil {
		return 0, &StructuralError{Kind: InvalidNumber, Detail: column, Err: err}
	}
	if v == nil {
		return 0, &StructuralError{Kind: InvalidNumber, Detail: column + " is empty"}
	}
	return *v, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseMarks(cells []string) (Marks, error) {
	var m Marks
	for i := range m {
		v, err := optFloat(cells[i])
		if err != nil {
			return m, &StructuralError{Kind: InvalidNumber, Detail: fmt.Sprintf("J%d", i+1), Err: err}
		}
		m[i] = v
	}
	return m, nil
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
