// Package protocol drives score-sheet extraction over the pages of a judging
// protocol PDF. Every page gets an outcome; a failing page is reported and
// skipped, never fatal for the document.
package protocol

import (
	"errors"
	"strings"
)

// PageStatus is the outcome of processing one page.
type PageStatus string

const (
	StatusRecognized    PageStatus = "recognized"
	StatusNotScoreSheet PageStatus = "not_score_sheet"
	StatusUnreadable    PageStatus = "unreadable"
	StatusEmpty         PageStatus = "empty"
	StatusFailed        PageStatus = "failed"
)

// ErrNoText marks a page whose text layer is empty, typically a scanned or
// graphical cover page.
var ErrNoText = errors.New("page has no text")

// Classify reports whether text belongs to a score-sheet page and, if so,
// returns the program name: the first line with the marker removed.
func Classify(text, marker string) (program string, ok bool) {
	if !strings.Contains(text, marker) {
		return "", false
	}
	first, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(strings.Replace(first, marker, "", 1)), true
}
