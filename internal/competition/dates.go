package competition

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day-first format used on French results pages.
const DateLayout = "02/01/2006"

// ErrUnknownDateShape is returned for a line that is not a date range.
var ErrUnknownDateShape = errors.New("unknown date shape")

// DateShape names the token layout a date range was written in.
type DateShape int

const (
	ShapeRange     DateShape = iota + 1 // "d1 - d2"
	ShapeOpenStart                      // "- d1"
	ShapeOpenEnd                        // "d1 -"
	ShapeSingle                         // "d1"
)

func (s DateShape) String() string {
	switch s {
	case ShapeRange:
		return "range"
	case ShapeOpenStart:
		return "open_start"
	case ShapeOpenEnd:
		return "open_end"
	case ShapeSingle:
		return "single"
	}
	return "unknown"
}

// DateRange is a parsed competition date line.
type DateRange struct {
	Start time.Time
	End   time.Time
	Shape DateShape
}

// ParseDateRange parses a date line. A line with one date is a one-day
// competition: Start and End are equal.
func ParseDateRange(line string) (DateRange, error) {
	tokens := strings.Fields(line)

	var shape DateShape
	var first, second string
	switch {
	case len(tokens) == 3 && tokens[1] == "-":
		shape, first, second = ShapeRange, tokens[0], tokens[2]
	case len(tokens) == 2 && tokens[0] == "-":
		shape, first = ShapeOpenStart, tokens[1]
	case len(tokens) == 2 && tokens[1] == "-":
		shape, first = ShapeOpenEnd, tokens[0]
	case len(tokens) == 1 && tokens[0] != "-":
		shape, first = ShapeSingle, tokens[0]
	default:
		return DateRange{}, fmt.Errorf("%w: %q", ErrUnknownDateShape, line)
	}

	start, err := time.Parse(DateLayout, first)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: %q: %v", ErrUnknownDateShape, line, err)
	}
	out := DateRange{Start: start, End: start, Shape: shape}
	if shape == ShapeRange {
		end, err := time.Parse(DateLayout, second)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: %q: %v", ErrUnknownDateShape, line, err)
		}
		out.End = end
	}
	return out, nil
}
