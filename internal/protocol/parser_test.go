package protocol

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dgallion1/scoregest/internal/pdfpage"
	"github.com/dgallion1/scoregest/internal/sheet"
	"github.com/dgallion1/scoregest/internal/sheet/sheettest"
)

type fakeDoc struct {
	name  string
	pages []pdfpage.Page
}

func (d *fakeDoc) Name() string            { return d.name }
func (d *fakeDoc) NumPage() int            { return len(d.pages) }
func (d *fakeDoc) Page(n int) pdfpage.Page { return d.pages[n-1] }

// unreadablePage fails text extraction the way a corrupt content stream does.
type unreadablePage struct {
	*pdfpage.Content
}

func (unreadablePage) ExtractText() (string, error) {
	return "", errors.New("bad content stream")
}

func newTestParser(opts ...Option) *Parser {
	return NewParser(sheet.DefaultTemplate(), slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

var testContext = sheet.ParseContext{
	Season:      "2022-2023",
	Competition: "Trophée de France",
	City:        "Angers",
	Type:        "TdF",
	Start:       "2022-11-04",
	End:         "2022-11-06",
}

func badSheet() sheettest.Sheet {
	s := sheettest.DefaultSheet()
	s.ElementsTotal.Base = "12.30"
	return s
}

func TestClassify(t *testing.T) {
	const marker = "JUDGES DETAILS PER SKATER"
	tests := []struct {
		name    string
		text    string
		program string
		ok      bool
	}{
		{"score sheet", "Ladies Free Skating JUDGES DETAILS PER SKATER\nRank Name", "Ladies Free Skating", true},
		{"marker later", "Novice Men Short Program\nJUDGES DETAILS PER SKATER", "Novice Men Short Program", true},
		{"cover page", "Results\nCompetition Panel", "", false},
		{"case sensitive", "judges details per skater", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			program, ok := Classify(tc.text, marker)
			if ok != tc.ok || program != tc.program {
				t.Errorf("expected (%q, %v), got (%q, %v)", tc.program, tc.ok, program, ok)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	twoSheets := sheettest.Page("Ladies Free Skating", sheettest.DefaultSheet(), sheettest.DefaultSheet())
	extraRect := sheettest.Page("Ladies Free Skating", sheettest.DefaultSheet())
	extraRect = pdfpage.NewContent(extraRect.BBox(), extraRect.Chars(),
		append(extraRect.Rects(), pdfpage.Rect{X0: 0, X1: 10, Top: 700, Bottom: 710, DocTop: 700}))

	tests := []struct {
		name    string
		page    pdfpage.Page
		status  PageStatus
		records int
		target  error
	}{
		{"cover page", sheettest.Plain("Competition Results", "Entries"), StatusNotScoreSheet, 0, nil},
		{"no text", sheettest.Plain(), StatusUnreadable, 0, ErrNoText},
		{"unreadable", unreadablePage{sheettest.Plain("x")}, StatusUnreadable, 0, nil},
		{"marker without sheets", sheettest.Plain("Men JUDGES DETAILS PER SKATER"), StatusEmpty, 0, sheet.ErrEmptyResults},
		{"two sheets", twoSheets, StatusRecognized, 2, nil},
		{"one bad sheet", sheettest.Page("Ladies Free Skating", sheettest.DefaultSheet(), badSheet()),
			StatusFailed, 0, &sheet.ConsistencyError{Kind: sheet.BaseValueMismatch}},
		{"stray rectangle", extraRect, StatusFailed, 0, &sheet.StructuralError{Kind: sheet.NotMultipleOfThree}},
	}
	p := newTestParser()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records, outcome := p.ParsePage(tc.page, 7, testContext)
			if outcome.Status != tc.status {
				t.Fatalf("expected status %s, got %s (err %v)", tc.status, outcome.Status, outcome.Err)
			}
			if len(records) != tc.records || outcome.Performances != tc.records {
				t.Errorf("expected %d records, got %d (outcome %d)", tc.records, len(records), outcome.Performances)
			}
			if tc.target != nil && !errors.Is(outcome.Err, tc.target) {
				t.Errorf("expected error matching %v, got %v", tc.target, outcome.Err)
			}
			if tc.status == StatusNotScoreSheet && outcome.Err != nil {
				t.Errorf("a non score-sheet page is not an error, got %v", outcome.Err)
			}
			if outcome.Page != 7 {
				t.Errorf("expected page 7, got %d", outcome.Page)
			}
		})
	}
}

func TestParsePage_RecordsCarryContext(t *testing.T) {
	page := sheettest.Page("Ladies Free Skating", sheettest.DefaultSheet())
	records, outcome := newTestParser().ParsePage(page, 1, testContext)
	if outcome.Status != StatusRecognized {
		t.Fatalf("expected recognized page, got %s: %v", outcome.Status, outcome.Err)
	}
	md := records[0].Metadata
	if md.Program != "Ladies Free Skating" || outcome.Program != "Ladies Free Skating" {
		t.Errorf("unexpected program %q", md.Program)
	}
	if md.Competition != "Trophée de France" || md.Type != "TdF" || md.Start != "2022-11-04" {
		t.Errorf("context not merged: %+v", md)
	}
	if md.Name != "John DOE" || md.Rank != 1 {
		t.Errorf("unexpected header %+v", md.HeaderFields)
	}
}

func TestParseDocument(t *testing.T) {
	doc := &fakeDoc{
		name: "protocol.pdf",
		pages: []pdfpage.Page{
			sheettest.Plain("Competition Results"),
			sheettest.Page("Ladies Free Skating", sheettest.DefaultSheet()),
			unreadablePage{sheettest.Plain("x")},
			sheettest.Page("Men Free Skating", badSheet()),
		},
	}

	var progress bytes.Buffer
	res, err := newTestParser(WithProgress(&progress)).ParseDocument(context.Background(), doc, testContext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PDF != "protocol.pdf" {
		t.Errorf("expected pdf name, got %q", res.PDF)
	}
	if len(res.Performances) != 1 || res.Recognized() != 1 || res.Skipped() != 3 {
		t.Errorf("expected 1 performance, 1 recognized, 3 skipped; got %d, %d, %d",
			len(res.Performances), res.Recognized(), res.Skipped())
	}

	want := "\nPage 001: -" +
		"\nPage 002: +" +
		"\nPage 003: *** CANNOT READ ***" +
		"\nPage 004: *** FAILED: BaseValueMismatch ***" +
		"\nrecognized=1 skipped=3\n"
	if progress.String() != want {
		t.Errorf("unexpected progress output:\n%q\nwant\n%q", progress.String(), want)
	}
}

func TestParseDocument_EmptyDocument(t *testing.T) {
	res, err := newTestParser().ParseDocument(context.Background(), &fakeDoc{name: "empty.pdf"}, testContext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Performances == nil || len(res.Performances) != 0 {
		t.Errorf("expected empty, non-nil performances, got %v", res.Performances)
	}
}

func TestParseDocument_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := &fakeDoc{name: "a.pdf", pages: []pdfpage.Page{sheettest.Plain("x")}}
	if _, err := newTestParser().ParseDocument(ctx, doc, testContext); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
