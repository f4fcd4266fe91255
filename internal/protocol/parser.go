package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/scoregest/internal/metrics"
	"github.com/dgallion1/scoregest/internal/pdfdoc"
	"github.com/dgallion1/scoregest/internal/pdfpage"
	"github.com/dgallion1/scoregest/internal/sheet"
)

// Document is the paged input the parser walks.
type Document interface {
	Name() string
	NumPage() int
	Page(n int) pdfpage.Page
}

// PageOutcome records what happened to one page.
type PageOutcome struct {
	Page         int
	Status       PageStatus
	Program      string
	Performances int
	Err          error
}

// Result is the output for one PDF.
type Result struct {
	Performances []sheet.Record `json:"performances"`
	PDF          string         `json:"pdf"`
	Pages        []PageOutcome  `json:"-"`
}

// Recognized counts pages that produced performances.
func (r *Result) Recognized() int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == StatusRecognized {
			n++
		}
	}
	return n
}

// Skipped counts every other page.
func (r *Result) Skipped() int { return len(r.Pages) - r.Recognized() }

// Parser extracts performance records from protocol pages. It holds no
// per-document state and is safe for concurrent use as long as the progress
// writer is.
type Parser struct {
	tmpl     sheet.Template
	log      *slog.Logger
	metrics  *metrics.Manager
	progress io.Writer
}

// Option configures a Parser.
type Option func(*Parser)

// WithProgress writes the per-page progress indicator to w.
func WithProgress(w io.Writer) Option {
	return func(p *Parser) { p.progress = w }
}

// WithMetrics records page and sheet outcomes on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Parser) { p.metrics = m }
}

func NewParser(tmpl sheet.Template, log *slog.Logger, opts ...Option) *Parser {
	p := &Parser{tmpl: tmpl, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParsePage processes a single page. Records are returned only for a fully
// successful page: one failing sheet discards the whole page.
func (p *Parser) ParsePage(page pdfpage.Page, num int, pctx sheet.ParseContext) ([]sheet.Record, PageOutcome) {
	out := PageOutcome{Page: num}

	text, err := page.ExtractText()
	if err != nil {
		out.Status, out.Err = StatusUnreadable, err
		return nil, out
	}
	if strings.TrimSpace(text) == "" {
		out.Status, out.Err = StatusUnreadable, ErrNoText
		return nil, out
	}

	program, ok := Classify(text, p.tmpl.Marker)
	if !ok {
		out.Status = StatusNotScoreSheet
		return nil, out
	}
	out.Program = program

	regions, err := sheet.Locate(page.Rects())
	if err != nil {
		out.Err = err
		out.Status = StatusFailed
		if errors.Is(err, sheet.ErrEmptyResults) {
			out.Status = StatusEmpty
		}
		return nil, out
	}

	sheets := make([]sheet.Sheet, 0, len(regions))
	for i, region := range regions {
		s, err := sheet.Parse(page, region, p.tmpl)
		if err != nil {
			out.Status, out.Err = StatusFailed, fmt.Errorf("sheet %d: %w", i+1, err)
			return nil, out
		}
		sheets = append(sheets, s)
	}

	records := make([]sheet.Record, 0, len(sheets))
	for _, s := range sheets {
		records = append(records, sheet.Assemble(s, program, pctx))
	}
	out.Status = StatusRecognized
	out.Performances = len(records)
	return records, out
}

// ParseDocument walks every page in order. It only fails when ctx is done;
// page failures are logged and recorded in the result.
func (p *Parser) ParseDocument(ctx context.Context, doc Document, pctx sheet.ParseContext) (*Result, error) {
	start := time.Now()
	log := p.log.With("pdf", doc.Name())
	res := &Result{PDF: doc.Name(), Performances: []sheet.Record{}}

	for n := 1; n <= doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.printf("\nPage %03d: ", n)

		records, outcome := p.ParsePage(doc.Page(n), n, pctx)
		res.Pages = append(res.Pages, outcome)
		res.Performances = append(res.Performances, records...)
		p.report(log, outcome)
	}

	p.printf("\nrecognized=%d skipped=%d\n", res.Recognized(), res.Skipped())
	p.metrics.ObserveParse(time.Since(start))
	log.Info("parsed pdf",
		"pages", len(res.Pages),
		"recognized", res.Recognized(),
		"skipped", res.Skipped(),
		"performances", len(res.Performances),
	)
	return res, nil
}

// ParseFile opens path, parses it and closes it on every exit path.
func (p *Parser) ParseFile(ctx context.Context, path string, pctx sheet.ParseContext) (*Result, error) {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return p.ParseDocument(ctx, doc, pctx)
}

// ParseBytes parses an in-memory PDF.
func (p *Parser) ParseBytes(ctx context.Context, data []byte, name string, pctx sheet.ParseContext) (*Result, error) {
	doc, err := pdfdoc.OpenBytes(data, name)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return p.ParseDocument(ctx, doc, pctx)
}

func (p *Parser) report(log *slog.Logger, o PageOutcome) {
	p.metrics.RecordPage(string(o.Status))

	switch o.Status {
	case StatusRecognized:
		p.printf("+")
		p.metrics.RecordSheets(o.Performances)
	case StatusNotScoreSheet:
		p.printf("-")
	case StatusUnreadable:
		if errors.Is(o.Err, ErrNoText) {
			p.printf("*** CANNOT FIND ANY TEXT ***")
			log.Debug("page has no text", "page", o.Page)
		} else {
			p.printf("*** CANNOT READ ***")
			log.Warn("unreadable page", "page", o.Page, "error", o.Err)
		}
	case StatusEmpty:
		p.printf("*** CAN'T FIND PERFORMANCES ON PAGE ***")
		log.Warn("no performances on score-sheet page", "page", o.Page)
		p.metrics.RecordSheetFailure(sheet.Kind(o.Err))
	case StatusFailed:
		reason := sheet.Kind(o.Err)
		p.metrics.RecordSheetFailure(reason)
		if reason == "" {
			reason = o.Err.Error()
		}
		p.printf("*** FAILED: %s ***", reason)
		attrs := []any{"page", o.Page, "program", o.Program, "error", o.Err}
		var ce *sheet.ConsistencyError
		if errors.As(o.Err, &ce) {
			attrs = append(attrs, "expected", ce.Expected, "actual", ce.Actual, "diff", ce.Diff())
		}
		log.Warn("score-sheet page skipped", attrs...)
	}
}

func (p *Parser) printf(format string, args ...any) {
	if p.progress != nil {
		fmt.Fprintf(p.progress, format, args...)
	}
}
