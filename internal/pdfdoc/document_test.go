package pdfdoc

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/scoregest/internal/pdfdoc/pdftest"
)

const (
	helloPage   = "BT /F1 10 Tf 1 0 0 1 50 700 Tm (Hello World) Tj ET 20 100 200 50 re f"
	rotatedPage = "BT /F1 10 Tf 0 1 -1 0 300 500 Tm (Info) Tj ET"
	brokenPage  = "1 2 re"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestOpenBytes_TextAndRects(t *testing.T) {
	doc, err := OpenBytes(pdftest.Build(helloPage, helloPage), "two.pdf")
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer doc.Close()

	if doc.NumPage() != 2 {
		t.Fatalf("expected 2 pages, got %d", doc.NumPage())
	}
	if doc.Name() != "two.pdf" {
		t.Errorf("expected name two.pdf, got %q", doc.Name())
	}

	p := doc.Page(1)
	text, err := p.ExtractText()
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "Hello World" {
		t.Errorf("expected %q, got %q", "Hello World", text)
	}

	words := p.Words()
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	hello := words[0]
	if !almost(hello.X0, 50) || !almost(hello.X1, 75) || !almost(hello.Top, 90) || !almost(hello.Bottom, 100) {
		t.Errorf("unexpected Hello geometry %+v", hello)
	}

	rects := p.Rects()
	if len(rects) != 1 {
		t.Fatalf("expected 1 rect, got %d", len(rects))
	}
	r := rects[0]
	if !almost(r.X0, 20) || !almost(r.X1, 220) || !almost(r.Top, 650) || !almost(r.Bottom, 700) || !almost(r.DocTop, 650) {
		t.Errorf("unexpected rect %+v", r)
	}

	second := doc.Page(2).Rects()
	if len(second) != 1 || !almost(second[0].DocTop, 800+650) {
		t.Errorf("expected page 2 rect offset by page 1 height, got %+v", second)
	}

	if bb := p.BBox(); !almost(bb.X1, 600) || !almost(bb.Bottom, 800) {
		t.Errorf("unexpected page bbox %+v", bb)
	}
}

func TestRotatedGlyphsMerge(t *testing.T) {
	doc, err := OpenBytes(pdftest.Build(rotatedPage), "rotated.pdf")
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer doc.Close()

	chars := doc.Page(1).Chars()
	if len(chars) != 1 {
		t.Fatalf("expected one merged token, got %d chars", len(chars))
	}
	c := chars[0]
	if c.Text != "ofnI" {
		t.Errorf("expected ofnI, got %q", c.Text)
	}
	if c.Upright {
		t.Error("expected rotated token to be marked non-upright")
	}
	if !almost(c.X1, 300) || !almost(c.Bottom, 300) || !almost(c.Top, 280) {
		t.Errorf("unexpected token geometry %+v", c)
	}
}

func TestUnreadablePage(t *testing.T) {
	doc, err := OpenBytes(pdftest.Build(brokenPage, helloPage), "broken.pdf")
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer doc.Close()

	bad := doc.Page(1)
	if _, err := bad.ExtractText(); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
	if bad.Words() != nil || bad.Rects() != nil {
		t.Error("expected no content from an unreadable page")
	}
	if got := bad.Crop(bad.BBox()).Chars(); len(got) != 0 {
		t.Errorf("expected empty crop, got %d chars", len(got))
	}

	if _, err := doc.Page(2).ExtractText(); err != nil {
		t.Errorf("next page should still decode: %v", err)
	}
}

func TestPageOutOfRange(t *testing.T) {
	doc, err := OpenBytes(pdftest.Build(helloPage), "one.pdf")
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer doc.Close()

	if _, err := doc.Page(5).ExtractText(); !errors.Is(err, ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}

func TestOpen_FileLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.pdf")
	if err := os.WriteFile(path, pdftest.Build(helloPage), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.Name() != "hello.pdf" {
		t.Errorf("expected base name, got %q", doc.Name())
	}
	if err := doc.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestOpen_NotAPDF(t *testing.T) {
	if _, err := OpenBytes(bytes.Repeat([]byte("x"), 200), "junk.pdf"); err == nil {
		t.Error("expected error for non-PDF input")
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
