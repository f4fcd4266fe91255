// Package pdfdoc binds github.com/ledongthuc/pdf to the pdfpage model.
//
// Pages are decoded lazily. The backend panics on some malformed content
// streams; those panics are recovered and reported as ErrUnreadable so a
// single bad page never takes the whole document down.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"github.com/dgallion1/scoregest/internal/pdfpage"
)

// ErrUnreadable marks a page whose content could not be decoded.
var ErrUnreadable = errors.New("unreadable page")

// Document is an open PDF. Close must be called on every exit path.
type Document struct {
	name    string
	file    *os.File
	reader  *pdf.Reader
	boxes   []mediaBox
	offsets []float64
}

// Open opens the PDF at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	r, err := newReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	doc := &Document{name: filepath.Base(path), file: f, reader: r}
	if err := doc.index(); err != nil {
		f.Close()
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return doc, nil
}

// OpenBytes reads a PDF held in memory. name is only used for reporting.
func OpenBytes(data []byte, name string) (*Document, error) {
	r, err := newReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", name, err)
	}
	doc := &Document{name: name, reader: r}
	if err := doc.index(); err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", name, err)
	}
	return doc, nil
}

// newReader wraps pdf.NewReader, which panics on some malformed
// cross-reference tables.
func newReader(ra io.ReaderAt, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("%w: %v", ErrUnreadable, p)
		}
	}()
	return pdf.NewReader(ra, size)
}

// index records every page's media box and document offset.
func (d *Document) index() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page tree: %v", r)
		}
	}()

	n := d.reader.NumPage()
	d.boxes = make([]mediaBox, n)
	d.offsets = make([]float64, n)
	var offset float64
	for i := 0; i < n; i++ {
		box := readMediaBox(d.reader.Page(i + 1).V)
		d.boxes[i] = box
		d.offsets[i] = offset
		offset += box.height()
	}
	return nil
}

// Name returns the source file name.
func (d *Document) Name() string { return d.name }

// NumPage returns the number of pages.
func (d *Document) NumPage() int { return len(d.boxes) }

// Page returns page n, 1-based. Content is decoded on first use.
func (d *Document) Page(n int) pdfpage.Page {
	if n < 1 || n > len(d.boxes) {
		return &page{num: n, err: fmt.Errorf("%w: page %d out of range", ErrUnreadable, n), loaded: true}
	}
	return &page{
		num:    n,
		reader: d.reader,
		box:    d.boxes[n-1],
		offset: d.offsets[n-1],
	}
}

// Close releases the underlying file, if any.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
