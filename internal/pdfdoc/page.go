package pdfdoc

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/dgallion1/scoregest/internal/pdfpage"
)

// page decodes its content on first access. It is not safe for concurrent
// use; pages of one document are processed sequentially.
type page struct {
	num    int
	reader *pdf.Reader
	box    mediaBox
	offset float64

	loaded  bool
	content *pdfpage.Content
	err     error
}

var _ pdfpage.Page = (*page)(nil)

func (p *page) load() {
	if p.loaded {
		return
	}
	p.loaded = true
	p.content, p.err = p.decode()
}

func (p *page) decode() (c *pdfpage.Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("%w: page %d: %v", ErrUnreadable, p.num, r)
		}
	}()

	src := p.reader.Page(p.num)
	if src.V.IsNull() {
		return nil, fmt.Errorf("%w: page %d has no page object", ErrUnreadable, p.num)
	}
	content := src.Content()
	chars := convertText(content.Text, p.box)
	rects := convertRects(content.Rect, p.box, p.offset)
	return pdfpage.NewContent(p.box.bbox(), chars, rects), nil
}

func (p *page) ExtractText() (string, error) {
	p.load()
	if p.err != nil {
		return "", p.err
	}
	return p.content.ExtractText()
}

func (p *page) Words() []pdfpage.Word {
	if p.load(); p.err != nil {
		return nil
	}
	return p.content.Words()
}

func (p *page) Chars() []pdfpage.Char {
	if p.load(); p.err != nil {
		return nil
	}
	return p.content.Chars()
}

func (p *page) Rects() []pdfpage.Rect {
	if p.load(); p.err != nil {
		return nil
	}
	return p.content.Rects()
}

func (p *page) BBox() pdfpage.BBox { return p.box.bbox() }

func (p *page) Crop(bbox pdfpage.BBox) pdfpage.Page {
	if p.load(); p.err != nil {
		return pdfpage.NewContent(bbox, nil, nil)
	}
	return p.content.Crop(bbox)
}

func (p *page) ExtractTable(vertical, horizontal []float64) [][]string {
	if p.load(); p.err != nil {
		return nil
	}
	return p.content.ExtractTable(vertical, horizontal)
}
