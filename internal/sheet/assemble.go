package sheet

import (
	"fmt"

	"github.com/dgallion1/scoregest/internal/pdfpage"
)

// Parse reads the three tables of one region. Any error is fatal for the
// sheet.
func Parse(page pdfpage.Page, region Region, tmpl Template) (Sheet, error) {
	header, err := ParseHeader(page, region.Header, tmpl.Header)
	if err != nil {
		return Sheet{}, fmt.Errorf("header: %w", err)
	}
	elements, err := ParseElements(page, region.Elements, tmpl.Elements, header.Bonifications)
	if err != nil {
		return Sheet{}, fmt.Errorf("elements of %s: %w", header.Name, err)
	}
	components, err := ParseComponents(page, region.Elements, tmpl.Components)
	if err != nil {
		return Sheet{}, fmt.Errorf("components of %s: %w", header.Name, err)
	}
	return Sheet{Header: header, Elements: elements, Components: components}, nil
}

// Assemble merges a parsed sheet with the page program name and the
// caller's context.
func Assemble(s Sheet, program string, pctx ParseContext) Record {
	first, last := SplitName(s.Header.Name)
	return Record{
		Metadata: Metadata{
			HeaderFields:       s.Header,
			FirstName:          first,
			LastName:           last,
			BonificationPoints: s.Elements.BonusCorrection,
			Season:             pctx.Season,
			Competition:        pctx.Competition,
			City:               pctx.City,
			Type:               pctx.Type,
			Start:              pctx.Start,
			End:                pctx.End,
			Program:            program,
		},
		Elements:   s.Elements.ByNum(),
		Components: s.Components.ByKey(),
	}
}
