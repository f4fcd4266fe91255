package sheet

import "github.com/dgallion1/scoregest/internal/pdfpage"

// TotalKey is the element key of the aggregate row.
const TotalKey = "total"

// Marks holds the nine judges' marks of one row; absent marks are nil.
type Marks [judgeCount]*float64

// HeaderFields identifies the skater and carries the segment totals.
type HeaderFields struct {
	Rank                int     `json:"rank"`
	Name                string  `json:"name"`
	Nation              string  `json:"nation"`
	StartingNumber      int     `json:"starting_number"`
	TotalSegmentScore   float64 `json:"total_segment_score"`
	TotalElementScore   float64 `json:"total_element_score"`
	TotalComponentScore float64 `json:"total_component_score"`
	TotalDeductions     float64 `json:"total_deductions"`
	Bonifications       bool    `json:"bonifications"`
}

// ElementRow is one judged element, or the aggregate row when ElementNum is
// TotalKey.
type ElementRow struct {
	ElementNum  string   `json:"element_num"`
	Description *string  `json:"element_desc"`
	InfoFlag    *string  `json:"info_flag"`
	BaseValue   float64  `json:"base_value"`
	CreditFlag  *string  `json:"credit_flag"`
	GOE         *float64 `json:"goe"`
	Judges      Marks    `json:"judges"`
	Ref         *string  `json:"ref"`
	PanelScore  float64  `json:"scores_of_panel"`
}

// ComponentRow is one program component.
type ComponentRow struct {
	Key         string  `json:"component"`
	Description string  `json:"component_desc"`
	Factor      float64 `json:"factor"`
	Judges      Marks   `json:"judges"`
	Ref         *string `json:"ref"`
	PanelScore  float64 `json:"scores_of_panel"`
}

// ParseContext is supplied by the caller per PDF and copied verbatim into
// every record.
type ParseContext struct {
	Season      string `json:"season"`
	Competition string `json:"competition"`
	City        string `json:"city"`
	Type        string `json:"type"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// Metadata is the flat metadata block of a performance record.
type Metadata struct {
	HeaderFields
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	BonificationPoints float64 `json:"bonification_points"`
	Season             string  `json:"season"`
	Competition        string  `json:"competition"`
	City               string  `json:"city"`
	Type               string  `json:"type"`
	Start              string  `json:"start"`
	End                string  `json:"end"`
	Program            string  `json:"program"`
}

// Record is one skater's performance as emitted to callers.
type Record struct {
	Metadata   Metadata                `json:"metadata"`
	Elements   map[string]ElementRow   `json:"elements"`
	Components map[string]ComponentRow `json:"components"`
}

// Region is the rectangle triple of one score sheet. The components table is
// printed inside the Elements rectangle, below the elements block; the third
// rectangle is kept only to preserve the triple.
type Region struct {
	Header     pdfpage.Rect
	Elements   pdfpage.Rect
	Components pdfpage.Rect
}

// Sheet is the parsed but not yet assembled content of one region.
type Sheet struct {
	Header     HeaderFields
	Elements   ElementsTable
	Components ComponentsTable
}
