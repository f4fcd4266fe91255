package sheet

import (
	"fmt"
	"slices"
)

// Column counts the row mappers rely on.
const (
	headerColumns     = 8
	elementLabels     = 16
	componentsColumns = 13
	judgeCount        = 9
)

// HeaderLayout locates the identity and totals row of a score sheet.
type HeaderLayout struct {
	Labels      []string `koanf:"labels" json:"labels"`
	Margin      float64  `koanf:"margin" json:"margin"`
	ScoreLabel  string   `koanf:"score_label" json:"score_label"`
	BandMargin  float64  `koanf:"band_margin" json:"band_margin"`
	BonusSuffix string   `koanf:"bonus_suffix" json:"bonus_suffix"`
}

// ElementsLayout locates the executed-elements table.
type ElementsLayout struct {
	Labels           []string `koanf:"labels" json:"labels"`
	Margin           float64  `koanf:"margin" json:"margin"`
	CreditFlagLabel  string   `koanf:"credit_flag_label" json:"credit_flag_label"`
	CreditFlagOffset float64  `koanf:"credit_flag_offset" json:"credit_flag_offset"`
	StartLabel       string   `koanf:"start_label" json:"start_label"`
	EndLabel         string   `koanf:"end_label" json:"end_label"`
	BandMargin       float64  `koanf:"band_margin" json:"band_margin"`
	RowTolerance     float64  `koanf:"row_tolerance" json:"row_tolerance"`
	Decimals         int      `koanf:"decimals" json:"decimals"`
}

// ComponentsLayout locates the program-components table.
type ComponentsLayout struct {
	Labels       []string `koanf:"labels" json:"labels"`
	Margin       float64  `koanf:"margin" json:"margin"`
	StartLabel   string   `koanf:"start_label" json:"start_label"`
	BandMargin   float64  `koanf:"band_margin" json:"band_margin"`
	RowTolerance float64  `koanf:"row_tolerance" json:"row_tolerance"`
	Tolerance    float64  `koanf:"tolerance" json:"tolerance"`
}

// Template holds every label, margin and tolerance of one score-sheet
// layout. It is loaded once and passed by value.
type Template struct {
	Marker     string           `koanf:"marker" json:"marker"`
	Header     HeaderLayout     `koanf:"header" json:"header"`
	Elements   ElementsLayout   `koanf:"elements" json:"elements"`
	Components ComponentsLayout `koanf:"components" json:"components"`
}

func judgeLabels() []string {
	out := make([]string, judgeCount)
	for i := range out {
		out[i] = fmt.Sprintf("J%d", i+1)
	}
	return out
}

// DefaultTemplate returns the layout of the ISU-style judges details sheet.
func DefaultTemplate() Template {
	elements := append([]string{"#", "Executed", "ofnI", "Base", "GOE"}, judgeLabels()...)
	elements = append(elements, "Ref", "Scores")

	components := append([]string{"Program", "Factor"}, judgeLabels()...)
	components = append(components, "Ref", "Scores")

	return Template{
		Marker: "JUDGES DETAILS PER SKATER",
		Header: HeaderLayout{
			Labels:      []string{"Rank", "Name", "Nation", "Starting", "Segment", "Element", "Program", "Deductions"},
			Margin:      5,
			ScoreLabel:  "Score",
			BandMargin:  1,
			BonusSuffix: "B",
		},
		Elements: ElementsLayout{
			Labels:           elements,
			Margin:           8,
			CreditFlagLabel:  "GOE",
			CreditFlagOffset: 7,
			StartLabel:       "Elements",
			EndLabel:         "Components",
			BandMargin:       1,
			RowTolerance:     0,
			Decimals:         3,
		},
		Components: ComponentsLayout{
			Labels:       components,
			Margin:       8,
			StartLabel:   "Program",
			BandMargin:   1,
			RowTolerance: 0,
			Tolerance:    0.1,
		},
	}
}

// Validate checks that the template can drive the fixed row mappers.
func (t Template) Validate() error {
	if t.Marker == "" {
		return fmt.Errorf("template: marker is required")
	}
	if n := len(t.Header.Labels); n != headerColumns {
		return fmt.Errorf("template: header needs %d labels, got %d", headerColumns, n)
	}
	if t.Header.ScoreLabel == "" {
		return fmt.Errorf("template: header score label is required")
	}
	if n := len(t.Elements.Labels); n != elementLabels {
		return fmt.Errorf("template: elements needs %d labels, got %d", elementLabels, n)
	}
	if i := slices.Index(t.Elements.Labels, t.Elements.CreditFlagLabel); i < 1 {
		return fmt.Errorf("template: credit flag label %q must be a non-leading elements label", t.Elements.CreditFlagLabel)
	}
	if t.Elements.StartLabel == "" || t.Elements.EndLabel == "" {
		return fmt.Errorf("template: elements start and end labels are required")
	}
	if t.Elements.Decimals < 0 {
		return fmt.Errorf("template: elements decimals must not be negative")
	}
	if n := len(t.Components.Labels); n != componentsColumns {
		return fmt.Errorf("template: components needs %d labels, got %d", componentsColumns, n)
	}
	if t.Components.StartLabel == "" {
		return fmt.Errorf("template: components start label is required")
	}
	if t.Components.Tolerance <= 0 {
		return fmt.Errorf("template: components tolerance must be positive")
	}
	if t.Elements.RowTolerance < 0 || t.Components.RowTolerance < 0 {
		return fmt.Errorf("template: row tolerances must not be negative")
	}
	return nil
}
