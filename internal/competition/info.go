// Package competition supplies the per-PDF context of a competition: its
// name, city, type and dates, read from a saved info file or from the
// competition's results index page.
package competition

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/scoregest/internal/sheet"
)

// InfoFiles are tried in order by LoadInfo.
var InfoFiles = []string{"infos.json", "info.json"}

// Info describes one competition.
type Info struct {
	URL         string   `json:"url,omitempty"`
	Competition string   `json:"competition"`
	City        string   `json:"city,omitempty"`
	Location    string   `json:"location,omitempty"`
	Type        string   `json:"type"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	RinkName    string   `json:"rink_name,omitempty"`
	ScoreLinks  []string `json:"score_links,omitempty"`
}

// CityName returns the city, falling back to the location older info files use.
func (i Info) CityName() string {
	if i.City != "" {
		return i.City
	}
	return i.Location
}

// Context builds the parse context for every PDF of the competition.
func (i Info) Context(season string) sheet.ParseContext {
	return sheet.ParseContext{
		Season:      season,
		Competition: i.Competition,
		City:        i.CityName(),
		Type:        i.Type,
		Start:       i.Start,
		End:         i.End,
	}
}

// LoadInfo reads the competition info file in dir.
func LoadInfo(dir string) (Info, error) {
	for _, name := range InfoFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Info{}, fmt.Errorf("read %s: %w", name, err)
		}
		var info Info
		if err := json.Unmarshal(data, &info); err != nil {
			return Info{}, fmt.Errorf("decode %s: %w", filepath.Join(dir, name), err)
		}
		return info, nil
	}
	return Info{}, fmt.Errorf("no competition info in %s: %w", dir, os.ErrNotExist)
}
