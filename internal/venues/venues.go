package venues

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/traininginparks/trainbot/internal/models"
)

// Venue is a named training location with map coordinates.
type Venue struct {
	Keyword   string  `json:"keyword" validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Title     string  `json:"title" validate:"required"`
	Address   string  `json:"address" validate:"required"`
}

// Table is an ordered keyword table. Order matters: keywords may overlap
// and the first match wins.
type Table []Venue

// ParseTable decodes the VENUES configuration value, an ordered JSON array
// of venues.
func ParseTable(raw string) (Table, error) {
	var table Table
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return nil, fmt.Errorf("invalid venue table JSON: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("venue table is empty")
	}
	for i, venue := range table {
		if err := models.Validate.Struct(venue); err != nil {
			return nil, fmt.Errorf("venue %d (%q): %w", i, venue.Keyword, err)
		}
	}
	return table, nil
}

// Resolve returns the first venue whose keyword occurs in the summary,
// matched case-insensitively.
func (t Table) Resolve(summary string) (Venue, bool) {
	lowered := strings.ToLower(summary)
	for _, venue := range t {
		if strings.Contains(lowered, strings.ToLower(venue.Keyword)) {
			return venue, true
		}
	}
	return Venue{}, false
}
