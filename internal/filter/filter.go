package filter

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mr1hm/siting-dashboard/internal/models"
)

// Criteria are the analyst's current narrowing choices. The zero value
// matches every site.
type Criteria struct {
	SearchQuery  string            `json:"search_query"`
	Provinces    []models.Province `json:"provinces"`
	MinViability int               `json:"min_viability"`
}

// Apply keeps the sites whose name contains the query (case-insensitive),
// whose province is in the set (when the set is non-empty) and whose score is
// at least MinViability. Input order is preserved and the result is always a
// new slice.
func Apply(sites []models.Site, c Criteria) []models.Site {
	query := fold(c.SearchQuery)

	var provinces map[models.Province]struct{}
	if len(c.Provinces) > 0 {
		provinces = make(map[models.Province]struct{}, len(c.Provinces))
		for _, p := range c.Provinces {
			provinces[p] = struct{}{}
		}
	}

	out := make([]models.Site, 0, len(sites))
	for _, s := range sites {
		if s.ViabilityScore < c.MinViability {
			continue
		}
		if provinces != nil {
			if _, ok := provinces[s.Province]; !ok {
				continue
			}
		}
		if query != "" && !strings.Contains(fold(s.Name), query) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Normalize returns the equivalent criteria in canonical form: folded query,
// provinces sorted without duplicates.
func (c Criteria) Normalize() Criteria {
	provinces := slices.Clone(c.Provinces)
	slices.Sort(provinces)
	provinces = slices.Compact(provinces)
	if len(provinces) == 0 {
		provinces = nil
	}

	return Criteria{
		SearchQuery:  fold(c.SearchQuery),
		Provinces:    provinces,
		MinViability: c.MinViability,
	}
}

// Key is a stable string for equivalent criteria, used as a cache key.
func (c Criteria) Key() string {
	n := c.Normalize()
	parts := make([]string, len(n.Provinces))
	for i, p := range n.Provinces {
		parts[i] = string(p)
	}
	return fmt.Sprintf("q=%q;p=%s;min=%d", n.SearchQuery, strings.Join(parts, ","), n.MinViability)
}

// cases.Caser is stateful, so each call gets its own.
func fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}
