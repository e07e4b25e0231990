package ranking

import (
	"cmp"
	"slices"

	"github.com/mr1hm/siting-dashboard/internal/models"
)

const DefaultHotThreshold = 80

// Colour class boundaries. Anything at or above HighScore is "high", at or
// above MediumScore is "medium", everything else is "low".
const (
	HighScore   = 80
	MediumScore = 60
)

type ColorClass string

const (
	ColorHigh   ColorClass = "high"
	ColorMedium ColorClass = "medium"
	ColorLow    ColorClass = "low"
)

// ScoreColorClass is the single mapping from viability score to colour class,
// shared by the ranked lists and the filter threshold UI.
func ScoreColorClass(score int) ColorClass {
	switch {
	case score >= HighScore:
		return ColorHigh
	case score >= MediumScore:
		return ColorMedium
	default:
		return ColorLow
	}
}

// Scored is a site with its colour class attached for presentation.
type Scored struct {
	Site       models.Site `json:"site"`
	ColorClass ColorClass  `json:"color_class"`
}

// Annotate attaches colour classes without reordering.
func Annotate(sites []models.Site) []Scored {
	out := make([]Scored, len(sites))
	for i, s := range sites {
		out[i] = Scored{Site: s, ColorClass: ScoreColorClass(s.ViabilityScore)}
	}
	return out
}

// HotOpportunities returns the sites scoring at least threshold, highest
// first. Equal scores keep their input order.
func HotOpportunities(sites []models.Site, threshold int) []models.Site {
	hot := make([]models.Site, 0, len(sites))
	for _, s := range sites {
		if s.ViabilityScore >= threshold {
			hot = append(hot, s)
		}
	}

	slices.SortStableFunc(hot, func(a, b models.Site) int {
		return cmp.Compare(b.ViabilityScore, a.ViabilityScore)
	})
	return hot
}
