package api

import (
	"github.com/mr1hm/siting-dashboard/internal/dashboard"
	"github.com/mr1hm/siting-dashboard/internal/palette"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON renders a view as map markers. Hot sites are flagged so the map
// can draw them on top.
func toGeoJSON(view dashboard.View) FeatureCollection {
	hot := make(map[string]bool, len(view.Hot))
	for _, s := range view.Hot {
		hot[s.Site.ID] = true
	}

	features := make([]Feature, 0, len(view.Sites))
	for _, s := range view.Sites {
		pt := s.Site.Coordinates()
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{pt.Longitude, pt.Latitude},
			},
			Properties: map[string]any{
				"id":              s.Site.ID,
				"name":            s.Site.Name,
				"category":        view.Category,
				"province":        s.Site.Province,
				"stage":           s.Site.Stage,
				"viability_score": s.Site.ViabilityScore,
				"color_class":     s.ColorClass,
				"color":           palette.Class(s.ColorClass),
				"hot":             hot[s.Site.ID],
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
