package palette

import (
	"github.com/mr1hm/siting-dashboard/internal/models"
	"github.com/mr1hm/siting-dashboard/internal/ontology"
	"github.com/mr1hm/siting-dashboard/internal/ranking"
)

type Style struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Neutral is returned for anything without an entry.
var Neutral = Style{Label: "Unknown", Color: "#9ca3af"}

var categories = map[models.Category]Style{
	models.CategoryMining:        {Label: "Mining", Color: "#f59e0b"},
	models.CategoryDataCenter:    {Label: "Data Centers", Color: "#6366f1"},
	models.CategoryHospital:      {Label: "Hospitals", Color: "#ef4444"},
	models.CategorySolar:         {Label: "Solar Farms", Color: "#eab308"},
	models.CategoryManufacturing: {Label: "Manufacturing", Color: "#14b8a6"},
}

var nodes = map[ontology.NodeCategory]Style{
	ontology.NodeInfrastructure: {Label: "Infrastructure", Color: "#64748b"},
	ontology.NodeStakeholder:    {Label: "Stakeholder", Color: "#a855f7"},
}

var classes = map[ranking.ColorClass]string{
	ranking.ColorHigh:   "#22c55e",
	ranking.ColorMedium: "#eab308",
	ranking.ColorLow:    "#ef4444",
}

func Category(c models.Category) Style {
	if s, ok := categories[c]; ok {
		return s
	}
	return Neutral
}

// Node styles ontology nodes. Site-category nodes share their category's
// style.
func Node(nc ontology.NodeCategory) Style {
	if s, ok := nodes[nc]; ok {
		return s
	}
	return Category(models.Category(nc))
}

func Class(cc ranking.ColorClass) string {
	if c, ok := classes[cc]; ok {
		return c
	}
	return Neutral.Color
}
