package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mr1hm/siting-dashboard/internal/dashboard"
	"github.com/mr1hm/siting-dashboard/internal/models"
	"github.com/mr1hm/siting-dashboard/internal/palette"
	"github.com/mr1hm/siting-dashboard/internal/ranking"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#e5e7eb"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(palette.Neutral.Color))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func scoreStyle(class ranking.ColorClass) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(palette.Class(class)))
}

func cell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func renderSites(w io.Writer, sites []ranking.Scored) {
	if len(sites) == 0 {
		fmt.Fprintln(w, labelStyle.Render("no sites match"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(
		cell("ID", 10)+cell("NAME", 36)+cell("PROV", 6)+cell("STAGE", 14)+cell("SCORE", 6),
	))
	for _, s := range sites {
		fmt.Fprintln(w,
			cell(s.Site.ID, 10)+
				cell(s.Site.Name, 36)+
				cell(string(s.Site.Province), 6)+
				cell(string(s.Site.Stage), 14)+
				scoreStyle(s.ColorClass).Render(fmt.Sprintf("%3d", s.Site.ViabilityScore)),
		)
	}
}

func renderDetails(w io.Writer, site models.Site, fields []models.Field) {
	style := palette.Category(site.Category())
	title := titleStyle.BorderForeground(lipgloss.Color(style.Color)).Render(site.Name)
	fmt.Fprintln(w, title)

	class := ranking.ScoreColorClass(site.ViabilityScore)
	rows := []models.Field{
		{Label: "Category", Value: style.Label},
		{Label: "Province", Value: string(site.Province)},
		{Label: "Stage", Value: string(site.Stage)},
		{Label: "Coordinates", Value: fmt.Sprintf("%.4f, %.4f", site.Latitude, site.Longitude)},
		{Label: "Nearest Grid", Value: fmt.Sprintf("%.1f km", site.NearestGridKm)},
		{Label: "Nearest Highway", Value: fmt.Sprintf("%.1f km", site.NearestHighwayKm)},
	}
	rows = append(rows, fields...)

	fmt.Fprintln(w, labelStyle.Render(cell("Viability", 24))+scoreStyle(class).Render(fmt.Sprintf("%d (%s)", site.ViabilityScore, class)))
	for _, f := range rows {
		fmt.Fprintln(w, labelStyle.Render(cell(f.Label, 24))+f.Value)
	}
}

func renderLayout(w io.Writer, view dashboard.OntologyView) {
	fmt.Fprintln(w, headerStyle.Render(cell("NODE", 24)+cell("LEVEL", 7)+cell("X", 9)+"Y"))
	for _, n := range view.Nodes {
		p := view.Positions[n.ID]
		color := lipgloss.Color(palette.Node(n.Category).Color)
		fmt.Fprintln(w,
			lipgloss.NewStyle().Foreground(color).Render(cell(n.ID, 24))+
				cell(fmt.Sprint(n.Level), 7)+
				cell(fmt.Sprintf("%g", p.X), 9)+
				fmt.Sprintf("%g", p.Y),
		)
	}

	if len(view.Unplaced) > 0 {
		fmt.Fprintln(w, labelStyle.Render("unplaced: "+strings.Join(view.Unplaced, ", ")))
	}
	fmt.Fprintf(w, "%d nodes, %d edges\n", len(view.Nodes), len(view.Edges))
}
