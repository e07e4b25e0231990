package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/siting-dashboard/internal/dashboard"
	"github.com/mr1hm/siting-dashboard/internal/filter"
	"github.com/mr1hm/siting-dashboard/internal/models"
	"github.com/mr1hm/siting-dashboard/internal/ontology"
	"github.com/mr1hm/siting-dashboard/internal/palette"
	"github.com/mr1hm/siting-dashboard/internal/ranking"
)

// Dashboard is what the HTTP layer needs from the dashboard service.
type Dashboard interface {
	Categories() []dashboard.CategoryInfo
	HotThreshold() int
	View(category models.Category, criteria filter.Criteria) (dashboard.View, error)
	Hot(category models.Category, criteria filter.Criteria, threshold int) ([]ranking.Scored, error)
	Site(category models.Category, id string) (models.Site, []models.Field, error)
	Ontology() dashboard.OntologyView
}

type Handler struct {
	dash     Dashboard
	gatherer prometheus.Gatherer
}

// NewHandler builds the API handler. A nil gatherer leaves /metrics
// unregistered.
func NewHandler(dash Dashboard, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		dash:     dash,
		gatherer: gatherer,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/categories", h.getCategories)
	api.GET("/sites/:category", h.getSites)
	api.GET("/sites/:category/:id", h.getSite)
	api.GET("/hot/:category", h.getHot)
	api.GET("/map/:category", h.getMap)
	api.GET("/ontology", h.getOntology)

	if h.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}

// siteQuery is the filter panel state as query parameters.
type siteQuery struct {
	Query        string   `form:"q" binding:"max=200"`
	Provinces    []string `form:"province" binding:"dive,oneof=ON QC BC AB SK MB NS NB NL PE YT NT NU"`
	MinViability int      `form:"min_viability" binding:"min=0,max=100"`
}

func (q siteQuery) criteria() filter.Criteria {
	c := filter.Criteria{
		SearchQuery:  q.Query,
		MinViability: q.MinViability,
	}
	for _, p := range q.Provinces {
		if province, ok := models.ParseProvince(p); ok {
			c.Provinces = append(c.Provinces, province)
		}
	}
	return c
}

type hotQuery struct {
	siteQuery
	Threshold *int `form:"threshold" binding:"omitempty,min=0,max=100"`
}

type siteJSON struct {
	models.Site
	Category   models.Category    `json:"category"`
	ColorClass ranking.ColorClass `json:"color_class"`
	Color      string             `json:"color"`
}

func toSiteJSON(s ranking.Scored) siteJSON {
	return siteJSON{
		Site:       s.Site,
		Category:   s.Site.Category(),
		ColorClass: s.ColorClass,
		Color:      palette.Class(s.ColorClass),
	}
}

func toSitesJSON(scored []ranking.Scored) []siteJSON {
	out := make([]siteJSON, len(scored))
	for i, s := range scored {
		out[i] = toSiteJSON(s)
	}
	return out
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.dash.Categories(),
		"thresholds": gin.H{
			"high":   ranking.HighScore,
			"medium": ranking.MediumScore,
			"hot":    h.dash.HotThreshold(),
		},
		"classes": gin.H{
			string(ranking.ColorHigh):   palette.Class(ranking.ColorHigh),
			string(ranking.ColorMedium): palette.Class(ranking.ColorMedium),
			string(ranking.ColorLow):    palette.Class(ranking.ColorLow),
		},
	})
}

func (h *Handler) getSites(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	var q siteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.dash.View(category, q.criteria())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":  view.Category,
		"style":     palette.Category(view.Category),
		"criteria":  view.Criteria,
		"threshold": view.Threshold,
		"sites":     toSitesJSON(view.Sites),
		"hot":       toSitesJSON(view.Hot),
	})
}

func (h *Handler) getSite(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	site, fields, err := h.dash.Site(category, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"site":   toSiteJSON(ranking.Annotate([]models.Site{site})[0]),
		"fields": fields,
	})
}

func (h *Handler) getHot(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	var q hotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	threshold := h.dash.HotThreshold()
	if q.Threshold != nil {
		threshold = *q.Threshold
	}

	hot, err := h.dash.Hot(category, q.criteria(), threshold)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":  category,
		"threshold": threshold,
		"sites":     toSitesJSON(hot),
	})
}

func (h *Handler) getMap(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	var q siteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.dash.View(category, q.criteria())
	if err != nil {
		writeError(c, err)
		return
	}

	fc := toGeoJSON(view)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

type nodeJSON struct {
	ontology.Node
	Color string `json:"color"`
}

func (h *Handler) getOntology(c *gin.Context) {
	view := h.dash.Ontology()

	nodes := make([]nodeJSON, len(view.Nodes))
	for i, n := range view.Nodes {
		nodes[i] = nodeJSON{Node: n, Color: palette.Node(n.Category).Color}
	}

	c.JSON(http.StatusOK, gin.H{
		"nodes":     nodes,
		"edges":     view.Edges,
		"positions": view.Positions,
		"unplaced":  view.Unplaced,
	})
}

func categoryParam(c *gin.Context) (models.Category, bool) {
	category, ok := models.ParseCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category: " + c.Param("category")})
		return "", false
	}
	return category, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dashboard.ErrUnknownCategory), errors.Is(err, dashboard.ErrSiteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
