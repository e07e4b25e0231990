package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mr1hm/siting-dashboard/internal/dashboard"
	"github.com/mr1hm/siting-dashboard/internal/filter"
	"github.com/mr1hm/siting-dashboard/internal/layout"
	"github.com/mr1hm/siting-dashboard/internal/models"
	"github.com/mr1hm/siting-dashboard/internal/ontology"
	"github.com/mr1hm/siting-dashboard/internal/ranking"
)

// mockDashboard implements Dashboard over a fixed list of solar sites
type mockDashboard struct {
	sites     []models.Site
	threshold int

	lastCriteria filter.Criteria
}

func (m *mockDashboard) Categories() []dashboard.CategoryInfo {
	return []dashboard.CategoryInfo{{Category: models.CategorySolar, Sites: len(m.sites)}}
}

func (m *mockDashboard) HotThreshold() int {
	return m.threshold
}

func (m *mockDashboard) View(category models.Category, criteria filter.Criteria) (dashboard.View, error) {
	if category != models.CategorySolar {
		return dashboard.View{}, fmt.Errorf("%w: %s", dashboard.ErrUnknownCategory, category)
	}
	m.lastCriteria = criteria
	matched := filter.Apply(m.sites, criteria)
	return dashboard.View{
		Category:  category,
		Criteria:  criteria,
		Threshold: m.threshold,
		Sites:     ranking.Annotate(matched),
		Hot:       ranking.Annotate(ranking.HotOpportunities(matched, m.threshold)),
	}, nil
}

func (m *mockDashboard) Hot(category models.Category, criteria filter.Criteria, threshold int) ([]ranking.Scored, error) {
	if category != models.CategorySolar {
		return nil, fmt.Errorf("%w: %s", dashboard.ErrUnknownCategory, category)
	}
	return ranking.Annotate(ranking.HotOpportunities(filter.Apply(m.sites, criteria), threshold)), nil
}

func (m *mockDashboard) Site(category models.Category, id string) (models.Site, []models.Field, error) {
	for _, s := range m.sites {
		if s.ID == id && category == models.CategorySolar {
			return s, s.Details.Fields(), nil
		}
	}
	return models.Site{}, nil, dashboard.ErrSiteNotFound
}

func (m *mockDashboard) Ontology() dashboard.OntologyView {
	nodes := []ontology.Node{
		{ID: "solar", Label: "Solar Farms", Category: ontology.NodeSolar},
		{ID: "grid", Label: "Transmission Grid", Category: ontology.NodeInfrastructure, Level: 1},
	}
	return dashboard.OntologyView{
		Nodes: nodes,
		Result: layout.Result{
			Positions: map[string]layout.Position{"solar": {X: 150, Y: 80}, "grid": {X: 150, Y: 200}},
			Unplaced:  []string{},
			Edges:     []layout.Edge{},
		},
	}
}

func solarSite(id, name string, province models.Province, score int) models.Site {
	return models.Site{
		ID:             id,
		Name:           name,
		Province:       province,
		Latitude:       45.0,
		Longitude:      -75.0,
		ViabilityScore: score,
		Stage:          models.StagePlanning,
		Details:        models.Solar{CapacityMW: 250, Technology: "Bifacial PV", EstimatedAnnualGWh: 410},
	}
}

func newMock() *mockDashboard {
	return &mockDashboard{
		threshold: 80,
		sites: []models.Site{
			solarSite("A", "Prairie Sun", models.ProvinceAB, 90),
			solarSite("B", "Lakeshore Array", models.ProvinceON, 82),
			solarSite("C", "Coastal Field", models.ProvinceBC, 75),
			solarSite("D", "Quebec Plains", models.ProvinceQC, 61),
		},
	}
}

func setupTestRouter(dash Dashboard, gatherer prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(dash, gatherer)
	handler.RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", url, nil)
	router.ServeHTTP(w, req)
	return w
}

type sitesResponse struct {
	Threshold int `json:"threshold"`
	Sites     []struct {
		ID         string `json:"id"`
		Category   string `json:"category"`
		ColorClass string `json:"color_class"`
	} `json:"sites"`
	Hot []struct {
		ID string `json:"id"`
	} `json:"hot"`
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	w := get(router, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestGetSites_Unfiltered(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	w := get(router, "/api/sites/solar")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp sitesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if len(resp.Sites) != 4 {
		t.Errorf("expected 4 sites, got %d", len(resp.Sites))
	}
	if resp.Sites[0].Category != "solar" {
		t.Errorf("expected category solar, got %s", resp.Sites[0].Category)
	}
	if resp.Sites[2].ColorClass != "medium" {
		t.Errorf("expected score 75 to be medium, got %s", resp.Sites[2].ColorClass)
	}
	if len(resp.Hot) != 2 || resp.Hot[0].ID != "A" || resp.Hot[1].ID != "B" {
		t.Errorf("expected hot [A B], got %+v", resp.Hot)
	}
}

func TestGetSites_Filters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"min viability", "?min_viability=80", []string{"A", "B"}},
		{"provinces", "?province=ON&province=QC", []string{"B", "D"}},
		{"search", "?q=ARRAY", []string{"B"}},
		{"combined", "?province=ON&province=QC&min_viability=70", []string{"B"}},
		{"nothing matches", "?q=zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(newMock(), nil)

			w := get(router, "/api/sites/solar"+tt.query)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}

			var resp sitesResponse
			json.Unmarshal(w.Body.Bytes(), &resp)

			got := make([]string, 0, len(resp.Sites))
			for _, s := range resp.Sites {
				got = append(got, s.ID)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGetSites_InvalidQuery(t *testing.T) {
	queries := []string{
		"?min_viability=101",
		"?min_viability=-1",
		"?min_viability=high",
		"?province=XX",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			router := setupTestRouter(newMock(), nil)

			w := get(router, "/api/sites/solar"+q)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestGetSites_UnknownCategory(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	w := get(router, "/api/sites/airport")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestGetSites_ServiceNotFoundMapsTo404(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	// a known category the mock does not serve
	w := get(router, "/api/sites/mining")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestGetSite(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	w := get(router, "/api/sites/solar/C")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Site struct {
			Name    string         `json:"name"`
			Details map[string]any `json:"details"`
		} `json:"site"`
		Fields []models.Field `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp.Site.Name != "Coastal Field" {
		t.Errorf("expected Coastal Field, got %s", resp.Site.Name)
	}
	if resp.Site.Details["technology"] != "Bifacial PV" {
		t.Errorf("expected payload to be serialized, got %v", resp.Site.Details)
	}
	if len(resp.Fields) != 3 || resp.Fields[0].Value != "250 MW" {
		t.Errorf("unexpected detail fields: %+v", resp.Fields)
	}

	w = get(router, "/api/sites/solar/missing")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for a missing site, got %d", w.Code)
	}
}

func TestGetHot_Threshold(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	w := get(router, "/api/hot/solar?threshold=60")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp sitesResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Threshold != 60 {
		t.Errorf("expected threshold 60, got %d", resp.Threshold)
	}
	want := []string{"A", "B", "C", "D"}
	for i, s := range resp.Sites {
		if s.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], s.ID)
		}
	}

	w = get(router, "/api/hot/solar")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Threshold != 80 || len(resp.Sites) != 2 {
		t.Errorf("expected default threshold 80 with 2 sites, got %d with %d", resp.Threshold, len(resp.Sites))
	}

	w = get(router, "/api/hot/solar?threshold=500")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for an out-of-range threshold, got %d", w.Code)
	}
}

func TestGetMap_ReturnsGeoJSON(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	w := get(router, "/api/map/solar?min_viability=70")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", contentType)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if fc.Type != "FeatureCollection" {
		t.Errorf("expected type FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(fc.Features))
	}

	first := fc.Features[0]
	if first.Geometry.Coordinates[0] != -75.0 || first.Geometry.Coordinates[1] != 45.0 {
		t.Errorf("expected [lon, lat], got %v", first.Geometry.Coordinates)
	}
	if first.Properties["hot"] != true {
		t.Errorf("expected the top site to be flagged hot")
	}
	if fc.Features[2].Properties["hot"] != false {
		t.Errorf("expected the 75 site not to be hot")
	}
}

func TestGetCategories(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	w := get(router, "/api/categories")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Thresholds map[string]int `json:"thresholds"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Thresholds["high"] != 80 || resp.Thresholds["medium"] != 60 {
		t.Errorf("unexpected thresholds: %v", resp.Thresholds)
	}
}

func TestGetOntology(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	w := get(router, "/api/ontology")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Nodes []struct {
			ID    string `json:"id"`
			Color string `json:"color"`
		} `json:"nodes"`
		Positions map[string]layout.Position `json:"positions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Nodes) != 2 || resp.Nodes[1].Color == "" {
		t.Errorf("unexpected nodes: %+v", resp.Nodes)
	}
	if resp.Positions["grid"].Y != 200 {
		t.Errorf("expected grid at y=200, got %v", resp.Positions["grid"])
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MetricsMiddleware(reg))
	NewHandler(newMock(), reg).RegisterRoutes(router)

	get(router, "/health")
	w := get(router, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `siting_http_requests_total{route="/health",status="200"} 1`) {
		t.Errorf("expected request counter in metrics output")
	}
}

func TestMetrics_DisabledWithoutGatherer(t *testing.T) {
	router := setupTestRouter(newMock(), nil)

	w := get(router, "/metrics")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	NewHandler(newMock(), nil).RegisterRoutes(router)

	if w := get(router, "/health"); w.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", w.Code)
	}
	w := get(router, "/health")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", w.Code)
	}
}
