package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/mr1hm/siting-dashboard/internal/catalog"
	"github.com/mr1hm/siting-dashboard/internal/filter"
	"github.com/mr1hm/siting-dashboard/internal/layout"
	"github.com/mr1hm/siting-dashboard/internal/memo"
	"github.com/mr1hm/siting-dashboard/internal/models"
	"github.com/mr1hm/siting-dashboard/internal/ontology"
	"github.com/mr1hm/siting-dashboard/internal/palette"
	"github.com/mr1hm/siting-dashboard/internal/ranking"
	"github.com/mr1hm/siting-dashboard/internal/worker"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrSiteNotFound    = errors.New("site not found")
)

type Config struct {
	HotThreshold int
	Layout       layout.Config
	CacheSize    int
	WarmWorkers  int
	WarmBuffer   int
}

func DefaultConfig() Config {
	return Config{
		HotThreshold: ranking.DefaultHotThreshold,
		Layout:       layout.Default(),
		CacheSize:    memo.DefaultSize,
		WarmWorkers:  4,
		WarmBuffer:   len(models.SiteCategories) + 1,
	}
}

// View is everything the dashboard renders for one category and set of
// criteria: the filtered list in catalog order and its hot subset.
type View struct {
	Category  models.Category  `json:"category"`
	Criteria  filter.Criteria  `json:"criteria"`
	Threshold int              `json:"threshold"`
	Sites     []ranking.Scored `json:"sites"`
	Hot       []ranking.Scored `json:"hot"`
}

type CategoryInfo struct {
	Category models.Category `json:"category"`
	palette.Style
	Sites int `json:"sites"`
}

type OntologyView struct {
	Nodes []ontology.Node `json:"nodes"`
	layout.Result
}

// Service ties the catalog, the ontology and the pure engine packages
// together and memoizes their results.
type Service struct {
	catalog *catalog.Catalog
	graph   *ontology.Graph
	cfg     Config

	views   *memo.Cache[View]
	hot     *memo.Cache[[]ranking.Scored]
	layouts *memo.Cache[layout.Result]
}

func New(cat *catalog.Catalog, graph *ontology.Graph, cfg Config, metrics *memo.Metrics) *Service {
	return &Service{
		catalog: cat,
		graph:   graph,
		cfg:     cfg,
		views:   memo.New[View]("views", cfg.CacheSize, metrics),
		hot:     memo.New[[]ranking.Scored]("hot", cfg.CacheSize, metrics),
		layouts: memo.New[layout.Result]("layout", 4, metrics),
	}
}

func (s *Service) HotThreshold() int {
	return s.cfg.HotThreshold
}

func (s *Service) Categories() []CategoryInfo {
	infos := make([]CategoryInfo, 0, len(models.SiteCategories))
	for _, c := range s.catalog.Categories() {
		infos = append(infos, CategoryInfo{
			Category: c,
			Style:    palette.Category(c),
			Sites:    s.catalog.Len(c),
		})
	}
	return infos
}

func (s *Service) View(category models.Category, criteria filter.Criteria) (View, error) {
	if err := checkCategory(category); err != nil {
		return View{}, err
	}
	criteria = criteria.Normalize()

	key := fmt.Sprintf("%s|%s|%s", s.catalog.Version(), category, criteria.Key())
	v, err := s.views.GetOrCompute(key, func() (View, error) {
		matched := filter.Apply(s.catalog.RecordsFor(category), criteria)
		return View{
			Category:  category,
			Criteria:  criteria,
			Threshold: s.cfg.HotThreshold,
			Sites:     ranking.Annotate(matched),
			Hot:       ranking.Annotate(ranking.HotOpportunities(matched, s.cfg.HotThreshold)),
		}, nil
	})
	if err != nil {
		return View{}, err
	}

	v.Sites = slices.Clone(v.Sites)
	v.Hot = slices.Clone(v.Hot)
	v.Criteria.Provinces = slices.Clone(v.Criteria.Provinces)
	return v, nil
}

// Hot ranks the filtered sites of a category against an explicit threshold.
func (s *Service) Hot(category models.Category, criteria filter.Criteria, threshold int) ([]ranking.Scored, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	criteria = criteria.Normalize()

	key := fmt.Sprintf("%s|%s|%s|%d", s.catalog.Version(), category, criteria.Key(), threshold)
	hot, err := s.hot.GetOrCompute(key, func() ([]ranking.Scored, error) {
		matched := filter.Apply(s.catalog.RecordsFor(category), criteria)
		return ranking.Annotate(ranking.HotOpportunities(matched, threshold)), nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(hot), nil
}

// Site returns one site and its category-specific detail rows.
func (s *Service) Site(category models.Category, id string) (models.Site, []models.Field, error) {
	if err := checkCategory(category); err != nil {
		return models.Site{}, nil, err
	}
	site, ok := s.catalog.Find(category, id)
	if !ok {
		return models.Site{}, nil, fmt.Errorf("%w: %s/%s", ErrSiteNotFound, category, id)
	}
	return site, catalog.DetailFields(site), nil
}

func (s *Service) Ontology() OntologyView {
	key := fmt.Sprintf("%s|%s", s.graph.Version(), s.cfg.Layout.Key())
	res, _ := s.layouts.GetOrCompute(key, func() (layout.Result, error) {
		return layout.Compute(s.graph, s.cfg.Layout), nil
	})

	return OntologyView{
		Nodes: s.graph.Nodes(),
		Result: layout.Result{
			Positions: maps.Clone(res.Positions),
			Unplaced:  slices.Clone(res.Unplaced),
			Edges:     slices.Clone(res.Edges),
		},
	}
}

type warmView struct {
	category models.Category
}

type warmLayout struct{}

// Warm precomputes the unfiltered view of every category and the ontology
// layout on a worker pool, returning once all of it is cached.
func (s *Service) Warm(ctx context.Context) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	pool := worker.NewWorkerPool("warm", s.cfg.WarmWorkers, s.cfg.WarmBuffer, func(ctx context.Context, job worker.Job) error {
		var err error
		switch j := job.(type) {
		case warmView:
			_, err = s.View(j.category, filter.Criteria{})
		case warmLayout:
			s.Ontology()
		default:
			err = fmt.Errorf("unexpected warm job %T", job)
		}
		if err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
		return err
	})

	pool.Start(ctx)

	submitted := 0
	for _, c := range s.catalog.Categories() {
		if err := pool.Submit(ctx, warmView{category: c}); err != nil {
			pool.Stop()
			return fmt.Errorf("warming views: %w", err)
		}
		submitted++
	}
	if err := pool.Submit(ctx, warmLayout{}); err != nil {
		pool.Stop()
		return fmt.Errorf("warming layout: %w", err)
	}
	submitted++

	pool.Stop()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("warm-up interrupted: %w", err)
	}
	slog.Debug("dashboard warmed", "jobs", submitted, "views", s.views.Len())
	return errors.Join(errs...)
}

func checkCategory(c models.Category) error {
	if !slices.Contains(models.SiteCategories, c) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return nil
}
