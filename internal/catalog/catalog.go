package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/mr1hm/siting-dashboard/internal/models"
)

var (
	ErrUnknownCategory = errors.New("unknown site category")
	ErrDuplicateID     = errors.New("duplicate site id")
	ErrInvalidSite     = errors.New("invalid site")
)

// Catalog is an immutable snapshot of sites grouped by category. Every
// accessor hands out copies, so nothing a caller does can reach the snapshot.
type Catalog struct {
	version string
	sites   map[models.Category][]models.Site
}

// New checks the per-category invariants (payload matches category, ids are
// unique, score within 0-100, stage belongs to the category) and snapshots
// the input.
func New(sites map[models.Category][]models.Site) (*Catalog, error) {
	c := &Catalog{
		version: uuid.NewString(),
		sites:   make(map[models.Category][]models.Site, len(models.SiteCategories)),
	}

	var errs []error
	for cat, list := range sites {
		if parsed, ok := models.ParseCategory(string(cat)); !ok || parsed != cat {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownCategory, cat))
			continue
		}

		seen := make(map[string]struct{}, len(list))
		for i := range list {
			s := &list[i]
			if err := checkSite(cat, s); err != nil {
				errs = append(errs, fmt.Errorf("%s[%d] %q: %w", cat, i, s.ID, err))
				continue
			}
			if _, dup := seen[s.ID]; dup {
				errs = append(errs, fmt.Errorf("%s[%d]: %w: %q", cat, i, ErrDuplicateID, s.ID))
				continue
			}
			seen[s.ID] = struct{}{}
		}
		c.sites[cat] = slices.Clone(list)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func checkSite(cat models.Category, s *models.Site) error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidSite)
	case s.Details == nil:
		return fmt.Errorf("%w: missing %s payload", ErrInvalidSite, cat)
	case s.Category() != cat:
		return fmt.Errorf("%w: %s payload filed under %s", ErrInvalidSite, s.Category(), cat)
	case s.ViabilityScore < 0 || s.ViabilityScore > 100:
		return fmt.Errorf("%w: viability score %d outside [0,100]", ErrInvalidSite, s.ViabilityScore)
	case s.NearestGridKm < 0 || s.NearestHighwayKm < 0:
		return fmt.Errorf("%w: negative distance", ErrInvalidSite)
	case !s.Stage.ValidFor(cat):
		return fmt.Errorf("%w: stage %q not valid for %s", ErrInvalidSite, s.Stage, cat)
	}
	return nil
}

// RecordsFor returns the category's full list in catalog order. Unknown or
// empty categories give an empty, non-nil slice.
func (c *Catalog) RecordsFor(cat models.Category) []models.Site {
	list := c.sites[cat]
	if len(list) == 0 {
		return []models.Site{}
	}
	return slices.Clone(list)
}

func (c *Catalog) Find(cat models.Category, id string) (models.Site, bool) {
	for _, s := range c.sites[cat] {
		if s.ID == id {
			return s, true
		}
	}
	return models.Site{}, false
}

func (c *Catalog) Categories() []models.Category {
	return slices.Clone(models.SiteCategories)
}

func (c *Catalog) Len(cat models.Category) int {
	return len(c.sites[cat])
}

// Version identifies this snapshot. A reloaded catalog gets a new one even
// when its contents are equal.
func (c *Catalog) Version() string {
	return c.version
}

// DetailFields projects a site onto its category's detail rows. Absent
// optional values are left out rather than shown as zero.
func DetailFields(s models.Site) []models.Field {
	if s.Details == nil {
		return []models.Field{}
	}
	return s.Details.Fields()
}
