package repository

import (
	"context"
	"errors"

	"github.com/mr1hm/siting-dashboard/internal/catalog"
	"github.com/mr1hm/siting-dashboard/internal/models"
)

var ErrUnknownPayload = errors.New("unknown payload kind")

// SiteRepository persists catalog snapshots. A snapshot is always written and
// read whole; the engine never sees a partially stored catalog.
type SiteRepository interface {
	ReplaceSnapshot(ctx context.Context, c *catalog.Catalog) error
	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)
	Count(ctx context.Context, category models.Category) (int, error)
	Exists(ctx context.Context, category models.Category, id string) (bool, error)
}
