package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/siting-dashboard/internal/catalog"
	"github.com/mr1hm/siting-dashboard/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

var _ SiteRepository = (*SQLiteDB)(nil)

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sites (
			category TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			province TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			viability_score INTEGER NOT NULL,
			nearest_grid_km REAL NOT NULL,
			nearest_highway_km REAL NOT NULL,
			stage TEXT NOT NULL,
			details BLOB NOT NULL,
			PRIMARY KEY (category, id)
		);

		CREATE INDEX IF NOT EXISTS idx_sites_category_position ON sites(category, position);
  	`

	_, err := s.db.Exec(schema)
	return err
}

// details is the stored form of a payload, tagged with its variant.
type details struct {
	Kind models.Category `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func encodeDetails(p models.Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(details{Kind: p.Category(), Data: data})
}

func decodeDetails(raw []byte) (models.Payload, error) {
	var d details
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}

	var p models.Payload
	var err error
	switch d.Kind {
	case models.CategoryMining:
		var v models.Mining
		err = json.Unmarshal(d.Data, &v)
		p = v
	case models.CategoryDataCenter:
		var v models.DataCenter
		err = json.Unmarshal(d.Data, &v)
		p = v
	case models.CategoryHospital:
		var v models.Hospital
		err = json.Unmarshal(d.Data, &v)
		p = v
	case models.CategorySolar:
		var v models.Solar
		err = json.Unmarshal(d.Data, &v)
		p = v
	case models.CategoryManufacturing:
		var v models.Manufacturing
		err = json.Unmarshal(d.Data, &v)
		p = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayload, d.Kind)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ReplaceSnapshot swaps the stored catalog for c in one transaction.
func (s *SQLiteDB) ReplaceSnapshot(ctx context.Context, c *catalog.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sites`); err != nil {
		return fmt.Errorf("clearing sites: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sites (category, position, id, name, province, latitude, longitude,
			viability_score, nearest_grid_km, nearest_highway_km, stage, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, cat := range c.Categories() {
		for i, site := range c.RecordsFor(cat) {
			blob, err := encodeDetails(site.Details)
			if err != nil {
				return fmt.Errorf("encoding %s/%s details: %w", cat, site.ID, err)
			}
			_, err = stmt.ExecContext(ctx,
				string(cat), i, site.ID, site.Name, string(site.Province), site.Latitude, site.Longitude,
				site.ViabilityScore, site.NearestGridKm, site.NearestHighwayKm, string(site.Stage), blob,
			)
			if err != nil {
				return fmt.Errorf("inserting %s/%s: %w", cat, site.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// LoadCatalog rebuilds a catalog from the stored snapshot, running it through
// the same checks as any other source.
func (s *SQLiteDB) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, id, name, province, latitude, longitude,
			viability_score, nearest_grid_km, nearest_highway_km, stage, details
		FROM sites
		ORDER BY category, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	defer rows.Close()

	sites := make(map[models.Category][]models.Site)
	for rows.Next() {
		var (
			cat  models.Category
			site models.Site
			blob []byte
		)
		err := rows.Scan(&cat, &site.ID, &site.Name, &site.Province, &site.Latitude, &site.Longitude,
			&site.ViabilityScore, &site.NearestGridKm, &site.NearestHighwayKm, &site.Stage, &blob)
		if err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}

		site.Details, err = decodeDetails(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding %s/%s details: %w", cat, site.ID, err)
		}
		sites[cat] = append(sites[cat], site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sites: %w", err)
	}

	return catalog.New(sites)
}

func (s *SQLiteDB) Count(ctx context.Context, category models.Category) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sites WHERE category = ?`, string(category)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s sites: %w", category, err)
	}
	return n, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, category models.Category, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM sites WHERE category = ? AND id = ?)`, string(category), id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking %s/%s: %w", category, id, err)
	}
	return exists, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
