package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mr1hm/siting-dashboard/internal/models"
)

//go:embed fixtures/catalog.yaml
var defaultSnapshot []byte

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// siteRecord is the on-disk shape of a site: the shared columns plus exactly
// one variant block named after the category.
type siteRecord struct {
	ID               string  `yaml:"id" validate:"required"`
	Name             string  `yaml:"name" validate:"required"`
	Province         string  `yaml:"province" validate:"required,oneof=ON QC BC AB SK MB NS NB NL PE YT NT NU"`
	Latitude         float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
	ViabilityScore   int     `yaml:"viability_score" validate:"gte=0,lte=100"`
	NearestGridKm    float64 `yaml:"nearest_grid_km" validate:"gte=0"`
	NearestHighwayKm float64 `yaml:"nearest_highway_km" validate:"gte=0"`
	Stage            string  `yaml:"stage" validate:"required"`

	Mining        *models.Mining        `yaml:"mining"`
	DataCenter    *models.DataCenter    `yaml:"datacenter"`
	Hospital      *models.Hospital      `yaml:"hospital"`
	Solar         *models.Solar         `yaml:"solar"`
	Manufacturing *models.Manufacturing `yaml:"manufacturing"`
}

type snapshot struct {
	Sites map[string][]siteRecord `yaml:"sites"`
}

// Default parses the catalog snapshot compiled into the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultSnapshot))
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog snapshot: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes a YAML snapshot and validates every record. All problems are
// reported together; nothing is returned unless the whole snapshot is valid.
func Load(r io.Reader) (*Catalog, error) {
	var snap snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	sites := make(map[models.Category][]models.Site, len(snap.Sites))
	var errs []error
	for key, records := range snap.Sites {
		cat, ok := models.ParseCategory(key)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownCategory, key))
			continue
		}

		list := make([]models.Site, 0, len(records))
		for i, rec := range records {
			site, err := rec.toSite(cat)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s[%d] %q: %w", cat, i, rec.ID, err))
				continue
			}
			list = append(list, site)
		}
		sites[cat] = list
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return New(sites)
}

func (rec siteRecord) toSite(cat models.Category) (models.Site, error) {
	if err := validate.Struct(rec); err != nil {
		return models.Site{}, formatValidationError(err)
	}

	details, err := rec.payload(cat)
	if err != nil {
		return models.Site{}, err
	}

	province, _ := models.ParseProvince(rec.Province)
	return models.Site{
		ID:               rec.ID,
		Name:             rec.Name,
		Province:         province,
		Latitude:         rec.Latitude,
		Longitude:        rec.Longitude,
		ViabilityScore:   rec.ViabilityScore,
		NearestGridKm:    rec.NearestGridKm,
		NearestHighwayKm: rec.NearestHighwayKm,
		Stage:            models.Stage(rec.Stage),
		Details:          details,
	}, nil
}

func (rec siteRecord) payload(cat models.Category) (models.Payload, error) {
	var found []models.Payload
	if rec.Mining != nil {
		found = append(found, *rec.Mining)
	}
	if rec.DataCenter != nil {
		found = append(found, *rec.DataCenter)
	}
	if rec.Hospital != nil {
		found = append(found, *rec.Hospital)
	}
	if rec.Solar != nil {
		found = append(found, *rec.Solar)
	}
	if rec.Manufacturing != nil {
		found = append(found, *rec.Manufacturing)
	}

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("%w: missing %s block", ErrInvalidSite, cat)
	case len(found) > 1:
		return nil, fmt.Errorf("%w: %d payload blocks, want exactly one", ErrInvalidSite, len(found))
	case found[0].Category() != cat:
		return nil, fmt.Errorf("%w: %s block filed under %s", ErrInvalidSite, found[0].Category(), cat)
	}
	return found[0], nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}

		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: field is required", field))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s (got %v)", field, e.Param(), e.Value()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s: must not exceed %s (got %v)", field, e.Param(), e.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: %v is not one of [%s]", field, e.Value(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidSite, strings.Join(msgs, "; "))
}
