package models

import "strings"

type Category string

const (
	CategoryMining        Category = "mining"
	CategoryDataCenter    Category = "datacenter"
	CategoryHospital      Category = "hospital"
	CategorySolar         Category = "solar"
	CategoryManufacturing Category = "manufacturing"
)

// SiteCategories is the fixed catalog order.
var SiteCategories = []Category{
	CategoryMining,
	CategoryDataCenter,
	CategoryHospital,
	CategorySolar,
	CategoryManufacturing,
}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SiteCategories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

type Province string

const (
	ProvinceON Province = "ON"
	ProvinceQC Province = "QC"
	ProvinceBC Province = "BC"
	ProvinceAB Province = "AB"
	ProvinceSK Province = "SK"
	ProvinceMB Province = "MB"
	ProvinceNS Province = "NS"
	ProvinceNB Province = "NB"
	ProvinceNL Province = "NL"
	ProvincePE Province = "PE"
	ProvinceYT Province = "YT"
	ProvinceNT Province = "NT"
	ProvinceNU Province = "NU"
)

var Provinces = []Province{
	ProvinceON, ProvinceQC, ProvinceBC, ProvinceAB, ProvinceSK, ProvinceMB, ProvinceNS,
	ProvinceNB, ProvinceNL, ProvincePE, ProvinceYT, ProvinceNT, ProvinceNU,
}

func ParseProvince(s string) (Province, bool) {
	p := Province(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Provinces {
		if p == known {
			return p, true
		}
	}
	return "", false
}

type Stage string

const (
	// mining lifecycle
	StageExploration Stage = "exploration"
	StageDevelopment Stage = "development"
	StageProduction  Stage = "production"

	// every other category
	StageOpportunity  Stage = "opportunity"
	StagePlanning     Stage = "planning"
	StageConstruction Stage = "construction"
	StageOperational  Stage = "operational"
)

var (
	miningStages  = []Stage{StageExploration, StageDevelopment, StageProduction}
	projectStages = []Stage{StageOpportunity, StagePlanning, StageConstruction, StageOperational}
)

// StagesFor returns the lifecycle, in order, that applies to sites of the category.
func StagesFor(c Category) []Stage {
	if c == CategoryMining {
		return miningStages
	}
	return projectStages
}

func (s Stage) ValidFor(c Category) bool {
	for _, st := range StagesFor(c) {
		if s == st {
			return true
		}
	}
	return false
}

type Site struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Province         Province `json:"province"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	ViabilityScore   int      `json:"viability_score"` // 0-100, produced upstream
	NearestGridKm    float64  `json:"nearest_grid_km"`
	NearestHighwayKm float64  `json:"nearest_highway_km"`
	Stage            Stage    `json:"stage"`
	Details          Payload  `json:"details"` // category-specific variant, also the category discriminant
}

// Category is read from the payload variant so the two can never disagree.
func (s *Site) Category() Category {
	if s.Details == nil {
		return ""
	}
	return s.Details.Category()
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (s *Site) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
	}
}
