package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestPayload_CategoryMatchesVariant(t *testing.T) {
	cases := map[Category]Payload{
		CategoryMining:        Mining{MineralType: "Nickel"},
		CategoryDataCenter:    DataCenter{Tier: "Tier III", AveragePUE: 1.2},
		CategoryHospital:      Hospital{HospitalType: "Regional"},
		CategorySolar:         Solar{Technology: "Bifacial PV"},
		CategoryManufacturing: Manufacturing{Sector: "Battery Cells"},
	}
	require.Len(t, cases, len(SiteCategories))

	for want, p := range cases {
		site := Site{ID: "x", Details: p}
		assert.Equal(t, want, site.Category())
		assert.NotEmpty(t, p.Fields(), "category %s has no detail fields", want)
	}
}

func TestSite_CategoryWithoutPayload(t *testing.T) {
	var s Site
	assert.Equal(t, Category(""), s.Category())
}

func TestMining_OptionalFieldsOmitted(t *testing.T) {
	bare := Mining{MineralType: "Lithium"}.Fields()
	require.Len(t, bare, 1)
	assert.Equal(t, Field{Label: "Mineral Type", Value: "Lithium"}, bare[0])

	full := Mining{MineralType: "Lithium", NPVMillions: ptr(1250), IRRPercent: ptr(21.5)}.Fields()
	assert.Equal(t, []Field{
		{Label: "Mineral Type", Value: "Lithium"},
		{Label: "NPV", Value: "$1,250M"},
		{Label: "IRR", Value: "21.5%"},
	}, full)
}

func TestDataCenter_Fields(t *testing.T) {
	got := DataCenter{PowerCapacityMW: 1200, Tier: "Tier IV", RenewableEnergyPercent: 95, AveragePUE: 1.15}.Fields()
	assert.Equal(t, []Field{
		{Label: "Power Capacity", Value: "1,200 MW"},
		{Label: "Tier", Value: "Tier IV"},
		{Label: "Renewable %", Value: "95%"},
		{Label: "Average PUE", Value: "1.15"},
	}, got)
}

func TestHospital_Fields(t *testing.T) {
	got := Hospital{ProposedBeds: 450, HospitalType: "Acute Care", TargetPopulation: 325000}.Fields()
	assert.Equal(t, "Target Population", got[2].Label)
	assert.Equal(t, "325,000", got[2].Value)
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory(" DataCenter ")
	assert.True(t, ok)
	assert.Equal(t, CategoryDataCenter, c)

	_, ok = ParseCategory("airport")
	assert.False(t, ok)
}

func TestParseProvince(t *testing.T) {
	p, ok := ParseProvince("qc")
	assert.True(t, ok)
	assert.Equal(t, ProvinceQC, p)

	_, ok = ParseProvince("ZZ")
	assert.False(t, ok)
}

func TestStage_ValidFor(t *testing.T) {
	assert.True(t, StageProduction.ValidFor(CategoryMining))
	assert.False(t, StageProduction.ValidFor(CategorySolar))
	assert.True(t, StageOperational.ValidFor(CategoryHospital))
	assert.False(t, StageOpportunity.ValidFor(CategoryMining))
}
