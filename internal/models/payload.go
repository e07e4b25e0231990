package models

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Field is one label/value row of a site's category-specific detail panel.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Payload is the category-specific part of a Site. The set of variants is
// closed: each one has to implement Fields, so a new category that forgets
// its detail projection does not compile as a Payload.
type Payload interface {
	Category() Category
	Fields() []Field
	payload()
}

type Mining struct {
	MineralType string   `json:"mineral_type" yaml:"mineral_type" validate:"required"`
	NPVMillions *float64 `json:"npv_millions,omitempty" yaml:"npv_millions"`
	IRRPercent  *float64 `json:"irr_percent,omitempty" yaml:"irr_percent"`
}

type DataCenter struct {
	PowerCapacityMW        float64 `json:"power_capacity_mw" yaml:"power_capacity_mw" validate:"gte=0"`
	Tier                   string  `json:"tier" yaml:"tier" validate:"required"`
	RenewableEnergyPercent float64 `json:"renewable_energy_percent" yaml:"renewable_energy_percent" validate:"gte=0,lte=100"`
	AveragePUE             float64 `json:"average_pue" yaml:"average_pue" validate:"gte=1"`
}

type Hospital struct {
	ProposedBeds     int    `json:"proposed_beds" yaml:"proposed_beds" validate:"gte=0"`
	HospitalType     string `json:"hospital_type" yaml:"hospital_type" validate:"required"`
	TargetPopulation int    `json:"target_population" yaml:"target_population" validate:"gte=0"`
}

type Solar struct {
	CapacityMW         float64 `json:"capacity_mw" yaml:"capacity_mw" validate:"gte=0"`
	Technology         string  `json:"technology" yaml:"technology" validate:"required"`
	EstimatedAnnualGWh float64 `json:"estimated_annual_gwh" yaml:"estimated_annual_gwh" validate:"gte=0"`
}

type Manufacturing struct {
	Sector             string  `json:"sector" yaml:"sector" validate:"required"`
	JobsCreated        int     `json:"jobs_created" yaml:"jobs_created" validate:"gte=0"`
	PowerRequirementMW float64 `json:"power_requirement_mw" yaml:"power_requirement_mw" validate:"gte=0"`
}

func (Mining) Category() Category        { return CategoryMining }
func (DataCenter) Category() Category    { return CategoryDataCenter }
func (Hospital) Category() Category      { return CategoryHospital }
func (Solar) Category() Category         { return CategorySolar }
func (Manufacturing) Category() Category { return CategoryManufacturing }

func (Mining) payload()        {}
func (DataCenter) payload()    {}
func (Hospital) payload()      {}
func (Solar) payload()         {}
func (Manufacturing) payload() {}

func (m Mining) Fields() []Field {
	fields := []Field{{Label: "Mineral Type", Value: m.MineralType}}
	// NPV and IRR are only known once a feasibility study exists
	if m.NPVMillions != nil {
		fields = append(fields, Field{Label: "NPV", Value: "$" + humanize.Commaf(*m.NPVMillions) + "M"})
	}
	if m.IRRPercent != nil {
		fields = append(fields, Field{Label: "IRR", Value: fmt.Sprintf("%.1f%%", *m.IRRPercent)})
	}
	return fields
}

func (d DataCenter) Fields() []Field {
	return []Field{
		{Label: "Power Capacity", Value: megawatts(d.PowerCapacityMW)},
		{Label: "Tier", Value: d.Tier},
		{Label: "Renewable %", Value: fmt.Sprintf("%.0f%%", d.RenewableEnergyPercent)},
		{Label: "Average PUE", Value: fmt.Sprintf("%.2f", d.AveragePUE)},
	}
}

func (h Hospital) Fields() []Field {
	return []Field{
		{Label: "Proposed Beds", Value: humanize.Comma(int64(h.ProposedBeds))},
		{Label: "Hospital Type", Value: h.HospitalType},
		{Label: "Target Population", Value: humanize.Comma(int64(h.TargetPopulation))},
	}
}

func (s Solar) Fields() []Field {
	return []Field{
		{Label: "Capacity", Value: megawatts(s.CapacityMW)},
		{Label: "Technology", Value: s.Technology},
		{Label: "Est. Annual Generation", Value: humanize.Commaf(s.EstimatedAnnualGWh) + " GWh"},
	}
}

func (m Manufacturing) Fields() []Field {
	return []Field{
		{Label: "Sector", Value: m.Sector},
		{Label: "Jobs Created", Value: humanize.Comma(int64(m.JobsCreated))},
		{Label: "Power Requirement", Value: megawatts(m.PowerRequirementMW)},
	}
}

func megawatts(v float64) string {
	return humanize.Commaf(v) + " MW"
}
