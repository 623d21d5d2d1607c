package dataset

import "strings"

// Record is one building-month-year sustainability observation. Derived
// fields are computed once at load time and never change afterwards.
type Record struct {
	Building string `json:"building" yaml:"building"`
	Year     int    `json:"year" yaml:"year"`
	// Month is nil for yearly rollups and sources without a month column.
	Month *int `json:"month" yaml:"month,omitempty"`

	EnergyKWh    float64 `json:"energy_consumption_kwh" yaml:"energy_consumption_kwh"`
	WaterGallons float64 `json:"water_consumption_gallons" yaml:"water_consumption_gallons"`
	WasteLbs     float64 `json:"waste_diverted_lbs" yaml:"waste_diverted_lbs"`
	CO2Tons      float64 `json:"co2_emissions_tons" yaml:"co2_emissions_tons"`
	GrossSqFt    float64 `json:"gross_square_feet" yaml:"gross_square_feet"`
	Occupancy    float64 `json:"occupancy" yaml:"occupancy"`
	PrimaryUse   string  `json:"primary_use" yaml:"primary_use"`
	MetricType   string  `json:"metric_type" yaml:"metric_type"`
}

// Known metric_type categories.
const (
	MetricAcademic       = "academic"
	MetricStudentLife    = "student_life"
	MetricAthletic       = "athletic"
	MetricHealthcare     = "healthcare"
	MetricAdministrative = "administrative"
	MetricHistoric       = "historic"
	MetricOther          = "other"
)

// primaryUseCategories is checked in order; the first keyword contained in
// the primary_use text wins.
var primaryUseCategories = []struct {
	keyword  string
	category string
}{
	{"academic", MetricAcademic},
	{"multi-use", MetricStudentLife},
	{"multi-purpose", MetricStudentLife},
	{"fitness", MetricAthletic},
	{"medical", MetricHealthcare},
	{"dining", MetricStudentLife},
	{"office", MetricAdministrative},
	{"administrative", MetricAdministrative},
	{"historic", MetricHistoric},
}

// MetricTypeFor maps a free-text primary use onto a metric_type category.
// Blank and placeholder values map to "other"; anything unrecognised passes
// through lower-cased.
func MetricTypeFor(primaryUse string) string {
	v := strings.ToLower(strings.TrimSpace(primaryUse))
	if isMissing(v) {
		return MetricOther
	}
	for _, c := range primaryUseCategories {
		if strings.Contains(v, c.keyword) {
			return c.category
		}
	}
	return v
}

// isMissing reports whether a raw cell carries no value. The source
// spreadsheets use "..." for cells that were never filled in.
func isMissing(v string) bool {
	return v == "" || v == "..."
}
