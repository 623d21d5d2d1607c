package query

import (
	"fmt"
	"sort"

	"sustainapi/internal/dataset"
)

// AggregateBy selects the grouping dimension for Aggregate.
type AggregateBy string

const (
	ByYear       AggregateBy = "year"
	ByMetricType AggregateBy = "metric_type"
)

// ValidationError describes a rejected input parameter.
type ValidationError struct {
	Param string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s parameter: %s. %s", e.Param, e.Value, e.Msg)
}

// ParseAggregateBy validates a grouping name. An empty value means ByYear.
func ParseAggregateBy(s string) (AggregateBy, error) {
	switch AggregateBy(s) {
	case "", ByYear:
		return ByYear, nil
	case ByMetricType:
		return ByMetricType, nil
	}
	return "", &ValidationError{
		Param: "aggregate_by",
		Value: s,
		Msg:   `Use "year" or "metric_type"`,
	}
}

// Group is one aggregation bucket. Exactly one of Year and MetricType is set.
type Group struct {
	Year       *int    `json:"year,omitempty" yaml:"year,omitempty"`
	MetricType *string `json:"metric_type,omitempty" yaml:"metric_type,omitempty"`

	EnergyKWh    float64 `json:"energy_consumption_kwh" yaml:"energy_consumption_kwh"`
	WaterGallons float64 `json:"water_consumption_gallons" yaml:"water_consumption_gallons"`
	WasteLbs     float64 `json:"waste_diverted_lbs" yaml:"waste_diverted_lbs"`
	CO2Tons      float64 `json:"co2_emissions_tons" yaml:"co2_emissions_tons"`

	// TotalBuildings counts distinct building names, not records.
	TotalBuildings int `json:"total_buildings" yaml:"total_buildings"`
	Records        int `json:"records" yaml:"records"`
}

// DateRange is the inclusive span of years present in a record set.
type DateRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

type groupKey struct {
	year       int
	metricType string
}

// Aggregate sums the metrics of records per group, in one pass over the
// input order, and returns the non-empty groups sorted by key ascending.
func Aggregate(records []dataset.Record, by AggregateBy) []Group {
	type acc struct {
		group     Group
		buildings map[string]struct{}
	}
	groups := make(map[groupKey]*acc)
	keys := make([]groupKey, 0)

	for _, r := range records {
		var k groupKey
		if by == ByMetricType {
			k.metricType = r.MetricType
		} else {
			k.year = r.Year
		}
		a, ok := groups[k]
		if !ok {
			a = &acc{buildings: make(map[string]struct{})}
			if by == ByMetricType {
				mt := r.MetricType
				a.group.MetricType = &mt
			} else {
				y := r.Year
				a.group.Year = &y
			}
			groups[k] = a
			keys = append(keys, k)
		}
		a.group.EnergyKWh += r.EnergyKWh
		a.group.WaterGallons += r.WaterGallons
		a.group.WasteLbs += r.WasteLbs
		a.group.CO2Tons += r.CO2Tons
		a.group.Records++
		a.buildings[r.Building] = struct{}{}
	}

	sort.Slice(keys, func(i, j int) bool {
		if by == ByMetricType {
			return keys[i].metricType < keys[j].metricType
		}
		return keys[i].year < keys[j].year
	})

	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		a := groups[k]
		a.group.TotalBuildings = len(a.buildings)
		out = append(out, a.group)
	}
	return out
}

// Span returns the min and max year in records; ok is false when records is
// empty.
func Span(records []dataset.Record) (r DateRange, ok bool) {
	for i, rec := range records {
		if i == 0 || rec.Year < r.Start {
			r.Start = rec.Year
		}
		if i == 0 || rec.Year > r.End {
			r.End = rec.Year
		}
	}
	return r, len(records) > 0
}
