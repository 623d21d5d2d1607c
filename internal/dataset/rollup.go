package dataset

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
)

// ProcessedHeader is the column layout written by WriteCSV and served by the API.
var ProcessedHeader = []string{
	"building",
	"year",
	"energy_consumption_kwh",
	"water_consumption_gallons",
	"waste_diverted_lbs",
	"co2_emissions_tons",
	"gross_square_feet",
	"occupancy",
	"primary_use",
	"metric_type",
}

// Rollup collapses monthly records into one record per (building, year),
// sorted by building then year. Energy is summed and the derived metrics are
// recomputed from the yearly total. Descriptive fields come from the first
// record that has them.
func Rollup(records []Record) []Record {
	type key struct {
		building string
		year     int
	}
	groups := make(map[key]*Record)
	for _, r := range records {
		k := key{r.Building, r.Year}
		agg, ok := groups[k]
		if !ok {
			agg = &Record{Building: r.Building, Year: r.Year}
			groups[k] = agg
		}
		agg.EnergyKWh += r.EnergyKWh
		if agg.PrimaryUse == "" && !isMissing(r.PrimaryUse) {
			agg.PrimaryUse = r.PrimaryUse
		}
		if agg.GrossSqFt == 0 {
			agg.GrossSqFt = r.GrossSqFt
		}
		if agg.Occupancy == 0 {
			agg.Occupancy = r.Occupancy
		}
	}

	out := make([]Record, 0, len(groups))
	for _, agg := range groups {
		derive(agg)
		agg.MetricType = MetricTypeFor(agg.PrimaryUse)
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Building != out[j].Building {
			return out[i].Building < out[j].Building
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// WriteCSV writes records in the processed layout.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProcessedHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Building,
			strconv.Itoa(r.Year),
			formatNumber(r.EnergyKWh),
			formatNumber(r.WaterGallons),
			formatNumber(r.WasteLbs),
			formatNumber(r.CO2Tons),
			formatNumber(r.GrossSqFt),
			formatNumber(r.Occupancy),
			r.PrimaryUse,
			r.MetricType,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
