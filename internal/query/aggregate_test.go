package query

import (
	"errors"
	"testing"

	"sustainapi/internal/dataset"
)

func TestAggregateByYearSeparatesYears(t *testing.T) {
	recs := []dataset.Record{
		{Building: "Rotunda", Year: 2020, EnergyKWh: 100},
		{Building: "Rotunda", Year: 2021, EnergyKWh: 200},
	}

	got := Aggregate(recs, ByYear)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if *got[0].Year != 2020 || got[0].EnergyKWh != 100 || got[0].TotalBuildings != 1 {
		t.Errorf("unexpected first group %+v", got[0])
	}
	if *got[1].Year != 2021 || got[1].EnergyKWh != 200 || got[1].TotalBuildings != 1 {
		t.Errorf("unexpected second group %+v", got[1])
	}
	if got[0].MetricType != nil {
		t.Error("year groups should not carry a metric_type")
	}
}

func TestAggregateCountsDistinctBuildings(t *testing.T) {
	recs := []dataset.Record{
		{Building: "Rotunda", Year: 2022, EnergyKWh: 10},
		{Building: "Clark Hall", Year: 2022, EnergyKWh: 20},
		{Building: "Rotunda", Year: 2022, EnergyKWh: 30},
	}

	got := Aggregate(recs, ByYear)
	if len(got) != 1 {
		t.Fatalf("expected 1 group, got %d", len(got))
	}
	g := got[0]
	if g.EnergyKWh != 60 {
		t.Errorf("expected energy 60, got %v", g.EnergyKWh)
	}
	if g.TotalBuildings != 2 {
		t.Errorf("expected 2 buildings, got %d", g.TotalBuildings)
	}
	if g.Records != 3 {
		t.Errorf("expected 3 records, got %d", g.Records)
	}
}

func TestAggregateByMetricTypeSortsLexically(t *testing.T) {
	got := Aggregate(sampleRecords(), ByMetricType)
	want := []string{"academic", "historic", "student_life"}
	if len(got) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].MetricType == nil || *got[i].MetricType != w {
			t.Errorf("position %d: expected %s, got %+v", i, w, got[i])
		}
		if got[i].Year != nil {
			t.Errorf("metric_type groups should not carry a year")
		}
	}
	// Alderman twice and Clark once.
	if got[0].EnergyKWh != 80 || got[0].TotalBuildings != 2 || got[0].Records != 3 {
		t.Errorf("unexpected academic group %+v", got[0])
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	got := Aggregate(nil, ByYear)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
}

func TestAggregateInvariants(t *testing.T) {
	recs := randomRecords(1000)
	for _, by := range []AggregateBy{ByYear, ByMetricType} {
		groups := Aggregate(recs, by)

		var groupTotal, inputTotal float64
		for _, r := range recs {
			inputTotal += r.EnergyKWh
		}
		records := 0
		for i, g := range groups {
			groupTotal += g.EnergyKWh
			records += g.Records
			if g.Records == 0 {
				t.Errorf("%s: empty group emitted", by)
			}
			if g.TotalBuildings > g.Records {
				t.Errorf("%s: %d buildings > %d records", by, g.TotalBuildings, g.Records)
			}
			if i == 0 {
				continue
			}
			prev := groups[i-1]
			if by == ByYear && *prev.Year >= *g.Year {
				t.Errorf("year groups out of order: %d then %d", *prev.Year, *g.Year)
			}
			if by == ByMetricType && *prev.MetricType >= *g.MetricType {
				t.Errorf("metric groups out of order: %s then %s", *prev.MetricType, *g.MetricType)
			}
		}
		// Integral kWh values keep the float sums exact.
		if groupTotal != inputTotal {
			t.Errorf("%s: energy not conserved, %v != %v", by, groupTotal, inputTotal)
		}
		if records != len(recs) {
			t.Errorf("%s: %d records grouped, want %d", by, records, len(recs))
		}
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	recs := randomRecords(300)
	for i := range recs {
		recs[i].CO2Tons = float64(i) * 0.1
	}
	a := Aggregate(recs, ByYear)
	b := Aggregate(recs, ByYear)
	for i := range a {
		if a[i].CO2Tons != b[i].CO2Tons || a[i].EnergyKWh != b[i].EnergyKWh {
			t.Fatalf("group %d differs between runs", i)
		}
	}
}

func TestParseAggregateBy(t *testing.T) {
	tests := []struct {
		in      string
		want    AggregateBy
		wantErr bool
	}{
		{"", ByYear, false},
		{"year", ByYear, false},
		{"metric_type", ByMetricType, false},
		{"building", "", true},
		{"YEAR", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAggregateBy(tt.in)
		if tt.wantErr {
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("%q: expected ValidationError, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: expected %s, got %s (%v)", tt.in, tt.want, got, err)
		}
	}
}

func TestSpan(t *testing.T) {
	if _, ok := Span(nil); ok {
		t.Error("expected no span for empty input")
	}
	r, ok := Span(sampleRecords())
	if !ok || r.Start != 2021 || r.End != 2022 {
		t.Errorf("expected 2021-2022, got %+v (ok=%v)", r, ok)
	}
}
