package query

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"sustainapi/internal/dataset"
)

func intPtr(v int) *int { return &v }

func sampleRecords() []dataset.Record {
	return []dataset.Record{
		{Building: "Alderman Library", Year: 2021, EnergyKWh: 10, MetricType: "academic"},
		{Building: "Rotunda", Year: 2021, EnergyKWh: 20, MetricType: "historic"},
		{Building: "Clark Library", Year: 2022, EnergyKWh: 30, MetricType: "academic"},
		{Building: "Alderman Library", Year: 2022, EnergyKWh: 40, MetricType: "academic"},
		{Building: "Newcomb Hall", Year: 2022, EnergyKWh: 50, MetricType: "student_life"},
	}
}

// randomRecords builds a deterministic pseudo-random record set.
func randomRecords(n int) []dataset.Record {
	rng := rand.New(rand.NewSource(42))
	names := []string{"Alderman Library", "Rotunda", "Clark Hall", "Newcomb Hall", "Gilmer Hall", "ÉCOLE Annex"}
	types := []string{"academic", "historic", "student_life", "athletic"}
	out := make([]dataset.Record, n)
	for i := range out {
		out[i] = dataset.Record{
			Building:   names[rng.Intn(len(names))],
			Year:       2018 + rng.Intn(5),
			EnergyKWh:  float64(rng.Intn(100000)),
			MetricType: types[rng.Intn(len(types))],
		}
	}
	return out
}

func TestFilterNoParamsReturnsAllInOrder(t *testing.T) {
	recs := sampleRecords()
	got := Filter(recs, Params{})
	if len(got) != len(recs) {
		t.Fatalf("expected %d records, got %d", len(recs), len(got))
	}
	for i := range recs {
		if got[i] != recs[i] {
			t.Errorf("position %d: expected %+v, got %+v", i, recs[i], got[i])
		}
	}
}

func TestFilterBuildingSubstringIgnoresCase(t *testing.T) {
	got := Filter(sampleRecords(), Params{Building: "LIBRARY"})
	if len(got) != 3 {
		t.Fatalf("expected 3 library records, got %d", len(got))
	}
	for _, r := range got {
		if !strings.Contains(strings.ToLower(r.Building), "library") {
			t.Errorf("unexpected match %s", r.Building)
		}
	}
}

func TestFilterBuildingAndYear(t *testing.T) {
	got := Filter(sampleRecords(), Params{Building: "alderman", Year: intPtr(2022)})
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].EnergyKWh != 40 {
		t.Errorf("expected the 2022 Alderman record, got %+v", got[0])
	}
}

func TestFilterNoMatchIsEmptyNotNil(t *testing.T) {
	got := Filter(sampleRecords(), Params{Year: intPtr(1999)})
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestFilterBuildingProperty(t *testing.T) {
	recs := randomRecords(500)
	for _, needle := range []string{"hall", "LIB", "a", "rotunda", "école", "zzz"} {
		in := Filter(recs, Params{Building: needle})
		lower := strings.ToLower(needle)
		matched := 0
		for _, r := range recs {
			if strings.Contains(strings.ToLower(r.Building), lower) {
				matched++
			}
		}
		if matched != len(in) {
			t.Errorf("%q: expected %d matches, got %d", needle, matched, len(in))
		}
		for _, r := range in {
			if !strings.Contains(strings.ToLower(r.Building), lower) {
				t.Errorf("%q: %s should not match", needle, r.Building)
			}
		}
	}
}

func TestFilterYearPartitionsRecords(t *testing.T) {
	recs := randomRecords(500)
	for year := 2017; year <= 2023; year++ {
		in := Filter(recs, Params{Year: intPtr(year)})
		for _, r := range in {
			if r.Year != year {
				t.Fatalf("year %d: got record from %d", year, r.Year)
			}
		}
		out := 0
		for _, r := range recs {
			if r.Year != year {
				out++
			}
		}
		if len(in)+out != len(recs) {
			t.Errorf("year %d: %d in + %d out != %d", year, len(in), out, len(recs))
		}
	}
}

func TestLookupBuilding(t *testing.T) {
	recs := sampleRecords()

	got, err := LookupBuilding(recs, "alderman library", nil)
	if err != nil {
		t.Fatalf("LookupBuilding failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for _, r := range got {
		if r.Building != "Alderman Library" {
			t.Errorf("unexpected building %s", r.Building)
		}
	}
}

func TestLookupBuildingIsNotSubstring(t *testing.T) {
	_, err := LookupBuilding(sampleRecords(), "Alderman", nil)
	if !errors.Is(err, ErrBuildingNotFound) {
		t.Fatalf("expected ErrBuildingNotFound, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Building != "Alderman" {
		t.Errorf("expected NotFoundError for Alderman, got %v", err)
	}
}

func TestLookupBuildingKnownNameWrongYear(t *testing.T) {
	got, err := LookupBuilding(sampleRecords(), "Rotunda", intPtr(2022))
	if err != nil {
		t.Fatalf("expected no error for a known building, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestBuildingsAndYears(t *testing.T) {
	recs := sampleRecords()
	b := Buildings(recs)
	want := []string{"Alderman Library", "Clark Library", "Newcomb Hall", "Rotunda"}
	if fmt.Sprint(b) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, b)
	}
	y := Years(recs)
	if fmt.Sprint(y) != "[2021 2022]" {
		t.Errorf("expected [2021 2022], got %v", y)
	}
}
