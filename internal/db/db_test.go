package db

import (
	"errors"
	"os"
	"testing"
	"time"

	"sustainapi/internal/config"
	"sustainapi/internal/dataset"
)

func TestNewDatasetLoadSuccess(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	res := &dataset.LoadResult{
		Records: []dataset.Record{
			{Building: "Rotunda", Year: 2020, MetricType: "historic"},
			{Building: "Rotunda", Year: 2021, MetricType: "historic"},
			{Building: "Clark Hall", Year: 2021, MetricType: "academic"},
		},
		Total:       4,
		Skipped:     1,
		Errors:      []string{"line 3: year is empty"},
		Columns:     []string{"building", "year", "energy_mmbtu"},
		Fingerprint: "abc123",
		Duration:    1500 * time.Millisecond,
	}

	row := NewDatasetLoad("metrics.csv", res, nil, 7, now)

	if row.Path != "metrics.csv" || row.Fingerprint != "abc123" {
		t.Errorf("unexpected identity fields %+v", row)
	}
	if row.Records != 3 || row.Total != 4 || row.Skipped != 1 {
		t.Errorf("unexpected counts %+v", row)
	}
	if row.Buildings != 2 {
		t.Errorf("expected 2 buildings, got %d", row.Buildings)
	}
	if row.DurationMs != 1500 {
		t.Errorf("expected 1500ms, got %d", row.DurationMs)
	}
	if row.Error != "" {
		t.Errorf("expected no error, got %q", row.Error)
	}
	if row.ExpiresAt == nil || !row.ExpiresAt.Equal(now.Add(7*24*time.Hour)) {
		t.Errorf("unexpected expiry %v", row.ExpiresAt)
	}
	types, ok := row.Details["metric_types"].(map[string]any)
	if !ok {
		t.Fatalf("expected metric_types map, got %T", row.Details["metric_types"])
	}
	if types["historic"] != 2 || types["academic"] != 1 {
		t.Errorf("unexpected metric type counts %v", types)
	}
	if _, ok := row.Details["row_errors"]; !ok {
		t.Error("expected row errors in details")
	}
}

func TestNewDatasetLoadFailure(t *testing.T) {
	loadErr := &dataset.LoadError{Path: "missing.csv", Err: errors.New("no such file")}
	row := NewDatasetLoad("missing.csv", nil, loadErr, 0, time.Now())

	if row.Error == "" {
		t.Error("expected error message to be recorded")
	}
	if row.ExpiresAt != nil {
		t.Error("expected no expiry when retention is disabled")
	}
	if row.Records != 0 || row.Fingerprint != "" {
		t.Errorf("expected empty stats, got %+v", row)
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	for _, url := range []string{"", "mysql://localhost/db", "  "} {
		if _, err := Connect(&config.Config{DatabaseURL: url}); err == nil {
			t.Errorf("expected error for %q", url)
		}
	}
}

func TestRecordAndListLoads(t *testing.T) {
	url := os.Getenv("APP_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("APP_TEST_DATABASE_URL not set")
	}
	gdb, err := Connect(&config.Config{DatabaseURL: url})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	res := &dataset.LoadResult{Records: []dataset.Record{{Building: "A", Year: 2020}}, Fingerprint: "fp-test"}
	if err := RecordLoad(gdb, "test.csv", res, nil, 1); err != nil {
		t.Fatalf("RecordLoad failed: %v", err)
	}
	rows, err := RecentLoads(gdb, 5)
	if err != nil {
		t.Fatalf("RecentLoads failed: %v", err)
	}
	if len(rows) == 0 || rows[0].Fingerprint != "fp-test" {
		t.Errorf("expected newest row to be ours, got %+v", rows)
	}

	if _, err := runRetentionOnce(gdb, time.Now().Add(48*time.Hour)); err != nil {
		t.Fatalf("retention failed: %v", err)
	}
}
