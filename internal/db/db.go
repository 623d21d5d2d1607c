package db

import (
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sustainapi/internal/config"
	"sustainapi/internal/dataset"
	"sustainapi/internal/query"
)

// Connect opens a GORM database connection using APP_DATABASE_URL (PostgreSQL URL).
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
	// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&DatasetLoad{}); err != nil {
		return nil, err
	}

	return db, nil
}

// NewDatasetLoad builds the audit row for one load attempt. res may be nil
// when loadErr is set.
func NewDatasetLoad(path string, res *dataset.LoadResult, loadErr error, retentionDays int, now time.Time) DatasetLoad {
	row := DatasetLoad{
		CreatedAt: now,
		Path:      path,
		Details:   datatypes.JSONMap{},
	}
	if retentionDays > 0 {
		t := now.Add(time.Duration(retentionDays) * 24 * time.Hour)
		row.ExpiresAt = &t
	}
	if loadErr != nil {
		row.Error = truncate(loadErr.Error(), 1024)
	}
	if res == nil {
		return row
	}

	row.Fingerprint = res.Fingerprint
	row.Total = res.Total
	row.Records = len(res.Records)
	row.Skipped = res.Skipped
	row.Buildings = len(query.Buildings(res.Records))
	row.DurationMs = res.Duration.Milliseconds()

	types := make(map[string]any)
	for _, r := range res.Records {
		n, _ := types[r.MetricType].(int)
		types[r.MetricType] = n + 1
	}
	row.Details["columns"] = res.Columns
	row.Details["metric_types"] = types
	if len(res.Errors) > 0 {
		row.Details["row_errors"] = res.Errors
	}
	return row
}

// RecordLoad persists the audit row for a load attempt.
func RecordLoad(db *gorm.DB, path string, res *dataset.LoadResult, loadErr error, retentionDays int) error {
	row := NewDatasetLoad(path, res, loadErr, retentionDays, time.Now())
	return db.Create(&row).Error
}

// LoadRecorder returns a dataset.Observer that persists each load attempt.
// Write failures are logged; they never affect serving.
func LoadRecorder(db *gorm.DB, retentionDays int) dataset.Observer {
	return func(path string, res *dataset.LoadResult, loadErr error) {
		if err := RecordLoad(db, path, res, loadErr, retentionDays); err != nil {
			log.Printf("failed to record dataset load: %v", err)
		}
	}
}

// RecentLoads returns up to limit audit rows, newest first.
func RecentLoads(db *gorm.DB, limit int) ([]DatasetLoad, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []DatasetLoad
	if err := db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
