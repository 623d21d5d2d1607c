package db

import (
	"time"

	"gorm.io/datatypes"
)

// DatasetLoad records one attempt to load the metrics source, successful or
// not. Rows are written once per process start and never updated.
type DatasetLoad struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time

	// ExpiresAt is the timestamp after which this row is eligible for
	// deletion by the retention worker.
	ExpiresAt *time.Time `gorm:"index"`

	Path        string `gorm:"size:512;not null"`
	Fingerprint string `gorm:"size:64;index"`

	Total      int
	Records    int
	Skipped    int
	Buildings  int
	DurationMs int64

	// Error is empty for successful loads.
	Error string `gorm:"size:1024"`

	// Details holds the header, per-metric_type record counts and the first
	// row errors, so the shape of the source can be inspected later.
	Details datatypes.JSONMap `gorm:"type:json"`
}
