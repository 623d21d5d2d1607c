package db

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// runRetentionOnce performs a single pass of retention cleanup,
// deleting any load audit rows whose ExpiresAt is in the past.
func runRetentionOnce(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at IS NOT NULL AND expires_at <= ?", now).Delete(&DatasetLoad{})
	return res.RowsAffected, res.Error
}

// StartRetentionWorker launches a background goroutine that runs the
// retention cleanup once at startup and then once per day.
func StartRetentionWorker(db *gorm.DB) {
	go func() {
		if _, err := runRetentionOnce(db, time.Now()); err != nil {
			log.Printf("retention cleanup error (startup): %v", err)
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for t := range ticker.C {
			n, err := runRetentionOnce(db, t)
			if err != nil {
				log.Printf("retention cleanup error: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("retention cleanup removed %d load records", n)
			}
		}
	}()
}
