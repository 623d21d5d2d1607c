package handlers

import (
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"sustainapi/internal/dataset"
	dbpkg "sustainapi/internal/db"
	"sustainapi/internal/query"
)

type loadSummary struct {
	ID          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Records     int       `json:"records"`
	Skipped     int       `json:"skipped"`
	Buildings   int       `json:"buildings"`
	DurationMs  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
}

// DatasetInfo serves GET /api/v1/dataset: metadata about the loaded source.
// When db is non-nil the most recent load audit rows are included as history.
func DatasetInfo(store *dataset.Store, db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		res, ok := mustResult(ctx, store)
		if !ok {
			return
		}

		body := map[string]any{
			"path":        store.Path(),
			"fingerprint": res.Fingerprint,
			"loaded_at":   res.LoadedAt.Format(time.RFC3339),
			"duration_ms": res.Duration.Milliseconds(),
			"total_rows":  res.Total,
			"records":     len(res.Records),
			"skipped":     res.Skipped,
			"row_errors":  res.Errors,
			"columns":     res.Columns,
			"buildings":   len(query.Buildings(res.Records)),
			"years":       query.Years(res.Records),
		}

		if db != nil {
			rows, err := dbpkg.RecentLoads(db, 10)
			if err != nil {
				log.Printf("load history query failed: %v", err)
			} else {
				history := make([]loadSummary, 0, len(rows))
				for _, r := range rows {
					history = append(history, loadSummary{
						ID:          r.ID,
						CreatedAt:   r.CreatedAt,
						Fingerprint: r.Fingerprint,
						Records:     r.Records,
						Skipped:     r.Skipped,
						Buildings:   r.Buildings,
						DurationMs:  r.DurationMs,
						Error:       r.Error,
					})
				}
				body["history"] = history
			}
		}

		ctx.Response.Header.Set("Cache-Control", "no-store")
		jsonResponse(ctx, body)
	}
}
