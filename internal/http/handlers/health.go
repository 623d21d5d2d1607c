package handlers

import (
	"github.com/valyala/fasthttp"

	"sustainapi/internal/dataset"
	"sustainapi/internal/query"
)

// Health always answers 200 and reports whether the dataset is available.
// It never triggers a lazy load.
func Health(store *dataset.Store, serviceName string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Cache-Control", "no-store")
		jsonResponse(ctx, map[string]any{
			"status":      "healthy",
			"service":     serviceName,
			"data_loaded": store.Loaded(),
		})
	}
}

// Buildings serves GET /api/v1/buildings.
func Buildings(store *dataset.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		res, ok := mustResult(ctx, store)
		if !ok {
			return
		}
		if notModified(ctx, res) {
			return
		}
		names := query.Buildings(res.Records)
		jsonResponse(ctx, map[string]any{
			"count":     len(names),
			"buildings": names,
		})
	}
}
