package handlers

import (
	"log"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"

	"sustainapi/internal/dataset"
	"sustainapi/internal/query"
)

// ListMetrics serves GET /api/v1/metrics?building=&year=.
func ListMetrics(store *dataset.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		p, err := parseMetricsParams(ctx)
		if err != nil {
			writeError(ctx, err)
			return
		}
		res, ok := mustResult(ctx, store)
		if !ok {
			return
		}
		if notModified(ctx, res) {
			return
		}

		span := startSpan(ctx, "query.Filter",
			attribute.String("filter.building", p.Building),
			attribute.Int("records.scanned", len(res.Records)),
		)
		data := query.Filter(res.Records, p)
		span.SetAttributes(attribute.Int("records.matched", len(data)))
		span.End()

		log.Printf("returning %d records", len(data))
		jsonResponse(ctx, map[string]any{
			"count": len(data),
			"data":  data,
		})
	}
}

// BuildingMetrics serves GET /api/v1/metrics/{building}.
func BuildingMetrics(store *dataset.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		name, err := parseBuilding(ctx)
		if err != nil {
			writeError(ctx, err)
			return
		}
		year, err := parseYear(ctx.QueryArgs())
		if err != nil {
			writeError(ctx, err)
			return
		}
		res, ok := mustResult(ctx, store)
		if !ok {
			return
		}

		span := startSpan(ctx, "query.LookupBuilding", attribute.String("building", name))
		data, err := query.LookupBuilding(res.Records, name, year)
		span.SetAttributes(attribute.Int("records.matched", len(data)))
		span.End()
		if err != nil {
			writeError(ctx, err)
			return
		}
		if notModified(ctx, res) {
			return
		}

		log.Printf("returning metrics for building: %s", name)
		jsonResponse(ctx, map[string]any{
			"building": name,
			"count":    len(data),
			"data":     data,
		})
	}
}

// CampusWide serves GET /api/v1/metrics/campus-wide?year=&aggregate_by=.
func CampusWide(store *dataset.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		p, err := parseCampusParams(ctx)
		if err != nil {
			writeError(ctx, err)
			return
		}
		res, ok := mustResult(ctx, store)
		if !ok {
			return
		}
		if notModified(ctx, res) {
			return
		}

		span := startSpan(ctx, "query.Aggregate", attribute.String("aggregate_by", string(p.By)))
		filtered := query.Filter(res.Records, query.Params{Year: p.Year})
		groups := query.Aggregate(filtered, p.By)
		span.SetAttributes(attribute.Int("groups", len(groups)))
		span.End()
		body := map[string]any{
			"aggregation": string(p.By),
			"count":       len(groups),
			"data":        groups,
		}
		if span, ok := query.Span(filtered); ok {
			body["date_range"] = span
		}

		log.Printf("returning campus-wide metrics aggregated by: %s", p.By)
		jsonResponse(ctx, body)
	}
}
