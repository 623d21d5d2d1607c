package handlers

import (
	"bytes"
	"log"

	"github.com/valyala/fasthttp"

	"sustainapi/internal/dataset"
	"sustainapi/internal/query"
	ui "sustainapi/web"
)

// Endpoint describes one public route on the docs page.
type Endpoint struct {
	Method      string
	Path        string
	Description string
}

// Endpoints lists the public API surface in display order.
var Endpoints = []Endpoint{
	{"GET", "/health", "Service status and whether the dataset is loaded."},
	{"GET", "/api/v1/buildings", "Distinct building names, sorted."},
	{"GET", "/api/v1/metrics?building=&year=", "Records filtered by building name substring and exact year."},
	{"GET", "/api/v1/metrics/{building}?year=", "Records for one building, matched by exact name ignoring case."},
	{"GET", "/api/v1/metrics/campus-wide?year=&aggregate_by=year|metric_type", "Campus totals grouped by year or building category."},
	{"GET", "/api/v1/dataset", "Load metadata for the source file."},
	{"GET", "/metrics?prefix=&route=", "Prometheus metrics."},
}

type docsData struct {
	ServiceName string
	DataLoaded  bool
	Records     int
	Buildings   int
	Years       []int
	Fingerprint string
	Endpoints   []Endpoint
}

// DocsPage renders the embedded API reference. It reports dataset stats only
// when the dataset is already loaded.
func DocsPage(store *dataset.Store, serviceName string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		data := docsData{ServiceName: serviceName, Endpoints: Endpoints}
		if store.Loaded() {
			if res, err := store.Result(); err == nil {
				data.DataLoaded = true
				data.Records = len(res.Records)
				data.Buildings = len(query.Buildings(res.Records))
				data.Years = query.Years(res.Records)
				data.Fingerprint = res.Fingerprint
			}
		}

		var buf bytes.Buffer
		if err := ui.Templates().ExecuteTemplate(&buf, "docs", data); err != nil {
			log.Printf("render docs: %v", err)
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("render error")
			return
		}
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBody(buf.Bytes())
	}
}
