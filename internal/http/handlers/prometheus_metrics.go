package handlers

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"

	"sustainapi/internal/dataset"
)

const metricsNamespace = "sustainapi"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	datasetRecords      prometheus.Gauge
	datasetLoaded       prometheus.Gauge
	datasetLoadDuration prometheus.Gauge
	datasetLoadFailures prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "Total number of API requests served.",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "Histogram of API request durations in seconds.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route", "method"},
		),
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_records",
			Help:      "Number of records in the loaded dataset.",
		}),
		datasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_loaded",
			Help:      "1 when the dataset is loaded, 0 otherwise.",
		}),
		datasetLoadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time taken by the dataset load.",
		}),
		datasetLoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_load_failures_total",
			Help:      "Number of failed dataset load attempts.",
		}),
	}
	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.datasetRecords,
		m.datasetLoaded,
		m.datasetLoadDuration,
		m.datasetLoadFailures,
	)
	return m
}

// Instrument records request count and latency per matched route. It must
// wrap the router so the matched route path is available after dispatch.
func (m *Metrics) Instrument(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)

		route, _ := ctx.UserValue(router.MatchedRoutePathParam).(string)
		if route == "" {
			// Unmatched paths share one label to bound cardinality.
			route = "unmatched"
		}
		method := string(ctx.Method())
		status := strconv.Itoa(ctx.Response.StatusCode())
		m.requestsTotal.WithLabelValues(route, method, status).Inc()
		m.requestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// ObserveLoad is a dataset.Observer that mirrors the load outcome in gauges.
func (m *Metrics) ObserveLoad(_ string, res *dataset.LoadResult, err error) {
	if err != nil || res == nil {
		m.datasetLoaded.Set(0)
		m.datasetRecords.Set(0)
		m.datasetLoadFailures.Inc()
		return
	}
	m.datasetLoaded.Set(1)
	m.datasetRecords.Set(float64(len(res.Records)))
	m.datasetLoadDuration.Set(res.Duration.Seconds())
}

// MetricsHandler serves the text exposition of g. Query arguments narrow the
// output: ?prefix= keeps families whose name starts with the prefix, and
// ?route= keeps only series of that route in families labelled by route.
func MetricsHandler(g prometheus.Gatherer) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		prefix := string(ctx.QueryArgs().Peek("prefix"))
		route := string(ctx.QueryArgs().Peek("route"))

		metricFamilies, err := g.Gather()
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to gather metrics")
			return
		}

		filtered := filterFamilies(metricFamilies, prefix, route)

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range filtered {
			if err := encoder.Encode(mf); err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBodyString("failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.FmtText))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}

func filterFamilies(families []*dto.MetricFamily, prefix, route string) []*dto.MetricFamily {
	filtered := make([]*dto.MetricFamily, 0, len(families))
	for _, mf := range families {
		if prefix != "" && !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		if route == "" || !hasLabel(mf, "route") {
			filtered = append(filtered, mf)
			continue
		}

		var kept []*dto.Metric
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == route {
					kept = append(kept, m)
					break
				}
			}
		}
		if len(kept) == 0 {
			continue
		}
		filtered = append(filtered, &dto.MetricFamily{
			Name:   mf.Name,
			Help:   mf.Help,
			Type:   mf.Type,
			Metric: kept,
		})
	}
	return filtered
}

func hasLabel(mf *dto.MetricFamily, name string) bool {
	for _, m := range mf.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == name {
				return true
			}
		}
	}
	return false
}
