package handlers

import (
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	httpctx "sustainapi/internal/http/ctx"
)

const tracerName = "sustainapi/handlers"

// startSpan opens a child of the request's server span.
func startSpan(ctx *fasthttp.RequestCtx, name string, attrs ...attribute.KeyValue) trace.Span {
	_, span := otel.Tracer(tracerName).Start(httpctx.TraceContextFromCtx(ctx), name,
		trace.WithAttributes(attrs...),
	)
	return span
}
