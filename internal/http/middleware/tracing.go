package middleware

import (
	"context"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	httpctx "sustainapi/internal/http/ctx"
)

// headerCarrier adapts fasthttp request headers to the OTel propagator API.
type headerCarrier struct {
	h *fasthttp.RequestHeader
}

func (c headerCarrier) Get(key string) string { return string(c.h.Peek(key)) }

func (c headerCarrier) Set(key, value string) { c.h.Set(key, value) }

func (c headerCarrier) Keys() []string {
	var keys []string
	c.h.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}

// Tracing starts a server span per request, continuing any trace the caller
// propagated. With no provider configured the global tracer is a no-op.
func Tracing(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	tracer := otel.Tracer("sustainapi/http")
	return func(ctx *fasthttp.RequestCtx) {
		parent := otel.GetTextMapPropagator().Extract(context.Background(), headerCarrier{&ctx.Request.Header})
		method := string(ctx.Method())
		path := string(ctx.Path())

		spanCtx, span := tracer.Start(parent, method+" "+path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", method),
				attribute.String("url.path", path),
			),
		)
		defer span.End()
		httpctx.SetTraceContext(ctx, spanCtx)
		if id, ok := httpctx.RequestIDFromCtx(ctx); ok {
			span.SetAttributes(attribute.String("request.id", id))
		}

		next(ctx)

		status := ctx.Response.StatusCode()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= fasthttp.StatusInternalServerError {
			span.SetStatus(codes.Error, fasthttp.StatusMessage(status))
		}
	}
}
