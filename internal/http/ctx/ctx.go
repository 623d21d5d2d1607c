package ctx

import (
	"context"

	"github.com/valyala/fasthttp"
)

const (
	RequestIDKey    = "requestID"
	TraceContextKey = "traceContext"
)

func SetRequestID(ctx *fasthttp.RequestCtx, id string) {
	ctx.SetUserValue(RequestIDKey, id)
}

func RequestIDFromCtx(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue(RequestIDKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// SetTraceContext stores the context carrying the request's server span.
func SetTraceContext(ctx *fasthttp.RequestCtx, c context.Context) {
	ctx.SetUserValue(TraceContextKey, c)
}

// TraceContextFromCtx returns the span context for the request, or
// context.Background when tracing did not run.
func TraceContextFromCtx(ctx *fasthttp.RequestCtx) context.Context {
	if c, ok := ctx.UserValue(TraceContextKey).(context.Context); ok && c != nil {
		return c
	}
	return context.Background()
}
