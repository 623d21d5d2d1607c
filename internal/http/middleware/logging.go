package middleware

import (
	"log"
	"time"

	"github.com/valyala/fasthttp"

	httpctx "sustainapi/internal/http/ctx"
)

// RequestLogger returns fasthttp middleware that logs method, path, status, duration.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		rid, _ := httpctx.RequestIDFromCtx(ctx)
		log.Printf("%s %s -> %d (%s) ip=%s rid=%s", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.RemoteIP(), rid)
	}
}
