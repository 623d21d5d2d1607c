package handlers

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/blake2b"

	"sustainapi/internal/dataset"
	httpctx "sustainapi/internal/http/ctx"
	"sustainapi/internal/query"
)

const dataNotLoadedMsg = "Data not loaded. Please check server logs."

func jsonResponse(ctx *fasthttp.RequestCtx, data map[string]any) {
	ctx.SetContentType("application/json")
	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("encode response for %s: %v", ctx.Path(), err)
		errResponse(ctx, fasthttp.StatusInternalServerError, "failed to encode response")
		return
	}
	ctx.SetBody(body)
}

func errResponse(ctx *fasthttp.RequestCtx, code int, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(map[string]string{"error": msg})
	ctx.SetBody(body)
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(ctx *fasthttp.RequestCtx, err error) {
	var (
		verr *query.ValidationError
		nerr *query.NotFoundError
		lerr *dataset.LoadError
	)
	switch {
	case errors.As(err, &verr):
		errResponse(ctx, fasthttp.StatusBadRequest, verr.Error())
	case errors.As(err, &nerr):
		errResponse(ctx, fasthttp.StatusNotFound, fmt.Sprintf("Building %q not found", nerr.Building))
	case errors.As(err, &lerr):
		errResponse(ctx, fasthttp.StatusServiceUnavailable, dataNotLoadedMsg)
	default:
		rid, _ := httpctx.RequestIDFromCtx(ctx)
		log.Printf("error processing %s rid=%s: %v", ctx.Path(), rid, err)
		errResponse(ctx, fasthttp.StatusInternalServerError, "Error processing request")
	}
}

// mustResult returns the loaded dataset, or sends 503 and returns (nil, false).
// In lazy mode the first caller triggers the load.
func mustResult(ctx *fasthttp.RequestCtx, store *dataset.Store) (*dataset.LoadResult, bool) {
	res, err := store.Result()
	if err != nil {
		errResponse(ctx, fasthttp.StatusServiceUnavailable, dataNotLoadedMsg)
		return nil, false
	}
	return res, true
}

// notModified sets an ETag for the response derived from the dataset
// fingerprint and the request URI. It reports true, after writing 304, when
// the client already holds that representation.
func notModified(ctx *fasthttp.RequestCtx, res *dataset.LoadResult) bool {
	tag := etag(res.Fingerprint, string(ctx.RequestURI()))
	ctx.Response.Header.Set(fasthttp.HeaderETag, tag)
	if etagMatches(string(ctx.Request.Header.Peek(fasthttp.HeaderIfNoneMatch)), tag) {
		ctx.SetStatusCode(fasthttp.StatusNotModified)
		ctx.ResetBody()
		return true
	}
	return false
}

// etagMatches applies the weak comparison If-None-Match calls for: any listed
// tag, weak or strong, or "*" matches.
func etagMatches(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}

func etag(fingerprint, uri string) string {
	sum := blake2b.Sum256([]byte(fingerprint + "|" + uri))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// NotFound answers unknown routes with a JSON 404.
func NotFound(ctx *fasthttp.RequestCtx) {
	errResponse(ctx, fasthttp.StatusNotFound, "not found")
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(ctx *fasthttp.RequestCtx) {
	errResponse(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
}
