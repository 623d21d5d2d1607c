package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"sustainapi/internal/query"
)

// campusParams are the validated inputs of the campus-wide endpoint.
type campusParams struct {
	Year *int
	By   query.AggregateBy
}

// parseYear reads the optional year query argument. Absent or blank means
// no filter.
func parseYear(args *fasthttp.Args) (*int, error) {
	raw := strings.TrimSpace(string(args.Peek("year")))
	if raw == "" {
		return nil, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &query.ValidationError{Param: "year", Value: raw, Msg: "Must be an integer"}
	}
	return &y, nil
}

// parseBuilding returns the {building} path segment. The router matches on
// the raw path, so the value still carries its percent-encoding.
func parseBuilding(ctx *fasthttp.RequestCtx) (string, error) {
	raw, _ := ctx.UserValue("building").(string)
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", &query.ValidationError{Param: "building", Value: raw, Msg: "Malformed percent-encoding"}
	}
	return name, nil
}

func parseMetricsParams(ctx *fasthttp.RequestCtx) (query.Params, error) {
	args := ctx.QueryArgs()
	year, err := parseYear(args)
	if err != nil {
		return query.Params{}, err
	}
	return query.Params{
		Building: strings.TrimSpace(string(args.Peek("building"))),
		Year:     year,
	}, nil
}

func parseCampusParams(ctx *fasthttp.RequestCtx) (campusParams, error) {
	args := ctx.QueryArgs()
	year, err := parseYear(args)
	if err != nil {
		return campusParams{}, err
	}
	by, err := query.ParseAggregateBy(strings.TrimSpace(string(args.Peek("aggregate_by"))))
	if err != nil {
		return campusParams{}, err
	}
	return campusParams{Year: year, By: by}, nil
}
