// Package query filters and aggregates the in-memory record set.
package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"sustainapi/internal/dataset"
)

// ErrBuildingNotFound is returned by LookupBuilding when no record carries
// the requested building name.
var ErrBuildingNotFound = errors.New("building not found")

// NotFoundError names the building that could not be found.
type NotFoundError struct {
	Building string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("building %q not found", e.Building)
}

func (e *NotFoundError) Unwrap() error { return ErrBuildingNotFound }

// Params are the optional record predicates. Zero values mean "no filter".
type Params struct {
	Building string
	Year     *int
}

// Filter returns the records matching every present predicate, in input
// order. Building matches as a case-insensitive substring; Year matches
// exactly. The result is never nil.
func Filter(records []dataset.Record, p Params) []dataset.Record {
	// A Caser is stateful, so each call folds with its own.
	fold := cases.Fold()
	needle := fold.String(p.Building)

	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if p.Year != nil && r.Year != *p.Year {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(r.Building), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// LookupBuilding returns the records whose building name equals name,
// ignoring case and surrounding whitespace, optionally narrowed to one year.
// It fails with a *NotFoundError only when the name is absent from the whole
// data set; a known building with no rows for year yields an empty slice.
func LookupBuilding(records []dataset.Record, name string, year *int) ([]dataset.Record, error) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))

	found := false
	out := make([]dataset.Record, 0)
	for _, r := range records {
		if fold.String(r.Building) != want {
			continue
		}
		found = true
		if year != nil && r.Year != *year {
			continue
		}
		out = append(out, r)
	}
	if !found {
		return nil, &NotFoundError{Building: name}
	}
	return out, nil
}

// Buildings returns the distinct building names in ascending order.
func Buildings(records []dataset.Record) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, r := range records {
		if !seen[r.Building] {
			seen[r.Building] = true
			names = append(names, r.Building)
		}
	}
	sort.Strings(names)
	return names
}

// Years returns the distinct years in ascending order.
func Years(records []dataset.Record) []int {
	seen := make(map[int]bool)
	years := make([]int, 0)
	for _, r := range records {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	return years
}
