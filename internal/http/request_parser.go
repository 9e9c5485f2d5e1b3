// Package http provides HTTP server and handler implementations.
//
// This file turns dashboard query strings into a core.Selection. Every page,
// partial, API and export route shares the same parameters, so the sidebar
// form and a bookmarked export URL always agree.

package http

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"ventas/internal/core"
	"ventas/internal/dataset"
)

// Query parameter names.
const (
	ParamFrom     = "from"
	ParamTo       = "to"
	ParamCategory = "category"
	ParamRegion   = "region"
	ParamCompare  = "compare"
)

// ErrBadSelection wraps every selection parsing failure.
var ErrBadSelection = errors.New("invalid selection")

// SelectionRequest is a parsed selection plus the labels that were dropped
// because the dataset does not know them.
type SelectionRequest struct {
	Selection core.Selection
	Ignored   []string
}

// ParseSelection builds a selection from query parameters.
//
// Missing dates default to the dataset span. An absent category or region
// parameter selects every label present in the dataset; a parameter that is
// present but empty (region=) selects none. Unknown labels are dropped and
// reported in Ignored. A malformed date or comparison mode is an error. A
// reversed range is not: it simply matches nothing.
func ParseSelection(query url.Values, ds *dataset.Dataset) (SelectionRequest, error) {
	var req SelectionRequest
	span := ds.Span()

	from, err := parseDateParam(query, ParamFrom, span.Start)
	if err != nil {
		return req, err
	}
	to, err := parseDateParam(query, ParamTo, span.End)
	if err != nil {
		return req, err
	}

	mode, err := core.ParseComparisonMode(sanitizeInput(query.Get(ParamCompare)))
	if err != nil {
		return req, fmt.Errorf("%w: %s: %v", ErrBadSelection, ParamCompare, err)
	}

	cats := ds.Categories()
	if values, ok := query[ParamCategory]; ok {
		cats = cats[:0]
		for _, v := range splitValues(values) {
			c, err := core.ParseCategory(v)
			if err != nil {
				req.Ignored = append(req.Ignored, v)
				continue
			}
			cats = append(cats, c)
		}
	}

	regs := ds.Regions()
	if values, ok := query[ParamRegion]; ok {
		regs = regs[:0]
		for _, v := range splitValues(values) {
			r, err := core.ParseRegion(v)
			if err != nil {
				req.Ignored = append(req.Ignored, v)
				continue
			}
			regs = append(regs, r)
		}
	}

	req.Selection = core.NewSelection(core.NewDateRange(from, to), cats, regs, mode)
	return req, nil
}

// SelectionQuery is the inverse of ParseSelection. Empty label sets are kept
// as a single empty parameter so that they survive a round trip.
func SelectionQuery(sel core.Selection) url.Values {
	q := url.Values{}
	q.Set(ParamFrom, sel.Range.Start.String())
	q.Set(ParamTo, sel.Range.End.String())
	q.Set(ParamCompare, string(sel.Mode))

	cats := sel.CategoryList()
	if len(cats) == 0 {
		q[ParamCategory] = []string{""}
	}
	for _, c := range cats {
		q.Add(ParamCategory, string(c))
	}

	regs := sel.RegionList()
	if len(regs) == 0 {
		q[ParamRegion] = []string{""}
	}
	for _, r := range regs {
		q.Add(ParamRegion, string(r))
	}
	return q
}

func parseDateParam(query url.Values, name string, fallback core.Date) (core.Date, error) {
	v := sanitizeInput(query.Get(name))
	if v == "" {
		return fallback, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %s: %v", ErrBadSelection, name, err)
	}
	return d, nil
}

// splitValues flattens repeated and comma-separated values, dropping blanks.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = sanitizeInput(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
