// Package http provides the REST API server and its handlers.
//
// This file implements utilities for parsing request bodies, path
// parameters and the expense filter query shared by the list, export and
// dashboard endpoints.

package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Query parameters understood by ParseFilter.
const (
	queryMode     = "mode"
	queryDate     = "date"
	queryMonth    = "month"
	querySearch   = "search"
	queryCategory = "category"
	queryPayment  = "payment"
	querySort     = "sort"
)

var filterKeys = []string{queryMode, queryDate, queryMonth, querySearch, queryCategory, queryPayment, querySort}

// periodAll disables the period filter when passed as month.
const periodAll = "all"

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// hasFilterQuery reports whether any filter parameter is present.
func hasFilterQuery(query url.Values) bool {
	for _, key := range filterKeys {
		if _, ok := query[key]; ok {
			return true
		}
	}
	return false
}

// ParseFilter builds the aggregation filter from query parameters. Missing
// parameters keep the defaults of aggregate.NewFilter(today). A date wins
// over a month; month=all drops the period filter.
func ParseFilter(query url.Values, today core.Date) (aggregate.Filter, error) {
	f := aggregate.NewFilter(today)

	if v := strings.TrimSpace(query.Get(queryMode)); v != "" {
		f = f.WithMode(aggregate.Mode(strings.ToLower(v)))
	}

	date := strings.TrimSpace(query.Get(queryDate))
	month := strings.TrimSpace(query.Get(queryMonth))
	switch {
	case date != "":
		d, err := core.ParseDate(date)
		if err != nil {
			return aggregate.Filter{}, err
		}
		f = f.WithReference(d)
	case strings.EqualFold(month, periodAll):
		f = f.WithReference(core.Date{})
	case month != "":
		m, err := core.ParseMonthKey(month)
		if err != nil {
			return aggregate.Filter{}, err
		}
		f = f.WithReference(m.First())
	}

	if v := query.Get(querySearch); v != "" {
		f = f.WithSearch(sanitizeInput(v))
	}
	if v := strings.TrimSpace(query.Get(queryCategory)); v != "" {
		f = f.WithCategory(canonicalCategory(v))
	}
	if v := strings.TrimSpace(query.Get(queryPayment)); v != "" {
		f = f.WithPaymentMethod(canonicalPaymentMethod(v))
	}
	if v := strings.TrimSpace(query.Get(querySort)); v != "" {
		f = f.WithSort(aggregate.SortMode(strings.ToLower(v)))
	}

	if err := f.Validate(); err != nil {
		return aggregate.Filter{}, err
	}
	return f, nil
}

// canonicalCategory fixes the case of a known category; anything else is
// returned unchanged for Validate to reject.
func canonicalCategory(s string) string {
	if strings.EqualFold(s, aggregate.All) {
		return aggregate.All
	}
	if c, err := core.ParseCategory(s); err == nil {
		return string(c)
	}
	return s
}

func canonicalPaymentMethod(s string) string {
	if strings.EqualFold(s, aggregate.All) {
		return aggregate.All
	}
	if p, err := core.ParsePaymentMethod(s); err == nil {
		return string(p)
	}
	return s
}

// pathID parses the {id} path parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryBool reads an optional boolean flag. Absent means false.
func queryBool(query url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(query.Get(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
