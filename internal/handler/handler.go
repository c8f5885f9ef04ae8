// Package handler implements the JSON REST endpoints under /api/v1.
package handler

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SetPageLimits overrides the default and maximum list page sizes.
func SetPageLimits(def, max int) {
	if def > 0 {
		defaultPageSize = def
	}
	if max > 0 {
		maxPageSize = max
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}
}

// pagination is the page/page_size pair accepted by every list endpoint.
type pagination struct {
	Page     int
	PageSize int
}

func (p pagination) Limit() int32  { return int32(p.PageSize) }
func (p pagination) Offset() int32 { return int32((p.Page - 1) * p.PageSize) }

// parsePagination reads ?page= and ?page_size=. Missing or invalid values
// fall back to the defaults; page_size is capped. A page whose row offset
// does not fit the int32 OFFSET parameter is answered with 400.
func parsePagination(w http.ResponseWriter, r *http.Request) (pagination, bool) {
	p := pagination{Page: 1, PageSize: defaultPageSize}
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v > 0 {
		p.PageSize = v
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	if p.Page-1 > math.MaxInt32/p.PageSize {
		writeError(w, http.StatusBadRequest, "page is out of range")
		return p, false
	}
	return p, true
}

// listResponse is the envelope of every list endpoint. A full page means
// there may be more.
type listResponse[T any] struct {
	Data        []T  `json:"data"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	HasNextPage bool `json:"has_next_page"`
}

func newListResponse[In, Out any](rows []In, p pagination, conv func(In) Out) listResponse[Out] {
	data := make([]Out, len(rows))
	for i, row := range rows {
		data[i] = conv(row)
	}
	return listResponse[Out]{
		Data:        data,
		Page:        p.Page,
		PageSize:    p.PageSize,
		HasNextPage: len(rows) >= p.PageSize,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// internalError logs err and answers with a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), op, "err", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// uuidParam parses the named URL parameter, answering 400 on failure.
func uuidParam(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func branchParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return uuidParam(w, r, "bid", "branch")
}

func idParam(w http.ResponseWriter, r *http.Request, label string) (uuid.UUID, bool) {
	return uuidParam(w, r, "id", label)
}

// parseDateRange reads start_date and end_date (YYYY-MM-DD). The end date is
// inclusive, so the returned end is the following midnight. Defaults to the
// last 30 days.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -30)

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errBadDate("start_date")
		}
		start = t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errBadDate("end_date")
		}
		end = t.AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, dateRangeError("start_date must not be after end_date")
	}
	return start, end, nil
}

type dateRangeError string

func (e dateRangeError) Error() string { return string(e) }

func errBadDate(field string) error {
	return dateRangeError("invalid " + field + " format, use YYYY-MM-DD")
}

func trimmed(s string) string { return strings.TrimSpace(s) }
