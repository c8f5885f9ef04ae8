package handler

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestParsePagination_Defaults(t *testing.T) {
	rr := httptest.NewRecorder()
	p, ok := parsePagination(rr, httptest.NewRequest(http.MethodGet, "/?page=0&page_size=1000", nil))
	if !ok {
		t.Fatalf("parsePagination rejected defaults: %s", rr.Body.String())
	}
	if p.Page != 1 || p.PageSize != maxPageSize {
		t.Fatalf("got page=%d page_size=%d, want 1 and %d", p.Page, p.PageSize, maxPageSize)
	}
	if p.Offset() != 0 || p.Limit() != int32(maxPageSize) {
		t.Fatalf("got limit=%d offset=%d", p.Limit(), p.Offset())
	}
}

func TestParsePagination_LargePage(t *testing.T) {
	for _, page := range []string{"42949674", "30000000", "9223372036854775807"} {
		t.Run(page, func(t *testing.T) {
			rr := httptest.NewRecorder()
			_, ok := parsePagination(rr, httptest.NewRequest(http.MethodGet, "/?page_size=100&page="+page, nil))
			if ok {
				t.Fatal("parsePagination accepted an offset beyond int32")
			}
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rr.Code)
			}
		})
	}

	// The last page whose offset still fits is served.
	last := math.MaxInt32/100 + 1
	rr := httptest.NewRecorder()
	p, ok := parsePagination(rr, httptest.NewRequest(http.MethodGet, "/?page_size=100&page="+strconv.Itoa(last), nil))
	if !ok {
		t.Fatalf("parsePagination rejected page %d: %s", last, rr.Body.String())
	}
	if want := int32((last - 1) * 100); p.Offset() != want {
		t.Fatalf("offset: got %d, want %d", p.Offset(), want)
	}
}
