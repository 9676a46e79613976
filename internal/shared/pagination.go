package shared

import (
	"math"
	"net/http"
	"strconv"
)

// Pagination describes a limit/offset window over a listing.
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Page   int `json:"page"`
	Pages  int `json:"pages"`
}

// NewPagination computes pagination metadata from a limit/offset window.
func NewPagination(limit, offset, total int) Pagination {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return Pagination{
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Page:   offset/limit + 1,
		Pages:  int(math.Ceil(float64(total) / float64(limit))),
	}
}

// PageParams extracts limit/offset query parameters with defaults.
func PageParams(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 1000 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
