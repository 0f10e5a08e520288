package shared

import (
	"errors"
	"math"
	"net/url"
	"strconv"
)

const (
	// DefaultLimit applies when the request omits a page size.
	DefaultLimit = 20
	// MaxLimit caps the page size for list queries.
	MaxLimit = 500
)

// ErrInvalidPageRequest reports malformed page or filter parameters.
var ErrInvalidPageRequest = errors.New("invalid pagination parameters")

// PageRequest carries bounded list query parameters.
type PageRequest struct {
	Page       int
	Limit      int
	SearchTerm string
	Status     string
	MinPrice   *float64
	MaxPrice   *float64
}

// Offset converts the page number into a query offset.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePageRequest reads pagination and filter values from query parameters.
// A page below 1 is rejected; the limit is clamped to [1, MaxLimit].
func ParsePageRequest(q url.Values) (PageRequest, error) {
	req := PageRequest{Page: 1, Limit: DefaultLimit}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return PageRequest{}, ErrInvalidPageRequest
		}
		req.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return PageRequest{}, ErrInvalidPageRequest
		}
		req.Limit = clampLimit(limit)
	}
	req.SearchTerm = q.Get("searchTerm")
	req.Status = q.Get("status")

	if raw := q.Get("minPrice"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil || !finite(min) {
			return PageRequest{}, ErrInvalidPageRequest
		}
		req.MinPrice = &min
	}
	if raw := q.Get("maxPrice"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil || !finite(max) {
			return PageRequest{}, ErrInvalidPageRequest
		}
		req.MaxPrice = &max
	}
	return req, nil
}

// finite rejects NaN and the infinities, which ParseFloat accepts but no
// price comparison should ever see.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// PageMeta contains metadata for paginated listings.
type PageMeta struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	ItemCount       int  `json:"itemCount"`
	PageCount       int  `json:"pageCount"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewPageMeta computes pagination metadata. The navigation flags reflect the
// requested page, so hasPreviousPage stays true on page 2 of an empty set.
func NewPageMeta(page, limit, itemCount int) PageMeta {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = 1
	}
	pageCount := int(math.Ceil(float64(itemCount) / float64(limit)))
	return PageMeta{
		Page:            page,
		Limit:           limit,
		ItemCount:       itemCount,
		PageCount:       pageCount,
		HasPreviousPage: page > 1,
		HasNextPage:     page < pageCount,
	}
}
