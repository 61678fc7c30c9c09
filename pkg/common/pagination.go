package common

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ListParams are the skip/limit query parameters accepted by list endpoints.
type ListParams struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// ExtractListParams reads skip and limit from the query string, clamping
// limit to MaxLimit.
func ExtractListParams(r *http.Request) ListParams {
	params := ListParams{Limit: DefaultLimit}

	if skip := r.URL.Query().Get("skip"); skip != "" {
		if s, err := strconv.Atoi(skip); err == nil && s > 0 {
			params.Skip = s
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > MaxLimit {
				l = MaxLimit
			}
			params.Limit = l
		}
	}
	return params
}

// PaginationInfo describes the returned window of a list.
type PaginationInfo struct {
	Skip    int  `json:"skip"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
}

// Page slices items according to params and returns the window with its metadata.
func Page[T any](items []T, params ListParams) ([]T, *PaginationInfo) {
	total := len(items)
	start := params.Skip
	if start > total {
		start = total
	}
	end := start + params.Limit
	if params.Limit <= 0 || end > total {
		end = total
	}
	return items[start:end], &PaginationInfo{
		Skip:    params.Skip,
		Limit:   params.Limit,
		Total:   total,
		HasNext: end < total,
	}
}
