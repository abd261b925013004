package transport

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/frahmantamala/hrm/internal"
)

const DefaultPageSize = 20

type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is the paginated list envelope returned by every list endpoint.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ParsePage reads ?page=N. Missing means the first page.
func ParsePage(r *http.Request) (PageRequest, error) {
	req := PageRequest{Page: 1, PageSize: DefaultPageSize}
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, internal.NewNotFoundError("Invalid page", internal.ErrCodeNotFound)
		}
		req.Page = n
	}
	return req, nil
}

// NewPage builds the envelope, deriving next/previous links from the
// request URL.
func NewPage[T any](r *http.Request, req PageRequest, total int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: total, Results: results}

	if int64(req.Page*req.PageSize) < total {
		next := pageURL(r, req.Page+1)
		page.Next = &next
	}
	if req.Page > 1 {
		prev := pageURL(r, req.Page-1)
		page.Previous = &prev
	}
	return page
}

func pageURL(r *http.Request, page int) string {
	u := url.URL{Path: r.URL.Path}
	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	u.Scheme = scheme
	u.Host = r.Host
	return u.String()
}
