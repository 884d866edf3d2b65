// Package pagination implements limit/offset paging with a
// {count, next, previous, results} envelope.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

type Params struct {
	Limit  int
	Offset int
}

// FromRequest reads limit and offset from the query string. Missing,
// malformed or non-positive values fall back to the defaults.
func FromRequest(r *http.Request, defaultLimit, maxLimit int) Params {
	p := Params{Limit: defaultLimit}
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		p.Offset = v
	}
	return p
}

type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope for results fetched with p out of count
// total items. Links are absolute URLs derived from r.
func NewPage[T any](r *http.Request, p Params, count int, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: count, Results: results}

	if p.Offset+p.Limit < count {
		next := link(r, p.Limit, p.Offset+p.Limit)
		page.Next = &next
	}
	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		previous := link(r, p.Limit, prev)
		page.Previous = &previous
	}
	return page
}

func link(r *http.Request, limit, offset int) string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
