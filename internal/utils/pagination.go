package utils

import (
	"net/url"
	"strconv"
)

// Page bundles the pagination envelope returned by the listing endpoints.
// CurrentPage/NextPage/PrevPage are full request URLs with the offset and
// limit query parameters rewritten; Next and Prev are nil at the edges.
type Page struct {
	TotalItems  int64       `json:"total_items"`
	TotalPages  int64       `json:"total_pages"`
	CurrentPage string      `json:"current_page"`
	NextPage    *string     `json:"next_page"`
	PrevPage    *string     `json:"prev_page"`
	Items       interface{} `json:"items"`
}

// NewPage computes the page envelope for a listing response.  reqURL is the
// URL of the incoming request; its query string is rewritten for each link.
func NewPage(reqURL *url.URL, limit, offset int, total int64, items interface{}) Page {
	if limit < 1 {
		limit = 1
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)

	p := Page{
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: pageURL(reqURL, offset, limit),
		Items:       items,
	}
	if next := offset + limit; int64(next) < total {
		u := pageURL(reqURL, next, limit)
		p.NextPage = &u
	}
	if prev := offset - limit; prev >= 0 {
		u := pageURL(reqURL, prev, limit)
		p.PrevPage = &u
	}
	return p
}

// pageURL rewrites the offset and limit query parameters of a request URL.
func pageURL(reqURL *url.URL, offset, limit int) string {
	u := *reqURL
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String()
}
