// Package nav parses gallery locations and keeps an in-memory navigation
// history.
//
// The location grammar is:
//
//	/                 page 1, no query
//	/{n}              page n
//	/ara/{query}      page 1 of the results for query
//	/ara/{query}/{n}  page n of the results for query
//
// Page numbers that are missing, non-numeric or below one become 1. Queries
// are percent-decoded and trimmed.
package nav

import (
	"net/url"
	"strconv"
	"strings"
)

// SearchSegment is the first path segment of a search location.
const SearchSegment = "ara"

// Route is the navigation state encoded in a location.
type Route struct {
	Page  int
	Query string
}

// Parse decodes a location path. It never fails: malformed parts fall back
// to page 1 and an empty query.
func Parse(path string) Route {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	route := Route{Page: 1}
	switch {
	case len(parts) >= 1 && parts[0] == SearchSegment:
		if len(parts) >= 2 {
			route.Query = decodeSegment(parts[1])
		}
		if len(parts) >= 3 {
			route.Page = parsePage(parts[2])
		}
	case len(parts) == 1:
		route.Page = parsePage(parts[0])
	}
	return route
}

// BuildPath encodes page and query as a location. It is the inverse of Parse
// for pages of at least one and trimmed queries.
func BuildPath(page int, query string) string {
	query = strings.TrimSpace(query)
	if page < 1 {
		page = 1
	}
	if query != "" {
		base := "/" + SearchSegment + "/" + url.PathEscape(query)
		if page > 1 {
			return base + "/" + strconv.Itoa(page)
		}
		return base
	}
	if page > 1 {
		return "/" + strconv.Itoa(page)
	}
	return "/"
}

func decodeSegment(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return strings.TrimSpace(decoded)
}

func parsePage(raw string) int {
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 1
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
