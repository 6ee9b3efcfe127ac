package ui

import (
	"strconv"
	"strings"
)

// paginationRange is how many pages are linked on each side of the current
// page before the list collapses into gaps.
const paginationRange = 2

// LinkKind distinguishes the entries of a pagination bar.
type LinkKind int

const (
	LinkPage LinkKind = iota
	LinkPrev
	LinkNext
	LinkGap
)

// PageLink is one entry of a pagination bar. Page is zero for gaps and for
// disabled prev/next entries.
type PageLink struct {
	Kind     LinkKind
	Page     int
	Current  bool
	Disabled bool
}

// Label is the text shown for the link.
func (l PageLink) Label() string {
	switch l.Kind {
	case LinkPrev:
		return "«"
	case LinkNext:
		return "»"
	case LinkGap:
		return "..."
	default:
		return strconv.Itoa(l.Page)
	}
}

// PaginationLinks returns the pagination bar for current of total pages.
// It returns nil when there is nothing to paginate. With few pages every page
// is linked. Otherwise the first and last pages are always linked, along
// with pages within two of current, and skipped runs become gaps.
func PaginationLinks(current, total int) []PageLink {
	if total <= 1 {
		return nil
	}
	current = max(1, min(current, total))

	links := make([]PageLink, 0, 2*paginationRange+7)
	if current > 1 {
		links = append(links, PageLink{Kind: LinkPrev, Page: current - 1})
	} else {
		links = append(links, PageLink{Kind: LinkPrev, Disabled: true})
	}

	page := func(n int) PageLink {
		return PageLink{Kind: LinkPage, Page: n, Current: n == current}
	}

	if total <= 2*paginationRange+3 {
		for n := 1; n <= total; n++ {
			links = append(links, page(n))
		}
	} else {
		links = append(links, page(1))
		start := max(2, current-paginationRange)
		end := min(total-1, current+paginationRange)
		if start > 2 {
			links = append(links, PageLink{Kind: LinkGap})
		}
		for n := start; n <= end; n++ {
			links = append(links, page(n))
		}
		if end < total-1 {
			links = append(links, PageLink{Kind: LinkGap})
		}
		links = append(links, page(total))
	}

	if current < total {
		links = append(links, PageLink{Kind: LinkNext, Page: current + 1})
	} else {
		links = append(links, PageLink{Kind: LinkNext, Disabled: true})
	}
	return links
}

// paginationText renders links as plain text, the current page in brackets.
func paginationText(links []PageLink) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		label := l.Label()
		if l.Current {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}
