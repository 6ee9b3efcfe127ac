package catalog

import (
	"fmt"
	"strings"
)

// DefaultItemsPerPage is the page size the partitioner writes with.
const DefaultItemsPerPage = 48

// Site-relative locations of the static catalog files.
const (
	CizelgePath     = "/json/cizelge.json"
	SearchIndexPath = "/pagefind/pagefind.json"
	pageDir         = "/json"
)

// GalleryItem is one displayable entry. JSON keys are the compact names the
// partitioner writes into page files.
type GalleryItem struct {
	ID          string   `json:"id"`
	Href        string   `json:"h"`
	ImageSource string   `json:"s"`
	AltText     string   `json:"a"`
	Tags        []string `json:"t"`
	Pinned      bool     `json:"p"`
}

// HasTag reports whether the item carries tag, ignoring surrounding space.
func (i GalleryItem) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range i.Tags {
		if strings.TrimSpace(t) == tag {
			return true
		}
	}
	return false
}

// TableRow is a row of the static tag/update tables.
type TableRow struct {
	Href  string `json:"href"`
	Text  string `json:"text"`
	Label string `json:"label,omitempty"`
}

// PaginationInfo describes how the catalog is split into pages.
type PaginationInfo struct {
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
}

// Normalize fills in ItemsPerPage and recomputes TotalPages so that it is
// always at least one.
func (p PaginationInfo) Normalize() PaginationInfo {
	if p.TotalItems < 0 {
		p.TotalItems = 0
	}
	if p.ItemsPerPage <= 0 {
		p.ItemsPerPage = DefaultItemsPerPage
	}
	p.TotalPages = TotalPages(p.TotalItems, p.ItemsPerPage)
	return p
}

// Cizelge is the catalog summary: static tables plus pagination metadata.
type Cizelge struct {
	Tags           []TableRow     `json:"tags"`
	Updated        []TableRow     `json:"updated"`
	PaginationInfo PaginationInfo `json:"paginationInfo"`
}

// TotalPages returns max(1, ceil(totalItems/perPage)).
func TotalPages(totalItems, perPage int) int {
	if perPage <= 0 || totalItems <= 0 {
		return 1
	}
	pages := (totalItems + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

// PagePath returns the site-relative path of the given 1-based page file.
func PagePath(page int) string {
	return fmt.Sprintf("%s/page-%d.json", pageDir, page)
}

// PageFileName returns the file name of a page inside the json directory.
func PageFileName(page int) string {
	return fmt.Sprintf("page-%d.json", page)
}
