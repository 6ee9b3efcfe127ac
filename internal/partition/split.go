// Package partition turns the raw catalog into the static site's data files.
//
// Input is a source directory holding sunum.json (an array of raw items) and
// cizelge.json (the tag and update tables). Output, under the build
// directory:
//
//	json/page-N.json         items of page N, compact keys, pinned first
//	json/cizelge.json        tables plus paginationInfo
//	pagefind/pagefind.json   search index over all items
package partition

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tengrikut/galeri/internal/catalog"
	"github.com/tengrikut/galeri/internal/searchindex"
)

// RawItem is one entry of sunum.json.
type RawItem struct {
	ID     string   `json:"id"`
	Href   string   `json:"href" validate:"required"`
	ImgSrc string   `json:"imgSrc" validate:"required"`
	Alt    string   `json:"alt"`
	Tags   []string `json:"tags"`
	Pinned bool     `json:"pinned"`
}

// RawCizelge is the source of the static tables.
type RawCizelge struct {
	Tags    []catalog.TableRow `json:"tags"`
	Updated []catalog.TableRow `json:"updated"`
}

// Result is a partitioned catalog ready to be written.
type Result struct {
	Pages   [][]catalog.GalleryItem
	Cizelge catalog.Cizelge
	Index   searchindex.Manifest
	Skipped int
}

// TotalItems returns the number of items across all pages.
func (r Result) TotalItems() int {
	return r.Cizelge.PaginationInfo.TotalItems
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Split validates raw items, assigns missing ids, sorts pinned items first
// and cuts the result into pages of perPage items. Items failing validation
// and items repeating an earlier id are skipped with a warning.
func Split(raw []RawItem, cz RawCizelge, perPage int, logger *slog.Logger) (Result, error) {
	if perPage <= 0 {
		return Result{}, fmt.Errorf("items per page must be positive, got %d", perPage)
	}
	if logger == nil {
		logger = slog.Default()
	}

	items := make([]catalog.GalleryItem, 0, len(raw))
	seen := make(map[string]int, len(raw))
	skipped := 0
	for i, r := range raw {
		if err := validate.Struct(r); err != nil {
			logger.Warn("skipping invalid item", "index", i, "error", err)
			skipped++
			continue
		}
		item := compact(r)
		if first, dup := seen[item.ID]; dup {
			logger.Warn("skipping duplicate item id", "index", i, "id", item.ID, "first_index", first)
			skipped++
			continue
		}
		seen[item.ID] = i
		items = append(items, item)
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Pinned && !items[b].Pinned
	})

	total := catalog.TotalPages(len(items), perPage)
	pages := make([][]catalog.GalleryItem, total)
	for p := range total {
		start := p * perPage
		end := min(start+perPage, len(items))
		if start >= end {
			pages[p] = []catalog.GalleryItem{}
			continue
		}
		pages[p] = items[start:end]
	}

	return Result{
		Pages: pages,
		Cizelge: catalog.Cizelge{
			Tags:    nonNil(cz.Tags),
			Updated: nonNil(cz.Updated),
			PaginationInfo: catalog.PaginationInfo{
				TotalItems:   len(items),
				ItemsPerPage: perPage,
				TotalPages:   total,
			},
		},
		Index:   searchindex.Build(items),
		Skipped: skipped,
	}, nil
}

func compact(r RawItem) catalog.GalleryItem {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = StableID(r.Href, r.ImgSrc)
	}
	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return catalog.GalleryItem{
		ID:          id,
		Href:        strings.TrimSpace(r.Href),
		ImageSource: strings.TrimSpace(r.ImgSrc),
		AltText:     strings.TrimSpace(r.Alt),
		Tags:        tags,
		Pinned:      r.Pinned,
	}
}

// StableID derives a name-based id from an item's link and image so that
// rebuilds keep ids stable.
func StableID(href, imgSrc string) string {
	name := strings.TrimSpace(href) + "\x00" + strings.TrimSpace(imgSrc)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func nonNil(rows []catalog.TableRow) []catalog.TableRow {
	if rows == nil {
		return []catalog.TableRow{}
	}
	return rows
}
