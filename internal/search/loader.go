package search

import (
	"context"

	"github.com/tengrikut/galeri/internal/catalog"
	"github.com/tengrikut/galeri/internal/searchindex"
)

// HTTPLoader fetches the index asset at path and installs it on the scope.
func HTTPLoader(f catalog.Fetcher, path string) LoadFunc {
	if path == "" {
		path = catalog.SearchIndexPath
	}
	return func(ctx context.Context, scope *searchindex.Scope) error {
		data, err := f.FetchAsset(ctx, path)
		if err != nil {
			return err
		}
		return searchindex.Install(data, scope)
	}
}
