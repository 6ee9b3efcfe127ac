package search

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tengrikut/galeri/internal/searchindex"
)

const resolveConcurrency = 16

// resolveIDs turns hits into gallery ids in hit order. A hit resolves to
// meta.id when that key is present, otherwise to its top-level id. Hits
// that fail to resolve or resolve to a blank id are dropped. Duplicates
// keep their first position.
func resolveIDs(ctx context.Context, results []searchindex.MatchRef, logger *slog.Logger) []string {
	resolved := make([]string, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, ref := range results {
		if ref == nil {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("search hit panicked", "hit", ref.ID(), "panic", r)
				}
			}()
			data, err := ref.Data(gctx)
			if err != nil {
				logger.Warn("resolve search hit", "hit", ref.ID(), "error", err)
				return nil
			}
			resolved[i] = galleryID(data)
			return nil
		})
	}
	_ = g.Wait()

	ids := make([]string, 0, len(resolved))
	seen := make(map[string]struct{}, len(resolved))
	for _, id := range resolved {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func galleryID(data searchindex.MatchData) string {
	if id, ok := data.Meta[searchindex.MetaID]; ok {
		return strings.TrimSpace(id)
	}
	return strings.TrimSpace(data.ID)
}
