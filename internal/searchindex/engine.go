package searchindex

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Response is the result of one search call.
type Response struct {
	Results []MatchRef
}

// MatchRef is a lazily resolved search hit.
type MatchRef interface {
	// ID is the index-internal record id.
	ID() string
	// Data resolves the hit's document data.
	Data(ctx context.Context) (MatchData, error)
}

// MatchData is the resolved document of a hit. Meta[MetaID] carries the
// gallery item id when the index was built from the catalog.
type MatchData struct {
	ID      string            `json:"id,omitempty"`
	URL     string            `json:"url,omitempty"`
	Content string            `json:"content,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Searcher is the capability an engine exposes once registered.
type Searcher interface {
	Search(ctx context.Context, query string) (*Response, error)
}

// Engine is an in-memory keyword index over records.
type Engine struct {
	records []Record
	content []string
	blobs   []string
}

var _ Searcher = (*Engine)(nil)

// NewEngine indexes records. The slice is retained.
func NewEngine(records []Record) *Engine {
	e := &Engine{
		records: records,
		content: make([]string, len(records)),
		blobs:   make([]string, len(records)),
	}
	for i, r := range records {
		e.content[i] = Fold(r.Content)
		parts := append([]string{r.Content, r.URL}, r.Tags...)
		e.blobs[i] = Fold(strings.Join(parts, " "))
	}
	return e
}

// Len returns the number of indexed records.
func (e *Engine) Len() int {
	return len(e.records)
}

// Search returns records containing every query term, best fuzzy matches on
// the content first. A blank query yields an empty response.
func (e *Engine) Search(ctx context.Context, query string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := Tokens(query)
	if len(terms) == 0 {
		return &Response{Results: []MatchRef{}}, nil
	}

	var matched []int
	for i, blob := range e.blobs {
		if containsAll(blob, terms) {
			matched = append(matched, i)
		}
	}

	results := make([]MatchRef, 0, len(matched))
	for _, idx := range e.rank(strings.Join(terms, " "), matched) {
		results = append(results, &match{engine: e, index: idx})
	}
	return &Response{Results: results}, nil
}

func (e *Engine) rank(query string, matched []int) []int {
	if len(matched) < 2 {
		return matched
	}
	candidates := make([]string, len(matched))
	for i, idx := range matched {
		candidates[i] = e.content[idx]
	}
	ordered := make([]int, 0, len(matched))
	taken := make([]bool, len(matched))
	for _, m := range fuzzy.Find(query, candidates) {
		ordered = append(ordered, matched[m.Index])
		taken[m.Index] = true
	}
	for i, idx := range matched {
		if !taken[i] {
			ordered = append(ordered, idx)
		}
	}
	return ordered
}

func containsAll(blob string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(blob, t) {
			return false
		}
	}
	return true
}

type match struct {
	engine *Engine
	index  int
}

func (m *match) ID() string {
	return m.engine.records[m.index].ID
}

func (m *match) Data(ctx context.Context) (MatchData, error) {
	if err := ctx.Err(); err != nil {
		return MatchData{}, err
	}
	r := m.engine.records[m.index]
	meta := make(map[string]string, len(r.Meta))
	for k, v := range r.Meta {
		meta[k] = v
	}
	return MatchData{ID: r.ID, URL: r.URL, Content: r.Content, Meta: meta}, nil
}
