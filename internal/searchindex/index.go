package searchindex

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/tengrikut/galeri/internal/catalog"
)

// FormatVersion is the manifest version written by Build.
const FormatVersion = 1

// MetaID is the meta key carrying the gallery item id.
const MetaID = "id"

// Record is one searchable document.
type Record struct {
	ID      string            `json:"id"`
	URL     string            `json:"url"`
	Content string            `json:"content"`
	Tags    []string          `json:"tags,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Manifest is the on-disk search index asset.
type Manifest struct {
	Version     int      `json:"version"`
	Fingerprint string   `json:"fingerprint"`
	Records     []Record `json:"records"`
}

// ErrFingerprintMismatch is returned by Decode when the records do not hash
// to the recorded fingerprint.
var ErrFingerprintMismatch = errors.New("search index fingerprint mismatch")

// Build produces a manifest with one record per gallery item.
func Build(items []catalog.GalleryItem) Manifest {
	records := make([]Record, 0, len(items))
	for i, item := range items {
		records = append(records, Record{
			ID:      "r" + strconv.Itoa(i+1),
			URL:     item.Href,
			Content: item.AltText,
			Tags:    append([]string(nil), item.Tags...),
			Meta: map[string]string{
				MetaID:  item.ID,
				"image": item.ImageSource,
			},
		})
	}
	return Manifest{
		Version:     FormatVersion,
		Fingerprint: Fingerprint(records),
		Records:     records,
	}
}

// Fingerprint returns a deterministic BLAKE3 hash of the records.
func Fingerprint(records []Record) string {
	h := blake3.New()
	for _, r := range records {
		_, _ = h.Write([]byte(r.ID))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(r.URL))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(r.Content))
		_, _ = h.Write([]byte{0})
		for _, t := range r.Tags {
			_, _ = h.Write([]byte(t))
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{0})

		keys := make([]string, 0, len(r.Meta))
		for k := range r.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = h.Write([]byte(k))
			_, _ = h.Write([]byte{'='})
			_, _ = h.Write([]byte(r.Meta[k]))
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Write stores the manifest as minified JSON at path, replacing any previous
// file atomically.
func Write(path string, m Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal search index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create search index dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write search index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace search index: %w", err)
	}
	return nil
}

// Decode parses and verifies a manifest and returns a ready engine.
func Decode(data []byte) (*Engine, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse search index: %w", err)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported search index version %d", m.Version)
	}
	if got := Fingerprint(m.Records); got != m.Fingerprint {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrFingerprintMismatch, got, m.Fingerprint)
	}
	return NewEngine(m.Records), nil
}
