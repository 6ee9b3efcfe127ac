package searchindex

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tengrikut/galeri/internal/catalog"
)

func sampleItems() []catalog.GalleryItem {
	return []catalog.GalleryItem{
		{ID: "a1", Href: "/sunum/istanbul", ImageSource: "/img/1.webp", AltText: "İstanbul Boğazı", Tags: []string{"şehir"}},
		{ID: "b2", Href: "/sunum/kedi", ImageSource: "/img/2.webp", AltText: "Tekir kedi", Tags: []string{"hayvan"}},
		{ID: "c3", Href: "/sunum/kedi-iki", ImageSource: "/img/3.webp", AltText: "Bahçede uyuyan kedi", Tags: []string{"hayvan", "bahçe"}},
	}
}

func resolveIDs(t *testing.T, resp *Response) []string {
	t.Helper()
	var ids []string
	for _, r := range resp.Results {
		data, err := r.Data(context.Background())
		require.NoError(t, err)
		ids = append(ids, data.Meta[MetaID])
	}
	return ids
}

func TestFold(t *testing.T) {
	assert.Equal(t, "istanbul boğazı", Fold("  İSTANBUL   BOĞAZI "))
	assert.Equal(t, "ıslak", Fold("ISLAK"))
	assert.Equal(t, "", Fold(""))
	assert.Equal(t, []string{"tekir", "kedi"}, Tokens("Tekir  KEDİ"))
}

func TestEngineSearch_MatchesAllTerms(t *testing.T) {
	e := NewEngine(Build(sampleItems()).Records)
	ctx := context.Background()

	resp, err := e.Search(ctx, "kedi")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b2", "c3"}, resolveIDs(t, resp))

	resp, err = e.Search(ctx, "KEDİ bahçe")
	require.NoError(t, err)
	assert.Equal(t, []string{"c3"}, resolveIDs(t, resp))

	resp, err = e.Search(ctx, "istanbul")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, resolveIDs(t, resp))

	resp, err = e.Search(ctx, "zürafa")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestEngineSearch_BlankQueryIsEmpty(t *testing.T) {
	e := NewEngine(Build(sampleItems()).Records)
	resp, err := e.Search(context.Background(), "   ")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Empty(t, resp.Results)
}

func TestEngineSearch_CancelledContext(t *testing.T) {
	e := NewEngine(Build(sampleItems()).Records)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Search(ctx, "kedi")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDecodeVerifiesFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagefind", "pagefind.json")
	m := Build(sampleItems())
	require.NoError(t, Write(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	e, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Len())

	m.Records[0].Content = "tampered"
	tampered, err := json.Marshal(m)
	require.NoError(t, err)
	_, err = Decode(tampered)
	assert.True(t, errors.Is(err, ErrFingerprintMismatch), "got %v", err)

	_, err = Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestScopeRegisterAndInstall(t *testing.T) {
	var scope Scope
	assert.Nil(t, scope.Lookup())

	first := NewEngine(nil)
	assert.True(t, scope.Register(first))
	assert.False(t, scope.Register(NewEngine(nil)), "slot is write-once for Register")
	assert.Same(t, first, scope.Lookup())
}

func TestInstallWritesScopeOnce(t *testing.T) {
	data, err := json.Marshal(Build(sampleItems()))
	require.NoError(t, err)

	var scope Scope
	require.NoError(t, Install(data, &scope))
	installed, ok := scope.Lookup().(*Engine)
	require.True(t, ok)
	assert.Equal(t, 3, installed.Len())

	err = Install(data, &scope)
	assert.ErrorIs(t, err, ErrScopeTaken)
	assert.Same(t, installed, scope.Lookup(), "second install must not replace the engine")

	var taken Scope
	require.True(t, taken.Register(NewEngine(nil)))
	assert.ErrorIs(t, Install(data, &taken), ErrScopeTaken)
	assert.Equal(t, 0, taken.Lookup().(*Engine).Len())
}
