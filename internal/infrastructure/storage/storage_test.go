package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/ports"
)

func TestStoresRoundTripArtifacts(t *testing.T) {
	t.Parallel()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "artifacts"))
	require.NoError(t, err)

	stores := map[string]ports.ArtifactStore{
		"file":   fileStore,
		"memory": NewMemoryStore(),
	}

	for name, store := range stores {
		store := store
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			ok, err := store.Exists(ctx, domain.ArtifactArticles)
			require.NoError(t, err)
			assert.False(t, ok)

			var missing []domain.Article
			err = store.Read(ctx, domain.ArtifactArticles, &missing)
			assert.True(t, errors.Is(err, ErrNotFound))

			in := []domain.Article{{
				Title:     "Apple & <friends>",
				Source:    "MacRumors",
				URL:       "https://example.com/a",
				Published: time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC),
			}}
			require.NoError(t, store.Write(ctx, domain.ArtifactArticles, in))

			ok, err = store.Exists(ctx, domain.ArtifactArticles)
			require.NoError(t, err)
			assert.True(t, ok)

			var out []domain.Article
			require.NoError(t, store.Read(ctx, domain.ArtifactArticles, &out))
			assert.Equal(t, in, out)

			require.NoError(t, store.Delete(ctx, domain.ArtifactArticles))
			ok, err = store.Exists(ctx, domain.ArtifactArticles)
			require.NoError(t, err)
			assert.False(t, ok)
			err = store.Read(ctx, domain.ArtifactArticles, &out)
			assert.True(t, errors.Is(err, ErrNotFound))
			require.NoError(t, store.Delete(ctx, domain.ArtifactArticles), "deleting a missing key is a no-op")
		})
	}
}

func TestFileStoreOverwritesAndLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, domain.ArtifactMarket, domain.MarketSnapshot{Symbol: "AAPL", CurrentPrice: 1}))
	require.NoError(t, store.Write(ctx, domain.ArtifactMarket, domain.MarketSnapshot{Symbol: "AAPL", CurrentPrice: 2}))

	var got domain.MarketSnapshot
	require.NoError(t, store.Read(ctx, domain.ArtifactMarket, &got))
	assert.Equal(t, 2.0, got.CurrentPrice)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "stock_data.json", entries[0].Name())

	raw, err := os.ReadFile(store.Path(domain.ArtifactMarket))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"symbol\": \"AAPL\"")
}

func TestFileStoreKeepsHTMLUnescaped(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), "note", map[string]string{"text": "<b>&</b>"}))

	raw, err := os.ReadFile(store.Path("note"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<b>&</b>")
}

func TestFileStoreUnreadableDocument(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(domain.ArtifactReport), []byte("{not json"), 0o644))

	var report domain.Report
	err = store.Read(context.Background(), domain.ArtifactReport, &report)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestStoresRejectInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	assert.Error(t, store.Write(ctx, "../escape", 1))
	assert.Error(t, store.Write(ctx, "", 1))

	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestMemoryStoreCopiesDocuments(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	in := []string{"a", "b"}
	require.NoError(t, store.Write(ctx, "list", in))
	in[0] = "changed"

	var out []string
	require.NoError(t, store.Read(ctx, "list", &out))
	assert.Equal(t, []string{"a", "b"}, out)
	assert.Equal(t, []string{"list"}, store.Keys())
}
