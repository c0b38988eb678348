package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/askrouter/server/internal/config"
	apperrors "codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/rag"
	"codeberg.org/askrouter/server/internal/storage"
)

type recordingIngester struct {
	docs  *storage.MemoryDocuments
	calls []rag.Metadata
	err   error
}

func (r *recordingIngester) Ingest(ctx context.Context, text string, meta rag.Metadata) (string, error) {
	r.calls = append(r.calls, meta)
	if r.err != nil {
		return "", r.err
	}

	id := meta.Title + "-" + string(rune('0'+len(r.calls)))

	return id, r.docs.InsertDocument(ctx, storage.Document{DocID: id, Text: text, Source: meta.Source, Title: meta.Title})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestCollectFiles_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "# b")
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "nested", "c.TXT"), "c")
	writeFile(t, filepath.Join(dir, "skip.json"), "{}")

	files, err := collectFiles(dir)
	require.NoError(t, err)

	titles := make([]string, 0, len(files))
	for _, f := range files {
		titles = append(titles, f.Title)
	}

	assert.Equal(t, []string{"a", "b", "c"}, titles)
}

func TestCollectFiles_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.md")
	writeFile(t, path, "refunds")

	files, err := collectFiles(path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "policy", files[0].Title)
}

func TestCollectFiles_MissingPath(t *testing.T) {
	_, err := collectFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestIngestFile_TitleOverride(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "policy.md")
	writeFile(t, path, "refunds within 30 days")

	docs := storage.NewMemoryDocuments(nil)
	ing := &recordingIngester{docs: docs}

	err := ingestFile(ctx, ing, docs, sourceFile{Path: path, Title: "policy"}, config.Flags{Source: "file", Title: "Refund Policy"})
	require.NoError(t, err)

	require.Len(t, ing.calls, 1)
	assert.Equal(t, rag.Metadata{Source: "file", Title: "Refund Policy"}, ing.calls[0])
}

func TestIngestFile_ReplaceRemovesPrevious(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "policy.md")
	writeFile(t, path, "refunds within 30 days")

	docs := storage.NewMemoryDocuments(nil)
	ing := &recordingIngester{docs: docs}
	f := sourceFile{Path: path, Title: "policy"}

	require.NoError(t, ingestFile(ctx, ing, docs, f, config.Flags{Source: "file"}))
	require.NoError(t, ingestFile(ctx, ing, docs, f, config.Flags{Source: "file", Replace: true}))

	_, err := docs.GetDocument(ctx, "policy-1")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	doc, err := docs.GetDocument(ctx, "policy-2")
	require.NoError(t, err)
	assert.Equal(t, "refunds within 30 days", doc.Text)
}

func TestIngestFile_ReplaceKeepsPreviousOnFailure(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "policy.md")
	writeFile(t, path, "refunds within 30 days")

	docs := storage.NewMemoryDocuments(nil)
	ing := &recordingIngester{docs: docs}
	f := sourceFile{Path: path, Title: "policy"}

	require.NoError(t, ingestFile(ctx, ing, docs, f, config.Flags{Source: "file"}))

	ing.err = apperrors.ErrProviderUnavailable
	err := ingestFile(ctx, ing, docs, f, config.Flags{Source: "file", Replace: true})
	require.ErrorIs(t, err, apperrors.ErrProviderUnavailable)

	doc, err := docs.GetDocument(ctx, "policy-1")
	require.NoError(t, err)
	assert.Equal(t, "refunds within 30 days", doc.Text)
}
