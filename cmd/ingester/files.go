package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/askrouter/server/internal/config"
	"codeberg.org/askrouter/server/internal/logger"
	"codeberg.org/askrouter/server/internal/rag"
	"codeberg.org/askrouter/server/internal/storage"
)

var ingestExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

type sourceFile struct {
	Path  string
	Title string
}

// returns every .txt or .md file at or under root, in lexical order
func collectFiles(root string) ([]sourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}

	if !info.IsDir() {
		return []sourceFile{{Path: root, Title: fileTitle(root)}}, nil
	}

	var files []sourceFile

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !ingestExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		files = append(files, sourceFile{Path: path, Title: fileTitle(path)})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return files, nil
}

// file name without its extension
func fileTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type ingester interface {
	Ingest(ctx context.Context, text string, meta rag.Metadata) (string, error)
}

// with Replace, earlier copies are removed only after the new one is stored
func ingestFile(ctx context.Context, pipeline ingester, docs storage.DocumentStore, f sourceFile, flags config.Flags) error {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	meta := rag.Metadata{Source: flags.Source, Title: f.Title}
	if flags.Title != "" {
		meta.Title = flags.Title
	}

	var previous []storage.Document

	if flags.Replace {
		previous, err = docs.FindDocuments(ctx, storage.DocumentFilter{Source: meta.Source, Title: meta.Title})
		if err != nil {
			return fmt.Errorf("failed to look up existing documents: %w", err)
		}
	}

	docID, err := pipeline.Ingest(ctx, string(content), meta)
	if err != nil {
		return err
	}

	logger.Info("ingested file", "path", f.Path, "doc_id", docID, "title", meta.Title)

	for _, doc := range previous {
		if err := docs.DeleteDocument(ctx, doc.DocID); err != nil {
			return fmt.Errorf("failed to delete previous document %s: %w", doc.DocID, err)
		}

		logger.Info("removed previous document", "doc_id", doc.DocID, "title", meta.Title)
	}

	return nil
}
