package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "codeberg.org/askrouter/server/internal/errors"
	"codeberg.org/askrouter/server/internal/llm"
	"codeberg.org/askrouter/server/internal/storage"
)

// segments, stores and indexes text, returning the new document id
// a failure part way leaves whatever was already written
func (p *Pipeline) Ingest(ctx context.Context, text string, meta Metadata) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text is required: %w", apperrors.ErrValidation)
	}

	meta = withDefaults(text, meta)

	chunks := p.segmenter.Segment(text)
	docID := uuid.NewString()

	err := p.docs.InsertDocument(ctx, storage.Document{
		DocID:      docID,
		Text:       text,
		Source:     meta.Source,
		Title:      meta.Title,
		ChunkCount: len(chunks),
		CreatedAt:  p.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}

	records := make([]storage.VectorRecord, 0, len(chunks))

	for i, chunk := range chunks {
		vector, err := p.embedder.Embed(ctx, chunk, llm.ModeDocument)
		if err != nil {
			return "", fmt.Errorf("failed to embed chunk %d of %s: %w", i, docID, err)
		}

		records = append(records, storage.VectorRecord{
			ID:     storage.ChunkID(docID, i),
			Values: vector,
			Metadata: storage.ChunkMetadata{
				DocID:      docID,
				ChunkIndex: i,
				Text:       chunk,
				Source:     meta.Source,
				Title:      meta.Title,
			},
		})
	}

	if err := p.index.Upsert(ctx, records); err != nil {
		return "", fmt.Errorf("failed to index %s: %w", docID, err)
	}

	return docID, nil
}

// source defaults to "paste", title to a preview of the text
func withDefaults(text string, meta Metadata) Metadata {
	if meta.Source == "" {
		meta.Source = defaultSource
	}

	if meta.Title == "" {
		meta.Title = titlePreview(text)
	}

	return meta
}

func titlePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= titlePreviewLen {
		return text
	}

	return string(runes[:titlePreviewLen]) + "..."
}
