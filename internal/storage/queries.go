package storage

const (
	createExtensionQuery = `CREATE EXTENSION IF NOT EXISTS vector`

	createDocumentsQuery = `
		CREATE TABLE IF NOT EXISTS documents (
			doc_id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			chunk_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`

	// %d is the embedding dimension, fixed at schema creation
	createChunksQueryTemplate = `
		CREATE TABLE IF NOT EXISTS doc_chunks (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL REFERENCES documents(doc_id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)
	`

	createChunksIndexQuery = `
		CREATE INDEX IF NOT EXISTS idx_doc_chunks_embedding
		ON doc_chunks USING hnsw (embedding vector_cosine_ops)
	`

	createDocumentsLookupIndexQuery = `
		CREATE INDEX IF NOT EXISTS idx_documents_source_title ON documents(source, title)
	`

	insertDocumentQuery = `
		INSERT INTO documents (doc_id, text, source, title, chunk_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	getDocumentQuery = `
		SELECT doc_id, text, source, title, chunk_count, created_at
		FROM documents
		WHERE doc_id = $1
	`

	findDocumentsQuery = `
		SELECT doc_id, text, source, title, chunk_count, created_at
		FROM documents
		WHERE source = $1 AND title = $2
		ORDER BY created_at DESC
	`

	deleteDocumentQuery  = `DELETE FROM documents WHERE doc_id = $1`
	deleteDocChunksQuery = `DELETE FROM doc_chunks WHERE doc_id = $1`

	upsertChunkQuery = `
		INSERT INTO doc_chunks (id, doc_id, chunk_index, text, source, title, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			doc_id = EXCLUDED.doc_id,
			chunk_index = EXCLUDED.chunk_index,
			text = EXCLUDED.text,
			source = EXCLUDED.source,
			title = EXCLUDED.title,
			embedding = EXCLUDED.embedding
	`

	searchChunksQuery = `
		SELECT id, doc_id, chunk_index, text, source, title, 1 - (embedding <=> $1) AS score
		FROM doc_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	getChunkCountQuery = "SELECT COUNT(*) FROM doc_chunks"
)
