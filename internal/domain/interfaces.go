package domain

import "context"

// Embedder converts free text into a numeric vector representation of a
// fixed dimension.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Chunker splits extracted document text into overlapping windows sized
// for embedding and context limits.
type Chunker interface {
	Chunk(text string) []string
}

// VectorIndex stores text chunks with metadata and answers nearest-neighbour
// queries. Exactly one backend variant is chosen at startup.
type VectorIndex interface {
	AddDocuments(ctx context.Context, entries []IndexEntry) error
	SimilaritySearch(ctx context.Context, query string, k int) ([]RetrievedChunk, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Extractor turns raw file bytes into plain text. It fails with
// ErrUnsupportedFormat for unknown types and ErrParseFailure for corrupt input.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// CompletionClient asks a language model for a strict-JSON completion.
// Transport and timeout errors are returned to the caller, which degrades.
type CompletionClient interface {
	CompleteJSON(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}
