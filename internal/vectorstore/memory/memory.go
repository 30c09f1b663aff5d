package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"docqa/internal/domain"
)

// Index is an in-memory vector index using brute-force exact cosine
// similarity. Query cost is linear in index size, which is the accepted
// scaling limit of this backend.
type Index struct {
	mu       sync.RWMutex
	embedder domain.Embedder
	entries  []domain.IndexEntry
	vectors  [][]float64
}

// NewIndex creates an empty in-memory index over the given embedder.
func NewIndex(embedder domain.Embedder) *Index {
	return &Index{embedder: embedder}
}

// AddDocuments embeds each entry's text and appends it to the index.
// Appends are atomic with respect to concurrent searches and deletes.
func (x *Index) AddDocuments(ctx context.Context, entries []domain.IndexEntry) error {
	dim := x.embedder.Dimension()
	vectors := make([][]float64, len(entries))
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := x.embedder.Embed(e.Text)
		if err != nil {
			return err
		}
		if len(v) != dim {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(v), dim)
		}
		vectors[i] = v
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = append(x.entries, entries...)
	x.vectors = append(x.vectors, vectors...)
	return nil
}

// SimilaritySearch embeds the query, scores every stored vector and returns
// the top-k by descending cosine similarity. Ties keep insertion order.
func (x *Index) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}
	qv, err := x.embedder.Embed(query)
	if err != nil {
		return nil, err
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	scores := make([]float64, len(x.vectors))
	for i := range x.vectors {
		scores[i] = Cosine(x.vectors[i], qv)
	}
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return scores[idxs[i]] > scores[idxs[j]] })
	if k > len(idxs) {
		k = len(idxs)
	}
	results := make([]domain.RetrievedChunk, 0, k)
	for _, j := range idxs[:k] {
		results = append(results, domain.RetrievedChunk{
			Text:     x.entries[j].Text,
			Metadata: x.entries[j].Metadata,
			Score:    scores[j],
		})
	}
	return results, nil
}

// DeleteByDocument removes every entry whose metadata references the
// document id. The filter-and-remove is applied as one atomic step.
func (x *Index) DeleteByDocument(_ context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	entries := x.entries[:0]
	vectors := x.vectors[:0]
	for i, e := range x.entries {
		if e.Metadata.DocumentID == documentID {
			continue
		}
		entries = append(entries, e)
		vectors = append(vectors, x.vectors[i])
	}
	x.entries = entries
	x.vectors = vectors
	return nil
}

// Len reports the number of indexed chunks.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Cosine returns the cosine similarity of a and b. It is 0 when either norm
// is zero or the lengths mismatch; it never divides by zero and never panics.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
