// Package retrieval narrows which indexed chunks a query may see and runs
// the search-broad-then-filter retrieval step.
package retrieval

import (
	"context"
	"sync"

	"docqa/internal/domain"
)

const (
	defaultSearchK = 20
	defaultTopK    = 5
)

// Eligible reports whether a chunk's metadata passes the retrieval settings.
// A chunk is eligible when it is a system chunk and system documents are
// included, when no allow-list is set, or when its document is allow-listed.
func Eligible(settings domain.RetrievalSettings, meta domain.ChunkMetadata) bool {
	if meta.IsSystem && settings.IncludeSystemDocuments {
		return true
	}
	if settings.AllowedDocumentIDs == nil {
		return true
	}
	_, ok := settings.AllowedDocumentIDs[meta.DocumentID]
	return ok
}

// Retriever runs scope-filtered similarity searches against a vector index.
// It searches broader than needed so filtering never starves the ranking of
// candidates, then truncates to the final count.
type Retriever struct {
	index   domain.VectorIndex
	searchK int
	topK    int

	mu       sync.RWMutex
	settings domain.RetrievalSettings
}

// NewRetriever creates a retriever with "search everything" settings.
// Non-positive searchK/topK select the defaults (20/5).
func NewRetriever(index domain.VectorIndex, searchK, topK int) *Retriever {
	if searchK <= 0 {
		searchK = defaultSearchK
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if searchK < topK {
		searchK = topK
	}
	return &Retriever{index: index, searchK: searchK, topK: topK}
}

// Retrieve returns up to topK eligible chunks for the query, ranked by
// similarity.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	settings := r.Settings()
	raw, err := r.index.SimilaritySearch(ctx, query, r.searchK)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RetrievedChunk, 0, r.topK)
	for _, c := range raw {
		if !Eligible(settings, c.Metadata) {
			continue
		}
		out = append(out, c)
		if len(out) == r.topK {
			break
		}
	}
	return out, nil
}

// Settings returns a snapshot of the current retrieval settings.
func (r *Retriever) Settings() domain.RetrievalSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSettings(r.settings)
}

// UpdateSettings applies the non-nil fields of the update and returns the
// resulting snapshot. This is the only mutation path for settings.
func (r *Retriever) UpdateSettings(includeSystem *bool, allowedDocumentIDs []string, clearAllowList bool) domain.RetrievalSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	if includeSystem != nil {
		r.settings.IncludeSystemDocuments = *includeSystem
	}
	if clearAllowList {
		r.settings.AllowedDocumentIDs = nil
	} else if allowedDocumentIDs != nil {
		set := make(map[string]struct{}, len(allowedDocumentIDs))
		for _, id := range allowedDocumentIDs {
			set[id] = struct{}{}
		}
		r.settings.AllowedDocumentIDs = set
	}
	return cloneSettings(r.settings)
}

func cloneSettings(s domain.RetrievalSettings) domain.RetrievalSettings {
	out := domain.RetrievalSettings{IncludeSystemDocuments: s.IncludeSystemDocuments}
	if s.AllowedDocumentIDs != nil {
		out.AllowedDocumentIDs = make(map[string]struct{}, len(s.AllowedDocumentIDs))
		for id := range s.AllowedDocumentIDs {
			out.AllowedDocumentIDs[id] = struct{}{}
		}
	}
	return out
}
