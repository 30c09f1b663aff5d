// Package ingest orchestrates extraction, chunking, embedding and indexing,
// and owns the document registry.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docqa/internal/domain"
)

// Ingestor owns the document registry and drives the ingestion pipeline:
// extract -> register -> chunk -> index.
type Ingestor struct {
	extractor  domain.Extractor
	chunker    domain.Chunker
	index      domain.VectorIndex
	storageDir string
	log        *zap.Logger

	mu    sync.Mutex
	docs  map[string]domain.Document
	order []string
}

// NewIngestor creates an ingestor writing raw artifacts under storageDir.
// An empty storageDir disables artifact storage.
func NewIngestor(extractor domain.Extractor, chunker domain.Chunker, index domain.VectorIndex, storageDir string, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{
		extractor:  extractor,
		chunker:    chunker,
		index:      index,
		storageDir: storageDir,
		log:        log,
		docs:       make(map[string]domain.Document),
	}
}

// Ingest extracts text from the file bytes, registers a Document and indexes
// its chunks with metadata attached. Chunks of one document are indexed in
// sequence order within this single call.
func (g *Ingestor) Ingest(ctx context.Context, data []byte, name, mimeType, ownerScope string) (domain.Document, error) {
	return g.ingest(ctx, data, name, mimeType, ownerScope, false)
}

// RegisterSystem ingests a document flagged is_system, which is shared
// read-only content and can never be deleted.
func (g *Ingestor) RegisterSystem(ctx context.Context, data []byte, name, mimeType string) (domain.Document, error) {
	return g.ingest(ctx, data, name, mimeType, "", true)
}

func (g *Ingestor) ingest(ctx context.Context, data []byte, name, mimeType, ownerScope string, system bool) (domain.Document, error) {
	text, err := g.extractor.Extract(ctx, data, mimeType)
	if err != nil {
		return domain.Document{}, err
	}
	doc := domain.Document{
		ID:         uuid.New().String(),
		Name:       name,
		MIMEType:   mimeType,
		ByteSize:   int64(len(data)),
		UploadedAt: time.Now(),
		OwnerScope: ownerScope,
		IsSystem:   system,
	}
	if g.storageDir != "" {
		loc, err := g.storeArtifact(doc.ID, name, data)
		if err != nil {
			return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
		}
		doc.StorageLocation = loc
	}
	chunks := g.chunker.Chunk(text)
	entries := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = domain.IndexEntry{
			Text: c,
			Metadata: domain.ChunkMetadata{
				DocumentID: doc.ID,
				OwnerScope: ownerScope,
				IsSystem:   system,
			},
		}
	}
	if len(entries) > 0 {
		if err := g.index.AddDocuments(ctx, entries); err != nil {
			g.removeArtifact(doc.StorageLocation)
			return domain.Document{}, fmt.Errorf("index chunks: %w", err)
		}
	}
	g.mu.Lock()
	g.docs[doc.ID] = doc
	g.order = append(g.order, doc.ID)
	g.mu.Unlock()
	g.log.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.String("name", name),
		zap.Int("chunks", len(entries)))
	return doc, nil
}

// Delete removes the document, its on-disk artifact and every indexed vector
// derived from it. System documents and documents owned by a different
// non-empty scope are refused with ErrForbidden.
func (g *Ingestor) Delete(ctx context.Context, documentID, ownerScope string) error {
	g.mu.Lock()
	doc, ok := g.docs[documentID]
	if !ok {
		g.mu.Unlock()
		return domain.ErrNotFound
	}
	if doc.IsSystem || (doc.OwnerScope != "" && doc.OwnerScope != ownerScope) {
		g.mu.Unlock()
		return domain.ErrForbidden
	}
	delete(g.docs, documentID)
	for i, id := range g.order {
		if id == documentID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.mu.Unlock()

	g.removeArtifact(doc.StorageLocation)
	// Best effort for external index backends; the registry entry is gone
	// either way.
	if err := g.index.DeleteByDocument(ctx, documentID); err != nil {
		g.log.Warn("index cleanup failed", zap.String("document_id", documentID), zap.Error(err))
	}
	g.log.Info("document deleted", zap.String("document_id", documentID))
	return nil
}

// Get returns the registered document for the id.
func (g *Ingestor) Get(documentID string) (domain.Document, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, ok := g.docs[documentID]
	return doc, ok
}

// List returns all registered documents in ingestion order.
func (g *Ingestor) List() []domain.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.Document, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.docs[id])
	}
	return out
}

func (g *Ingestor) storeArtifact(id, name string, data []byte) (string, error) {
	if err := os.MkdirAll(g.storageDir, 0o755); err != nil {
		return "", err
	}
	loc := filepath.Join(g.storageDir, id+filepath.Ext(name))
	if err := os.WriteFile(loc, data, 0o644); err != nil {
		return "", err
	}
	return loc, nil
}

func (g *Ingestor) removeArtifact(loc string) {
	if loc == "" {
		return
	}
	if err := os.Remove(loc); err != nil && !os.IsNotExist(err) {
		g.log.Warn("artifact cleanup failed", zap.String("path", loc), zap.Error(err))
	}
}
