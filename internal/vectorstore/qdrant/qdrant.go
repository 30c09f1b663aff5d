package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
)

// Index is a minimal REST client to Qdrant. It assumes cosine distance and
// creates the collection on first use. Chunk metadata round-trips unchanged
// through the point payload so scope filtering keeps working after retrieval.
type Index struct {
	url        string
	apiKey     string
	collection string
	embedder   domain.Embedder
	client     *http.Client
}

// Config contains connection details for a Qdrant vector index.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewIndex creates a Qdrant-backed index over the given embedder.
func NewIndex(cfg Config, embedder domain.Embedder) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		embedder:   embedder,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection if missing. Qdrant answers 200 for an existing
// collection with the same schema.
func (x *Index) Init(ctx context.Context) error {
	dim := x.embedder.Dimension()
	if dim <= 0 {
		return errors.New("invalid dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	return x.putJSON(ctx, fmt.Sprintf("%s/collections/%s", x.url, x.collection), body)
}

// AddDocuments embeds each entry's text and upserts it as one point.
func (x *Index) AddDocuments(ctx context.Context, entries []domain.IndexEntry) error {
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		vec, err := x.embedder.Embed(e.Text)
		if err != nil {
			return err
		}
		points[i] = map[string]any{
			"id":     uuid.New().String(),
			"vector": vec,
			"payload": map[string]any{
				"text":        e.Text,
				"document_id": e.Metadata.DocumentID,
				"owner_scope": e.Metadata.OwnerScope,
				"is_system":   e.Metadata.IsSystem,
			},
		}
	}
	body := map[string]any{"points": points}
	return x.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", x.url, x.collection), body)
}

// SimilaritySearch embeds the query and asks Qdrant for the top-k points.
func (x *Index) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}
	vec, err := x.embedder.Embed(query)
	if err != nil {
		return nil, err
	}
	req := map[string]any{
		"vector":       vec,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := x.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", x.url, x.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.RetrievedChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := domain.RetrievedChunk{Score: r.Score}
		if v, ok := r.Payload["text"].(string); ok {
			chunk.Text = v
		}
		if v, ok := r.Payload["document_id"].(string); ok {
			chunk.Metadata.DocumentID = v
		}
		if v, ok := r.Payload["owner_scope"].(string); ok {
			chunk.Metadata.OwnerScope = v
		}
		if v, ok := r.Payload["is_system"].(bool); ok {
			chunk.Metadata.IsSystem = v
		}
		results = append(results, chunk)
	}
	return results, nil
}

// DeleteByDocument removes every point whose payload references the
// document id. Best effort: the remote store is the source of truth here.
func (x *Index) DeleteByDocument(ctx context.Context, documentID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "document_id", "match": map[string]any{"value": documentID}},
			},
		},
	}
	return x.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/delete?wait=true", x.url, x.collection), body, nil)
}

func (x *Index) putJSON(ctx context.Context, url string, body any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}
	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (x *Index) postJSON(ctx context.Context, url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}
	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
