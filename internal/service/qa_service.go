// Package service orchestrates the query and ingestion flows.
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"docqa/internal/answer"
	"docqa/internal/domain"
	"docqa/internal/history"
	"docqa/internal/ingest"
	"docqa/internal/policy"
	"docqa/internal/retrieval"
	"docqa/internal/structurer"
)

// QAService answers natural-language questions against ingested documents
// and applies deterministic policy rules on the claim path.
type QAService struct {
	ingestor    *ingest.Ingestor
	retriever   *retrieval.Retriever
	structurer  *structurer.Structurer
	evaluator   *policy.Evaluator
	synthesizer *answer.Synthesizer
	ledger      *history.Ledger
	log         *zap.Logger
}

// NewQAService wires the query engine components together.
func NewQAService(
	ingestor *ingest.Ingestor,
	retriever *retrieval.Retriever,
	str *structurer.Structurer,
	evaluator *policy.Evaluator,
	synthesizer *answer.Synthesizer,
	ledger *history.Ledger,
	log *zap.Logger,
) *QAService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QAService{
		ingestor:    ingestor,
		retriever:   retriever,
		structurer:  str,
		evaluator:   evaluator,
		synthesizer: synthesizer,
		ledger:      ledger,
		log:         log,
	}
}

// Ingest adds a document to the registry and the vector index.
func (s *QAService) Ingest(ctx context.Context, data []byte, name, mimeType, ownerScope string) (domain.Document, error) {
	return s.ingestor.Ingest(ctx, data, name, mimeType, ownerScope)
}

// Delete removes a document, its artifact and its indexed chunks.
func (s *QAService) Delete(ctx context.Context, documentID, ownerScope string) error {
	return s.ingestor.Delete(ctx, documentID, ownerScope)
}

// Documents lists all registered documents in ingestion order.
func (s *QAService) Documents() []domain.Document {
	return s.ingestor.List()
}

// Query answers a free-text question. Structuring, retrieval and synthesis
// each degrade rather than fail, so every non-empty query yields a valid
// payload. The result is appended to the history ledger.
func (s *QAService) Query(ctx context.Context, queryText string) (answer.Response, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return answer.Response{}, domain.ErrEmptyQuery
	}
	structured := s.structurer.Structure(ctx, queryText)

	var payload domain.AnswerPayload
	chunks, err := s.retriever.Retrieve(ctx, queryText)
	if err != nil {
		s.log.Warn("retrieval degraded", zap.Error(err))
		payload = answer.DegradedPayload()
	} else {
		payload = s.synthesizer.Synthesize(ctx, queryText, chunks)
	}

	// Claim-shaped queries get their decision and amount from the
	// deterministic rules; the synthesized text stays as justification.
	if isClaimShaped(structured) {
		decision := s.evaluator.Evaluate(structured)
		payload.Decision = decision.Decision
		payload.Amount = decision.Amount
	}

	s.ledger.Append(queryText, payload)
	s.log.Info("query answered",
		zap.String("decision", string(payload.Decision)),
		zap.Int("chunks", len(chunks)))
	return answer.ToResponse(payload), nil
}

// UpdateSettings mutates the retrieval settings and returns the snapshot.
func (s *QAService) UpdateSettings(includeSystem *bool, allowedDocumentIDs []string, clearAllowList bool) domain.RetrievalSettings {
	return s.retriever.UpdateSettings(includeSystem, allowedDocumentIDs, clearAllowList)
}

// History returns up to limit past queries, most recent first.
func (s *QAService) History(limit int) []domain.QueryRecord {
	return s.ledger.List(limit)
}

// isClaimShaped reports whether the structured fields describe a claim the
// policy rules can decide, rather than a plain document question.
func isClaimShaped(q domain.StructuredQuery) bool {
	return q.AgeYears != nil || q.AgeMonths != nil || q.PolicyAgeMonths != nil
}
