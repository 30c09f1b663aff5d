package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/embedding"
	"docqa/internal/extract"
	"docqa/internal/history"
	"docqa/internal/ingest"
	"docqa/internal/policy"
	"docqa/internal/retrieval"
	"docqa/internal/structurer"
	"docqa/internal/vectorstore/memory"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) CompleteJSON(context.Context, string, float64, int) (string, error) {
	return f.response, f.err
}

const policyText = `Clause 1: Orthopaedic procedures including knee surgery are covered.
Clause 2: A waiting period of six months applies to new policies.
Clause 3: Claims from tier-1 cities follow the metropolitan payout schedule.`

func newTestService(t *testing.T, llm domain.CompletionClient) (*QAService, *ingest.Ingestor) {
	t.Helper()
	provider := embedding.NewProvider(nil, 64, nil)
	index := memory.NewIndex(provider)
	ingestor := ingest.NewIngestor(extract.NewService(), chunker.NewWindowChunker(120, 30), index, t.TempDir(), nil)
	svc := NewQAService(
		ingestor,
		retrieval.NewRetriever(index, 20, 5),
		structurer.New(llm, nil, 0, 0, nil),
		policy.NewEvaluator(policy.DefaultRules()),
		answer.NewSynthesizer(llm, 0.1, 512, nil),
		history.NewLedger(10),
		nil,
	)
	return svc, ingestor
}

func TestQueryEmptyTextRejected(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Query(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestClaimQueryGetsDeterministicDecision(t *testing.T) {
	llm := &fakeLLM{response: `{"answer": "Covered per clause 1.", "decision": "requires_more_info", "reasoning": "clause 1"}`}
	svc, _ := newTestService(t, llm)
	_, err := svc.Ingest(context.Background(), []byte(policyText), "policy.txt", "txt", "user-1")
	require.NoError(t, err)

	res, err := svc.Query(context.Background(), "46-year-old, knee surgery in Mumbai, 12 month policy")
	require.NoError(t, err)
	// the policy rules override whatever the model decided
	assert.Equal(t, domain.DecisionApproved, res.Decision)
	require.NotNil(t, res.Amount)
	assert.Equal(t, 5000.0, *res.Amount)
	assert.Equal(t, "Covered per clause 1.", res.Answer)
	// legacy aliases mirror the canonical fields
	assert.Equal(t, res.Decision, res.LegacyDecision)
	assert.Equal(t, res.Amount, res.LegacyAmount)
	assert.Equal(t, res.Reasoning, res.LegacyJustification)
}

func TestClaimQueryRejectedByRules(t *testing.T) {
	llm := &fakeLLM{response: `{"answer": "Looks fine.", "decision": "approved", "reasoning": "clause 1"}`}
	svc, _ := newTestService(t, llm)
	_, err := svc.Ingest(context.Background(), []byte(policyText), "policy.txt", "txt", "user-1")
	require.NoError(t, err)

	res, err := svc.Query(context.Background(), "17-year-old, knee surgery in Mumbai")
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionRejected, res.Decision)
	assert.Nil(t, res.Amount)
}

func TestQueryBeforeIngestNeedsMoreInfo(t *testing.T) {
	llm := &fakeLLM{response: `{"answer": "x", "decision": "approved", "reasoning": "y"}`}
	svc, _ := newTestService(t, llm)
	res, err := svc.Query(context.Background(), "what does the policy cover?")
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionNeedsInfo, res.Decision)
}

func TestQueryDegradesWhenLLMDown(t *testing.T) {
	llm := &fakeLLM{err: errors.New("gateway timeout")}
	svc, _ := newTestService(t, llm)
	_, err := svc.Ingest(context.Background(), []byte(policyText), "policy.txt", "txt", "")
	require.NoError(t, err)

	res, err := svc.Query(context.Background(), "what does clause 2 say?")
	require.NoError(t, err, "dependency failures must not fail the request")
	assert.Equal(t, domain.DecisionNeedsInfo, res.Decision)
	assert.Equal(t, "technical error", res.Reasoning)
}

func TestQueryAppendsHistory(t *testing.T) {
	llm := &fakeLLM{response: `{"answer": "x", "decision": "approved", "reasoning": "y"}`}
	svc, _ := newTestService(t, llm)
	_, err := svc.Ingest(context.Background(), []byte(policyText), "policy.txt", "txt", "")
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), "first question")
	require.NoError(t, err)
	_, err = svc.Query(context.Background(), "second question")
	require.NoError(t, err)

	records := svc.History(10)
	require.Len(t, records, 2)
	assert.Equal(t, "second question", records[0].QueryText)
	assert.Equal(t, "first question", records[1].QueryText)
}

func TestAllowListRestrictsRetrieval(t *testing.T) {
	llm := &fakeLLM{response: `{"answer": "x", "decision": "approved", "reasoning": "y"}`}
	svc, _ := newTestService(t, llm)
	docA, err := svc.Ingest(context.Background(), []byte("alpha content about surgery"), "a.txt", "txt", "")
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), []byte("beta content about dental"), "b.txt", "txt", "")
	require.NoError(t, err)

	snap := svc.UpdateSettings(nil, []string{docA.ID}, false)
	assert.Contains(t, snap.AllowedDocumentIDs, docA.ID)

	// restrict to a document, then to nothing that exists
	res, err := svc.Query(context.Background(), "alpha content about surgery")
	require.NoError(t, err)
	assert.NotEqual(t, domain.DecisionNeedsInfo, res.Decision)

	svc.UpdateSettings(nil, []string{"no-such-doc"}, false)
	res, err = svc.Query(context.Background(), "alpha content about surgery")
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionNeedsInfo, res.Decision)
}

func TestDeleteRemovesDocumentFromRetrieval(t *testing.T) {
	llm := &fakeLLM{response: `{"answer": "x", "decision": "approved", "reasoning": "y"}`}
	svc, _ := newTestService(t, llm)
	doc, err := svc.Ingest(context.Background(), []byte("unique gamma clause text"), "g.txt", "txt", "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), doc.ID, "user-1"))
	res, err := svc.Query(context.Background(), "unique gamma clause text")
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionNeedsInfo, res.Decision)
	assert.Empty(t, svc.Documents())
}

func TestDeleteErrors(t *testing.T) {
	svc, ingestor := newTestService(t, nil)
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing", ""), domain.ErrNotFound)

	sys, err := ingestor.RegisterSystem(context.Background(), []byte("shared reference text"), "ref.txt", "txt")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(context.Background(), sys.ID, ""), domain.ErrForbidden)

	owned, err := svc.Ingest(context.Background(), []byte("private text"), "p.txt", "txt", "user-1")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(context.Background(), owned.ID, "user-2"), domain.ErrForbidden)
}
