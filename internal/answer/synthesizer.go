// Package answer builds grounding prompts from retrieved chunks and parses
// the model's structured reply. Every failure path collapses into a fixed
// degraded payload, so callers never see transport errors.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"docqa/internal/domain"
	"docqa/internal/fallback"
)

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 512
)

// moneyKeywords gates amount extraction: without one of these in the query,
// the amount is forced to nil no matter what the model said.
var moneyKeywords = []string{
	"amount", "cost", "price", "fee", "payout", "coverage", "limit",
	"premium", "reimburse", "pay",
}

var (
	currencyAmountRe = regexp.MustCompile(`[$₹]\s*(\d[\d,]*(?:\.\d+)?)`)
	wordedAmountRe   = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*(?:dollars|rupees|usd|inr)`)
)

const groundingPrompt = `Answer the question using only the policy excerpts below.
Respond with strict JSON only, using exactly this schema:
{"answer": string, "decision": "approved"|"rejected"|"requires_more_info", "reasoning": string, "relevant_clauses": [string], "limitations": string, "confidence": number between 0 and 1}

Excerpts:
%s

Question: %s`

// Synthesizer produces grounded answers from retrieved chunks via the LLM.
type Synthesizer struct {
	llm         domain.CompletionClient
	temperature float64
	maxTokens   int
	log         *zap.Logger
}

// NewSynthesizer creates a synthesizer with the given sampling settings.
// A negative temperature or non-positive maxTokens selects the defaults.
func NewSynthesizer(llm domain.CompletionClient, temperature float64, maxTokens int, log *zap.Logger) *Synthesizer {
	if temperature < 0 {
		temperature = defaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{llm: llm, temperature: temperature, maxTokens: maxTokens, log: log}
}

// Synthesize answers the query from the retrieved chunks. With no chunks it
// short-circuits to a requires_more_info payload without calling the LLM.
func (s *Synthesizer) Synthesize(ctx context.Context, queryText string, chunks []domain.RetrievedChunk) domain.AnswerPayload {
	if len(chunks) == 0 {
		return domain.AnswerPayload{
			Answer:    "No relevant content was found in the available documents for this query.",
			Decision:  domain.DecisionNeedsInfo,
			Reasoning: "no matching document passages",
		}
	}
	payload, _ := fallback.Run(
		func() (domain.AnswerPayload, error) {
			return s.ask(ctx, queryText, chunks)
		},
		func(err error) domain.AnswerPayload {
			s.log.Warn("answer synthesis degraded", zap.Error(err))
			return DegradedPayload()
		},
	)
	return payload
}

// DegradedPayload is the fixed reply for any synthesis failure.
func DegradedPayload() domain.AnswerPayload {
	return domain.AnswerPayload{
		Answer:    "The query could not be processed right now. Please try again.",
		Decision:  domain.DecisionNeedsInfo,
		Reasoning: "technical error",
	}
}

func (s *Synthesizer) ask(ctx context.Context, queryText string, chunks []domain.RetrievedChunk) (domain.AnswerPayload, error) {
	if s.llm == nil {
		return domain.AnswerPayload{}, fallback.ErrNoPrimary
	}
	var excerpts strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&excerpts, "[%d] %s\n", i+1, c.Text)
	}
	raw, err := s.llm.CompleteJSON(ctx, fmt.Sprintf(groundingPrompt, excerpts.String(), queryText), s.temperature, s.maxTokens)
	if err != nil {
		return domain.AnswerPayload{}, err
	}
	var parsed struct {
		Answer          string   `json:"answer"`
		Decision        string   `json:"decision"`
		Reasoning       string   `json:"reasoning"`
		RelevantClauses []string `json:"relevant_clauses"`
		Limitations     string   `json:"limitations"`
		Confidence      float64  `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.AnswerPayload{}, fallback.Reason("non-JSON answer: %v", err)
	}
	if parsed.Answer == "" || parsed.Decision == "" {
		return domain.AnswerPayload{}, fallback.Reason("answer missing required fields")
	}
	payload := domain.AnswerPayload{
		Answer:          parsed.Answer,
		Decision:        normalizeDecision(parsed.Decision),
		Reasoning:       parsed.Reasoning,
		RelevantClauses: parsed.RelevantClauses,
		Limitations:     parsed.Limitations,
		Confidence:      parsed.Confidence,
	}
	if hasMoneyKeyword(queryText) {
		payload.Amount = extractAmount(parsed.Answer + " " + parsed.Reasoning)
	}
	return payload, nil
}

func normalizeDecision(d string) domain.Decision {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "approved":
		return domain.DecisionApproved
	case "rejected":
		return domain.DecisionRejected
	default:
		return domain.DecisionNeedsInfo
	}
}

func hasMoneyKeyword(queryText string) bool {
	text := strings.ToLower(queryText)
	for _, kw := range moneyKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// extractAmount finds the first $N, ₹N or "N dollars/rupees/USD/INR" figure.
func extractAmount(text string) *float64 {
	var digits string
	if m := currencyAmountRe.FindStringSubmatch(text); m != nil {
		digits = m[1]
	} else if m := wordedAmountRe.FindStringSubmatch(text); m != nil {
		digits = m[1]
	} else {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
