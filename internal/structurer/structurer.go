// Package structurer extracts typed fields from free-text queries. A cheap
// heuristic pass always runs; an optional LLM pass refines it and is allowed
// to fail without consequence.
package structurer

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

const defaultMaxTokens = 200

var (
	ageYearsRe = regexp.MustCompile(`(\d+)\s*-?\s*year`)
	monthsRe   = regexp.MustCompile(`(\d+)\s*-?\s*month`)
)

// defaultCities is the gazetteer used for heuristic location detection.
var defaultCities = []string{"mumbai", "delhi", "bangalore", "kolkata", "chennai", "pune"}

const extractionPrompt = `Extract the following fields from the insurance query below.
Respond with strict JSON only, no prose, using exactly this schema:
{"age_years": number or null, "age_months": number or null, "procedure": string or null, "location": string or null, "policy_age_months": number or null}
Omit or null any field the query does not state.

Query: %q`

// Structurer turns free-text queries into StructuredQuery values. It never
// fails: the heuristic result stands whenever the LLM pass cannot improve it.
type Structurer struct {
	llm         domain.CompletionClient
	cities      []string
	temperature float64
	maxTokens   int
	log         *zap.Logger
}

// New creates a structurer. A nil client disables the LLM pass. An empty
// cities list selects the default gazetteer; a negative temperature or
// non-positive maxTokens selects the defaults (0 / 200).
func New(llm domain.CompletionClient, cities []string, temperature float64, maxTokens int, log *zap.Logger) *Structurer {
	if len(cities) == 0 {
		cities = defaultCities
	}
	if temperature < 0 {
		temperature = 0
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Structurer{llm: llm, cities: cities, temperature: temperature, maxTokens: maxTokens, log: log}
}

// Structure extracts typed fields from the query text.
func (s *Structurer) Structure(ctx context.Context, queryText string) domain.StructuredQuery {
	result := s.heuristic(queryText)
	refined, _ := fallback.Run(
		func() (domain.StructuredQuery, error) {
			return s.llmExtract(ctx, queryText, result)
		},
		func(err error) domain.StructuredQuery {
			s.log.Debug("llm field extraction skipped", zap.Error(err))
			return result
		},
	)
	return refined
}

// heuristic applies the fixed pattern rules over the lowercased text.
func (s *Structurer) heuristic(queryText string) domain.StructuredQuery {
	text := strings.ToLower(queryText)
	var q domain.StructuredQuery

	if m := ageYearsRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			q.AgeYears = &v
		}
	}
	// "3-month-old insurance policy" means the policy age, not a person's;
	// an age stated in months is only ever filled by the LLM pass
	if m := monthsRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			q.PolicyAgeMonths = &v
		}
	}
	for _, city := range s.cities {
		if strings.Contains(text, city) {
			c := city
			q.Location = &c
			break
		}
	}
	// most specific procedure wins
	switch {
	case strings.Contains(text, "knee"):
		p := "knee surgery"
		q.Procedure = &p
	case strings.Contains(text, "hip"):
		p := "hip surgery"
		q.Procedure = &p
	case strings.Contains(text, "surgery"):
		p := "surgery"
		q.Procedure = &p
	}
	return q
}

// llmExtract asks the model for the same schema as strict JSON and overrides
// only the fields actually present in the parsed response.
func (s *Structurer) llmExtract(ctx context.Context, queryText string, base domain.StructuredQuery) (domain.StructuredQuery, error) {
	if s.llm == nil {
		return base, fallback.ErrNoPrimary
	}
	raw, err := s.llm.CompleteJSON(ctx, fmt.Sprintf(extractionPrompt, queryText), s.temperature, s.maxTokens)
	if err != nil {
		return base, err
	}
	var parsed domain.StructuredQuery
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return base, fallback.Reason("non-JSON extraction response: %v", err)
	}
	merged := base
	if parsed.AgeYears != nil {
		merged.AgeYears = parsed.AgeYears
	}
	if parsed.AgeMonths != nil {
		merged.AgeMonths = parsed.AgeMonths
	}
	if parsed.Procedure != nil {
		merged.Procedure = parsed.Procedure
	}
	if parsed.Location != nil {
		merged.Location = parsed.Location
	}
	if parsed.PolicyAgeMonths != nil {
		merged.PolicyAgeMonths = parsed.PolicyAgeMonths
	}
	return merged, nil
}
