// Package policy maps structured query fields to a deterministic
// approve/reject decision with a payout amount. No I/O, no state.
package policy

import (
	"strings"

	"docqa/internal/domain"
)

// Rules holds the business constants. The tier-1 city list and the amounts
// are configuration data, not derived logic.
type Rules struct {
	Tier1Cities []string
	Tier1Amount float64
	BaseAmount  float64
}

// DefaultRules returns the reference rule constants.
func DefaultRules() Rules {
	return Rules{
		Tier1Cities: []string{"mumbai", "delhi", "bangalore", "kolkata", "chennai"},
		Tier1Amount: 5000,
		BaseAmount:  3000,
	}
}

// Evaluator applies the rules to structured queries.
type Evaluator struct {
	rules Rules
	tier1 map[string]struct{}
}

// NewEvaluator creates an evaluator. Zero-valued rules select DefaultRules.
func NewEvaluator(rules Rules) *Evaluator {
	if len(rules.Tier1Cities) == 0 && rules.Tier1Amount == 0 && rules.BaseAmount == 0 {
		rules = DefaultRules()
	}
	tier1 := make(map[string]struct{}, len(rules.Tier1Cities))
	for _, c := range rules.Tier1Cities {
		tier1[strings.ToLower(c)] = struct{}{}
	}
	return &Evaluator{rules: rules, tier1: tier1}
}

// Evaluate applies the rules in precedence order; the first matching rule
// wins. Unknown fields never disqualify: absence of evidence is not evidence
// of rejection.
func (e *Evaluator) Evaluate(q domain.StructuredQuery) domain.PolicyDecision {
	age := effectiveAgeYears(q)
	switch {
	case age != nil && *age < 0.5:
		return domain.PolicyDecision{Decision: domain.DecisionRejected}
	case age != nil && (*age < 18 || *age > 60):
		return domain.PolicyDecision{Decision: domain.DecisionRejected}
	case q.PolicyAgeMonths != nil && *q.PolicyAgeMonths < 6:
		return domain.PolicyDecision{Decision: domain.DecisionRejected}
	}
	amount := e.rules.BaseAmount
	if q.Location != nil {
		if _, ok := e.tier1[strings.ToLower(*q.Location)]; ok {
			amount = e.rules.Tier1Amount
		}
	}
	return domain.PolicyDecision{Decision: domain.DecisionApproved, Amount: &amount}
}

// effectiveAgeYears prefers the explicit age in years and falls back to a
// stated age in months.
func effectiveAgeYears(q domain.StructuredQuery) *float64 {
	if q.AgeYears != nil {
		return q.AgeYears
	}
	if q.AgeMonths != nil {
		years := *q.AgeMonths / 12
		return &years
	}
	return nil
}
