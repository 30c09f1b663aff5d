package answer

import "docqa/internal/domain"

// Response is the boundary shape of a query answer: the canonical payload
// plus the legacy Decision/Amount/Justification aliases some consumers still
// read. The aliases are derived here and nowhere else.
type Response struct {
	domain.AnswerPayload
	LegacyDecision      domain.Decision `json:"Decision"`
	LegacyAmount        *float64        `json:"Amount"`
	LegacyJustification string          `json:"Justification"`
}

// ToResponse derives the legacy aliases from the canonical payload.
func ToResponse(p domain.AnswerPayload) Response {
	return Response{
		AnswerPayload:       p,
		LegacyDecision:      p.Decision,
		LegacyAmount:        p.Amount,
		LegacyJustification: p.Reasoning,
	}
}
