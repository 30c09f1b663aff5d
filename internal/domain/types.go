package domain

import "time"

// Document is a registered entry for one ingested file.
type Document struct {
	ID              string
	Name            string
	MIMEType        string
	ByteSize        int64
	UploadedAt      time.Time
	StorageLocation string
	OwnerScope      string
	IsSystem        bool
}

// ChunkMetadata travels with every indexed vector and survives a round trip
// through any vector store backend.
type ChunkMetadata struct {
	DocumentID string
	OwnerScope string
	IsSystem   bool
}

// IndexEntry is one chunk of text plus its metadata, ready for indexing.
type IndexEntry struct {
	Text     string
	Metadata ChunkMetadata
}

// RetrievedChunk is a search hit with its similarity score.
type RetrievedChunk struct {
	Text     string
	Metadata ChunkMetadata
	Score    float64
}

// RetrievalSettings narrows which indexed chunks a query may see.
// A nil AllowedDocumentIDs means no allow-list restriction.
type RetrievalSettings struct {
	IncludeSystemDocuments bool
	AllowedDocumentIDs     map[string]struct{}
}

// StructuredQuery holds the typed fields extracted from a free-text question.
// Nil means the field could not be determined.
type StructuredQuery struct {
	AgeYears        *float64 `json:"age_years,omitempty"`
	AgeMonths       *float64 `json:"age_months,omitempty"`
	Procedure       *string  `json:"procedure,omitempty"`
	Location        *string  `json:"location,omitempty"`
	PolicyAgeMonths *float64 `json:"policy_age_months,omitempty"`
}

// Decision is the outcome class of a policy evaluation or synthesized answer.
type Decision string

const (
	DecisionApproved  Decision = "approved"
	DecisionRejected  Decision = "rejected"
	DecisionNeedsInfo Decision = "requires_more_info"
)

// PolicyDecision is the output of the deterministic rule evaluation.
type PolicyDecision struct {
	Decision Decision
	Amount   *float64
}

// AnswerPayload is the canonical answer shape. Legacy aliases are derived
// from it at the boundary only, never carried through internal logic.
type AnswerPayload struct {
	Answer          string   `json:"answer"`
	Decision        Decision `json:"decision"`
	Amount          *float64 `json:"amount"`
	Reasoning       string   `json:"reasoning"`
	RelevantClauses []string `json:"relevant_clauses,omitempty"`
	Limitations     string   `json:"limitations,omitempty"`
	Confidence      float64  `json:"confidence,omitempty"`
}

// QueryRecord is one audit entry in the query history ledger.
type QueryRecord struct {
	ID        string
	QueryText string
	Answer    AnswerPayload
	Timestamp time.Time
}
