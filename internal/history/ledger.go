// Package history keeps a bounded append-only record of past queries.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
)

const defaultMaxRecords = 50

// Ledger is an append-only audit trail with FIFO eviction: once the cap is
// reached the oldest record is dropped on every append.
type Ledger struct {
	mu      sync.Mutex
	records []domain.QueryRecord
	max     int
}

// NewLedger creates a ledger retaining at most max records.
func NewLedger(max int) *Ledger {
	if max <= 0 {
		max = defaultMaxRecords
	}
	return &Ledger{max: max}
}

// Append records a query and its answer, evicting the oldest entries until
// the length constraint holds.
func (l *Ledger) Append(queryText string, payload domain.AnswerPayload) domain.QueryRecord {
	rec := domain.QueryRecord{
		ID:        uuid.New().String(),
		QueryText: queryText,
		Answer:    payload,
		Timestamp: time.Now(),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	if excess := len(l.records) - l.max; excess > 0 {
		n := copy(l.records, l.records[excess:])
		// zero the vacated tail so evicted payloads are collectable
		clear(l.records[n:])
		l.records = l.records[:n]
	}
	return rec
}

// List returns up to limit records, most recent first. A non-positive limit
// returns everything retained.
func (l *Ledger) List(limit int) []domain.QueryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.QueryRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// Len reports the number of retained records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
