package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func TestAppendAndListMostRecentFirst(t *testing.T) {
	l := NewLedger(10)
	for i := 0; i < 3; i++ {
		l.Append(fmt.Sprintf("query %d", i), domain.AnswerPayload{Answer: fmt.Sprintf("answer %d", i)})
	}
	records := l.List(0)
	require.Len(t, records, 3)
	assert.Equal(t, "query 2", records[0].QueryText)
	assert.Equal(t, "query 1", records[1].QueryText)
	assert.Equal(t, "query 0", records[2].QueryText)
}

func TestListLimit(t *testing.T) {
	l := NewLedger(10)
	for i := 0; i < 5; i++ {
		l.Append(fmt.Sprintf("query %d", i), domain.AnswerPayload{})
	}
	records := l.List(2)
	require.Len(t, records, 2)
	assert.Equal(t, "query 4", records[0].QueryText)
	assert.Equal(t, "query 3", records[1].QueryText)
}

func TestFIFOEviction(t *testing.T) {
	l := NewLedger(3)
	for i := 0; i < 20; i++ {
		l.Append(fmt.Sprintf("query %d", i), domain.AnswerPayload{})
		assert.LessOrEqual(t, l.Len(), 3)
	}
	records := l.List(0)
	require.Len(t, records, 3)
	// oldest dropped first: only the three most recent survive, in order
	assert.Equal(t, "query 19", records[0].QueryText)
	assert.Equal(t, "query 18", records[1].QueryText)
	assert.Equal(t, "query 17", records[2].QueryText)
}

func TestRecordsCarryIDAndTimestamp(t *testing.T) {
	l := NewLedger(5)
	rec := l.Append("a query", domain.AnswerPayload{Answer: "an answer"})
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
	assert.Equal(t, "an answer", rec.Answer.Answer)
}
