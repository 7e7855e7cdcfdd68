package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu      sync.Mutex
	records []rosterdomain.FuzzyMatch
	err     error
}

func (s *fakeSink) RecordFuzzyMatch(_ context.Context, match rosterdomain.FuzzyMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, match)
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueue_ConcurrentPublishersLoseNothing(t *testing.T) {
	sink := &fakeSink{}
	q, err := NewQueue(context.Background(), sink, discardLogger())
	require.NoError(t, err)

	const publishers = 40
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := q.RecordFuzzyMatch(context.Background(), rosterdomain.FuzzyMatch{
				TournamentFirst: "Mark",
				DBFirst:         "Marc",
				PlayerID:        fmt.Sprintf("NU%03d", i),
				Strategy:        "first_name_alias",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	require.NoError(t, q.Close())

	assert.Equal(t, publishers, sink.count())
	assert.Zero(t, q.Failures())

	ids := make(map[string]struct{})
	for _, r := range sink.records {
		ids[r.PlayerID] = struct{}{}
		assert.NotEmpty(t, r.ID)
	}
	assert.Len(t, ids, publishers)
}

func TestQueue_SinkFailureIsCounted(t *testing.T) {
	sink := &fakeSink{err: errors.New("store unavailable")}
	q, err := NewQueue(context.Background(), sink, discardLogger())
	require.NoError(t, err)

	require.NoError(t, q.RecordFuzzyMatch(context.Background(), rosterdomain.FuzzyMatch{PlayerID: "NU1"}))
	require.NoError(t, q.Close())

	assert.Equal(t, int64(1), q.Failures())
	assert.Zero(t, sink.count())
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	q, err := NewQueue(context.Background(), &fakeSink{}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, q.Close())
	assert.NoError(t, q.Close())
}
