package adapters

import (
	"context"
	"errors"
	"fmt"
	"testing"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// fakeRepo overrides the methods the adapter forwards; anything else panics.
type fakeRepo struct {
	rosterdb.Repository
	players  map[string]rosterdomain.PlayerRecord
	inserted []rosterdomain.FuzzyMatch
	failWith error
}

func (f *fakeRepo) GetPlayer(ctx context.Context, db bun.IDB, id string) (*rosterdomain.PlayerRecord, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.players[id]
	if !ok {
		return nil, fmt.Errorf("rosterdb.GetPlayer: %w", rosterdb.ErrNotFound)
	}
	return &p, nil
}

func (f *fakeRepo) InsertFuzzyMatch(ctx context.Context, db bun.IDB, match rosterdomain.FuzzyMatch) error {
	f.inserted = append(f.inserted, match)
	return nil
}

func TestRosterLookupAdapter_GetPlayer(t *testing.T) {
	repo := &fakeRepo{players: map[string]rosterdomain.PlayerRecord{
		"NU1001": {ID: "NU1001", FirstName: "Paul", LastName: "Löwe"},
	}}
	adapter := NewRosterLookupAdapter(repo)
	ctx := context.Background()

	p, err := adapter.GetPlayer(ctx, "NU1001")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Paul", p.FirstName)

	p, err = adapter.GetPlayer(ctx, "NU9999")
	require.NoError(t, err, "unknown IDs are not an error for the resolver")
	assert.Nil(t, p)

	repo.failWith = errors.New("connection refused")
	_, err = adapter.GetPlayer(ctx, "NU1001")
	assert.ErrorContains(t, err, "connection refused")
}

func TestRosterLookupAdapter_RecordFuzzyMatch(t *testing.T) {
	repo := &fakeRepo{}
	adapter := NewRosterLookupAdapter(repo)

	require.NoError(t, adapter.RecordFuzzyMatch(context.Background(), rosterdomain.FuzzyMatch{PlayerID: "NU1001", Strategy: "history"}))
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "history", repo.inserted[0].Strategy)
}
