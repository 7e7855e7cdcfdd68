package adapters

import (
	"context"
	"errors"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
)

var (
	_ identityservice.RosterReader  = (*RosterLookupAdapter)(nil)
	_ identityservice.HistoryReader = (*RosterLookupAdapter)(nil)
	_ identityservice.AuditLog      = (*RosterLookupAdapter)(nil)
)

// RosterLookupAdapter adapts the roster repository to the resolver ports.
type RosterLookupAdapter struct {
	repo rosterdb.Repository
}

// NewRosterLookupAdapter constructs a new adapter.
func NewRosterLookupAdapter(repo rosterdb.Repository) *RosterLookupAdapter {
	return &RosterLookupAdapter{repo: repo}
}

func (a *RosterLookupAdapter) FindByNameAndClub(ctx context.Context, first, last, club string) ([]rosterdomain.PlayerRecord, error) {
	return a.repo.FindByNameAndClub(ctx, nil, first, last, club)
}

func (a *RosterLookupAdapter) FindByNameAndClubNumber(ctx context.Context, first, last, clubNumber string) ([]rosterdomain.PlayerRecord, error) {
	return a.repo.FindByNameAndClubNumber(ctx, nil, first, last, clubNumber)
}

func (a *RosterLookupAdapter) FindByName(ctx context.Context, first, last string) ([]rosterdomain.PlayerRecord, error) {
	return a.repo.FindByName(ctx, nil, first, last)
}

func (a *RosterLookupAdapter) GetPlayer(ctx context.Context, id string) (*rosterdomain.PlayerRecord, error) {
	player, err := a.repo.GetPlayer(ctx, nil, id)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return player, nil
}

func (a *RosterLookupAdapter) ClubExists(ctx context.Context, club string) (bool, error) {
	return a.repo.ClubExists(ctx, nil, club)
}

func (a *RosterLookupAdapter) FindLatestHistory(ctx context.Context, first, last, club string) (*rosterdomain.HistoryEntry, error) {
	return a.repo.FindLatestHistory(ctx, nil, first, last, club)
}

// RecordFuzzyMatch writes the audit record synchronously.
func (a *RosterLookupAdapter) RecordFuzzyMatch(ctx context.Context, match rosterdomain.FuzzyMatch) error {
	return a.repo.InsertFuzzyMatch(ctx, nil, match)
}
