package rosterhandlers

import (
	"context"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
)

type FakeQueries struct {
	GetPlayerFunc     func(ctx context.Context, id string) (*rosterdomain.PlayerRecord, error)
	PlayerHistoryFunc func(ctx context.Context, id string) ([]rosterdomain.HistoryEntry, error)
	FuzzyMatchesFunc  func(ctx context.Context, limit int) ([]rosterdomain.FuzzyMatch, error)
	StatsFunc         func(ctx context.Context) (*rosterdb.Stats, error)
}

func (f *FakeQueries) GetPlayer(ctx context.Context, id string) (*rosterdomain.PlayerRecord, error) {
	if f.GetPlayerFunc != nil {
		return f.GetPlayerFunc(ctx, id)
	}
	return nil, rosterdb.ErrNotFound
}

func (f *FakeQueries) PlayerHistory(ctx context.Context, id string) ([]rosterdomain.HistoryEntry, error) {
	if f.PlayerHistoryFunc != nil {
		return f.PlayerHistoryFunc(ctx, id)
	}
	return nil, nil
}

func (f *FakeQueries) FuzzyMatches(ctx context.Context, limit int) ([]rosterdomain.FuzzyMatch, error) {
	if f.FuzzyMatchesFunc != nil {
		return f.FuzzyMatchesFunc(ctx, limit)
	}
	return nil, nil
}

func (f *FakeQueries) Stats(ctx context.Context) (*rosterdb.Stats, error) {
	if f.StatsFunc != nil {
		return f.StatsFunc(ctx)
	}
	return &rosterdb.Stats{}, nil
}

type FakeResolver struct {
	ResolveFunc func(ctx context.Context, q identityservice.Query) (identityservice.Outcome, error)
}

func (f *FakeResolver) Resolve(ctx context.Context, q identityservice.Query) (identityservice.Outcome, error) {
	if f.ResolveFunc != nil {
		return f.ResolveFunc(ctx, q)
	}
	return identityservice.Outcome{Classification: identityservice.ClassUnmatchedInScope}, nil
}
