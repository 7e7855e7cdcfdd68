package rosterservice

import (
	"context"
	"sort"
	"sync"
	"time"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"github.com/uptrace/bun"
)

var _ rosterdb.Repository = (*FakeRepository)(nil)

// FakeRepository keeps the roster in memory and applies the same diff rules
// as the real upsert.
type FakeRepository struct {
	mu      sync.Mutex
	Players map[string]rosterdomain.PlayerRecord
	History []rosterdomain.HistoryEntry
	Matches []rosterdomain.FuzzyMatch

	UpsertPlayerFunc            func(ctx context.Context, db bun.IDB, record rosterdomain.PlayerRecord) (rosterdomain.ChangeType, error)
	CleanupDuplicateHistoryFunc func(ctx context.Context, db bun.IDB) (int, error)
	HistoryStatisticsFunc       func(ctx context.Context, db bun.IDB, since time.Time) (*rosterdb.HistoryStats, error)
	ClearHistoryBeforeFunc      func(ctx context.Context, db bun.IDB, cutoff time.Time) (int, error)
	StatsFunc                   func(ctx context.Context, db bun.IDB, oldestEligible *int) (*rosterdb.Stats, error)
	HistoryBetweenFunc          func(ctx context.Context, db bun.IDB, from, to time.Time) ([]rosterdomain.HistoryEntry, error)
	ChangesByTypeFunc           func(ctx context.Context, db bun.IDB, changeType rosterdomain.ChangeType, limit int) ([]rosterdomain.HistoryEntry, error)
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{Players: make(map[string]rosterdomain.PlayerRecord)}
}

func (f *FakeRepository) GetPlayer(_ context.Context, _ bun.IDB, id string) (*rosterdomain.PlayerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Players[id]
	if !ok {
		return nil, rosterdb.ErrNotFound
	}
	return &p, nil
}

func (f *FakeRepository) ListPlayers(_ context.Context, _ bun.IDB) ([]rosterdomain.PlayerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]rosterdomain.PlayerRecord, 0, len(f.Players))
	for _, p := range f.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeRepository) FindByNameAndClub(context.Context, bun.IDB, string, string, string) ([]rosterdomain.PlayerRecord, error) {
	return nil, nil
}

func (f *FakeRepository) FindByNameAndClubNumber(context.Context, bun.IDB, string, string, string) ([]rosterdomain.PlayerRecord, error) {
	return nil, nil
}

func (f *FakeRepository) FindByName(context.Context, bun.IDB, string, string) ([]rosterdomain.PlayerRecord, error) {
	return nil, nil
}

func (f *FakeRepository) ClubExists(context.Context, bun.IDB, string) (bool, error) {
	return false, nil
}

func (f *FakeRepository) UpsertPlayer(ctx context.Context, db bun.IDB, record rosterdomain.PlayerRecord) (rosterdomain.ChangeType, error) {
	if f.UpsertPlayerFunc != nil {
		return f.UpsertPlayerFunc(ctx, db, record)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.Players[record.ID]
	switch {
	case !ok:
		f.Players[record.ID] = record
		f.History = append(f.History, rosterdomain.HistoryEntry{
			ID:         int64(len(f.History) + 1),
			Player:     record,
			ChangeType: rosterdomain.ChangeInsert,
			ChangedAt:  time.Now(),
		})
		return rosterdomain.ChangeInsert, nil
	case len(current.Changes(record)) == 0:
		return rosterdomain.ChangeNone, nil
	default:
		f.Players[record.ID] = record
		f.History = append(f.History, rosterdomain.HistoryEntry{
			ID:               int64(len(f.History) + 1),
			Player:           record,
			ChangeType:       rosterdomain.ChangeUpdate,
			ChangedAt:        time.Now(),
			PreviousClub:     current.Club,
			PreviousDistrict: current.District,
		})
		return rosterdomain.ChangeUpdate, nil
	}
}

func (f *FakeRepository) FindLatestHistory(context.Context, bun.IDB, string, string, string) (*rosterdomain.HistoryEntry, error) {
	return nil, nil
}

func (f *FakeRepository) filterHistory(keep func(rosterdomain.HistoryEntry) bool, limit int) []rosterdomain.HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rosterdomain.HistoryEntry
	for i := len(f.History) - 1; i >= 0; i-- {
		if keep(f.History[i]) {
			out = append(out, f.History[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (f *FakeRepository) GetPlayerHistory(_ context.Context, _ bun.IDB, id string) ([]rosterdomain.HistoryEntry, error) {
	return f.filterHistory(func(h rosterdomain.HistoryEntry) bool { return h.Player.ID == id }, 0), nil
}

func (f *FakeRepository) RecentChanges(_ context.Context, _ bun.IDB, limit int) ([]rosterdomain.HistoryEntry, error) {
	return f.filterHistory(func(rosterdomain.HistoryEntry) bool { return true }, limit), nil
}

func (f *FakeRepository) ChangesByType(ctx context.Context, db bun.IDB, changeType rosterdomain.ChangeType, limit int) ([]rosterdomain.HistoryEntry, error) {
	if f.ChangesByTypeFunc != nil {
		return f.ChangesByTypeFunc(ctx, db, changeType, limit)
	}
	return f.filterHistory(func(h rosterdomain.HistoryEntry) bool { return h.ChangeType == changeType }, limit), nil
}

func (f *FakeRepository) ClubChanges(_ context.Context, _ bun.IDB, club string, limit int) ([]rosterdomain.HistoryEntry, error) {
	return f.filterHistory(func(h rosterdomain.HistoryEntry) bool {
		return h.Player.Club == club || h.PreviousClub == club
	}, limit), nil
}

func (f *FakeRepository) DistrictChanges(_ context.Context, _ bun.IDB, district string, limit int) ([]rosterdomain.HistoryEntry, error) {
	return f.filterHistory(func(h rosterdomain.HistoryEntry) bool { return h.Player.District == district }, limit), nil
}

func (f *FakeRepository) HistoryBetween(ctx context.Context, db bun.IDB, from, to time.Time) ([]rosterdomain.HistoryEntry, error) {
	if f.HistoryBetweenFunc != nil {
		return f.HistoryBetweenFunc(ctx, db, from, to)
	}
	return f.filterHistory(func(rosterdomain.HistoryEntry) bool { return true }, 0), nil
}

func (f *FakeRepository) HistoryStatistics(ctx context.Context, db bun.IDB, since time.Time) (*rosterdb.HistoryStats, error) {
	if f.HistoryStatisticsFunc != nil {
		return f.HistoryStatisticsFunc(ctx, db, since)
	}
	return &rosterdb.HistoryStats{ChangesByType: map[string]int{}}, nil
}

func (f *FakeRepository) CleanupDuplicateHistory(ctx context.Context, db bun.IDB) (int, error) {
	if f.CleanupDuplicateHistoryFunc != nil {
		return f.CleanupDuplicateHistoryFunc(ctx, db)
	}
	return 0, nil
}

func (f *FakeRepository) ClearHistoryBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int, error) {
	if f.ClearHistoryBeforeFunc != nil {
		return f.ClearHistoryBeforeFunc(ctx, db, cutoff)
	}
	return 0, nil
}

func (f *FakeRepository) InsertFuzzyMatch(_ context.Context, _ bun.IDB, match rosterdomain.FuzzyMatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Matches = append(f.Matches, match)
	return nil
}

func (f *FakeRepository) ListFuzzyMatches(_ context.Context, _ bun.IDB, limit int) ([]rosterdomain.FuzzyMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > 0 && limit < len(f.Matches) {
		return append([]rosterdomain.FuzzyMatch(nil), f.Matches[:limit]...), nil
	}
	return append([]rosterdomain.FuzzyMatch(nil), f.Matches...), nil
}

func (f *FakeRepository) Stats(ctx context.Context, db bun.IDB, oldestEligible *int) (*rosterdb.Stats, error) {
	if f.StatsFunc != nil {
		return f.StatsFunc(ctx, db, oldestEligible)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &rosterdb.Stats{CurrentPlayers: len(f.Players), HistoryRecords: len(f.History)}, nil
}

// FakeImportMetrics counts import outcomes.
type FakeImportMetrics struct {
	mu      sync.Mutex
	Rows    map[string]int
	Skipped map[string]int
	Ratings int
}

func NewFakeImportMetrics() *FakeImportMetrics {
	return &FakeImportMetrics{Rows: map[string]int{}, Skipped: map[string]int{}}
}

func (m *FakeImportMetrics) RecordRowImported(_ context.Context, change string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rows[change]++
}

func (m *FakeImportMetrics) RecordRowSkipped(_ context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skipped[reason]++
}

func (m *FakeImportMetrics) RecordRatingUpdated(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ratings++
}
