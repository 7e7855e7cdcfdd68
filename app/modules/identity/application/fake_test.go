package identityservice

import (
	"context"
	"strings"
	"sync"
	"time"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
)

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FakeRoster is an in-memory roster. Set a *Func field to override one call.
type FakeRoster struct {
	Players []rosterdomain.PlayerRecord
	History []rosterdomain.HistoryEntry

	FindByNameAndClubFunc func(ctx context.Context, first, last, club string) ([]rosterdomain.PlayerRecord, error)
	FindByNameFunc        func(ctx context.Context, first, last string) ([]rosterdomain.PlayerRecord, error)
	GetPlayerFunc         func(ctx context.Context, id string) (*rosterdomain.PlayerRecord, error)
	ClubExistsFunc        func(ctx context.Context, club string) (bool, error)
	FindLatestHistoryFunc func(ctx context.Context, first, last, club string) (*rosterdomain.HistoryEntry, error)

	mu    sync.Mutex
	calls []string
}

func (f *FakeRoster) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *FakeRoster) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeRoster) filter(match func(p rosterdomain.PlayerRecord) bool) []rosterdomain.PlayerRecord {
	var out []rosterdomain.PlayerRecord
	for _, p := range f.Players {
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *FakeRoster) FindByNameAndClub(ctx context.Context, first, last, club string) ([]rosterdomain.PlayerRecord, error) {
	f.record("FindByNameAndClub")
	if f.FindByNameAndClubFunc != nil {
		return f.FindByNameAndClubFunc(ctx, first, last, club)
	}
	return f.filter(func(p rosterdomain.PlayerRecord) bool {
		return fold(p.FirstName) == fold(first) && fold(p.LastName) == fold(last) && fold(p.Club) == fold(club)
	}), nil
}

func (f *FakeRoster) FindByNameAndClubNumber(_ context.Context, first, last, clubNumber string) ([]rosterdomain.PlayerRecord, error) {
	f.record("FindByNameAndClubNumber")
	return f.filter(func(p rosterdomain.PlayerRecord) bool {
		return fold(p.FirstName) == fold(first) && fold(p.LastName) == fold(last) && fold(p.ClubNumber) == fold(clubNumber)
	}), nil
}

func (f *FakeRoster) FindByName(ctx context.Context, first, last string) ([]rosterdomain.PlayerRecord, error) {
	f.record("FindByName")
	if f.FindByNameFunc != nil {
		return f.FindByNameFunc(ctx, first, last)
	}
	return f.filter(func(p rosterdomain.PlayerRecord) bool {
		return fold(p.FirstName) == fold(first) && fold(p.LastName) == fold(last)
	}), nil
}

func (f *FakeRoster) GetPlayer(ctx context.Context, id string) (*rosterdomain.PlayerRecord, error) {
	f.record("GetPlayer")
	if f.GetPlayerFunc != nil {
		return f.GetPlayerFunc(ctx, id)
	}
	for _, p := range f.Players {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (f *FakeRoster) ClubExists(ctx context.Context, club string) (bool, error) {
	f.record("ClubExists")
	if f.ClubExistsFunc != nil {
		return f.ClubExistsFunc(ctx, club)
	}
	return len(f.filter(func(p rosterdomain.PlayerRecord) bool { return fold(p.Club) == fold(club) })) > 0, nil
}

func (f *FakeRoster) FindLatestHistory(ctx context.Context, first, last, club string) (*rosterdomain.HistoryEntry, error) {
	f.record("FindLatestHistory")
	if f.FindLatestHistoryFunc != nil {
		return f.FindLatestHistoryFunc(ctx, first, last, club)
	}
	var latest *rosterdomain.HistoryEntry
	for i := range f.History {
		h := f.History[i]
		if fold(h.Player.FirstName) != fold(first) || fold(h.Player.LastName) != fold(last) || fold(h.Player.Club) != fold(club) {
			continue
		}
		if latest == nil || h.ChangedAt.After(latest.ChangedAt) {
			latest = &h
		}
	}
	return latest, nil
}

// FakeAuditLog collects fuzzy matches.
type FakeAuditLog struct {
	Err error

	mu      sync.Mutex
	Records []rosterdomain.FuzzyMatch
}

func (f *FakeAuditLog) RecordFuzzyMatch(_ context.Context, match rosterdomain.FuzzyMatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Records = append(f.Records, match)
	return nil
}

func (f *FakeAuditLog) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Records)
}

// FakeMetrics counts calls.
type FakeMetrics struct {
	mu            sync.Mutex
	Resolutions   map[string]int
	Unmatched     map[string]int
	AuditFailures int
}

func NewFakeMetrics() *FakeMetrics {
	return &FakeMetrics{Resolutions: map[string]int{}, Unmatched: map[string]int{}}
}

func (m *FakeMetrics) RecordResolution(_ context.Context, strategy string, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resolutions[strategy]++
}

func (m *FakeMetrics) RecordUnmatched(_ context.Context, classification string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Unmatched[classification]++
}

func (m *FakeMetrics) RecordAuditFailure(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuditFailures++
}

func (m *FakeMetrics) RecordDuration(context.Context, time.Duration) {}
