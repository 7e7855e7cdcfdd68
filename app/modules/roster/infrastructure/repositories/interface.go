package rosterdb

import (
	"context"
	"time"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for roster persistence.
// Name and club comparisons are case-insensitive and ignore surrounding whitespace.
//
// Error semantics:
//   - ErrNotFound: player does not exist
//   - Other errors: infrastructure failures (DB connection, query errors)
type Repository interface {
	// GetPlayer returns ErrNotFound for an unknown internal ID.
	GetPlayer(ctx context.Context, db bun.IDB, id string) (*rosterdomain.PlayerRecord, error)
	ListPlayers(ctx context.Context, db bun.IDB) ([]rosterdomain.PlayerRecord, error)

	FindByNameAndClub(ctx context.Context, db bun.IDB, first, last, club string) ([]rosterdomain.PlayerRecord, error)
	FindByNameAndClubNumber(ctx context.Context, db bun.IDB, first, last, clubNumber string) ([]rosterdomain.PlayerRecord, error)
	FindByName(ctx context.Context, db bun.IDB, first, last string) ([]rosterdomain.PlayerRecord, error)
	ClubExists(ctx context.Context, db bun.IDB, club string) (bool, error)

	// UpsertPlayer diffs record against the stored row and writes the row plus
	// one history entry when anything changed. Calls for the same ID are serialized.
	UpsertPlayer(ctx context.Context, db bun.IDB, record rosterdomain.PlayerRecord) (rosterdomain.ChangeType, error)

	// FindLatestHistory returns nil when no snapshot matches.
	FindLatestHistory(ctx context.Context, db bun.IDB, first, last, club string) (*rosterdomain.HistoryEntry, error)
	GetPlayerHistory(ctx context.Context, db bun.IDB, id string) ([]rosterdomain.HistoryEntry, error)
	RecentChanges(ctx context.Context, db bun.IDB, limit int) ([]rosterdomain.HistoryEntry, error)
	ChangesByType(ctx context.Context, db bun.IDB, changeType rosterdomain.ChangeType, limit int) ([]rosterdomain.HistoryEntry, error)
	// ClubChanges matches the club or the previous club.
	ClubChanges(ctx context.Context, db bun.IDB, club string, limit int) ([]rosterdomain.HistoryEntry, error)
	DistrictChanges(ctx context.Context, db bun.IDB, district string, limit int) ([]rosterdomain.HistoryEntry, error)
	// HistoryBetween treats zero times as open bounds.
	HistoryBetween(ctx context.Context, db bun.IDB, from, to time.Time) ([]rosterdomain.HistoryEntry, error)
	HistoryStatistics(ctx context.Context, db bun.IDB, since time.Time) (*HistoryStats, error)
	CleanupDuplicateHistory(ctx context.Context, db bun.IDB) (int, error)
	ClearHistoryBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int, error)

	InsertFuzzyMatch(ctx context.Context, db bun.IDB, match rosterdomain.FuzzyMatch) error
	ListFuzzyMatches(ctx context.Context, db bun.IDB, limit int) ([]rosterdomain.FuzzyMatch, error)

	// Stats counts eligible players relative to oldestEligible; nil skips that split.
	Stats(ctx context.Context, db bun.IDB, oldestEligible *int) (*Stats, error)
}

// HistoryStats summarizes the history log.
type HistoryStats struct {
	TotalRecords        int
	ChangesByType       map[string]int
	RecentActivity      int
	MostActiveClubs     []NameCount
	MostActiveDistricts []NameCount
}

// NameCount is one row of a grouped count.
type NameCount struct {
	Name  string `bun:"name"`
	Count int    `bun:"count"`
}

// Stats summarizes the roster tables.
type Stats struct {
	CurrentPlayers          int
	HistoryRecords          int
	FuzzyMatches            int
	OldestEligibleBirthYear *int
	Eligible                int
	TooOld                  int
}
