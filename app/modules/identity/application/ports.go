package identityservice

import (
	"context"
	"time"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
)

// RosterReader is the read side of the current roster. Name and club
// comparisons are case-insensitive and trimmed.
type RosterReader interface {
	FindByNameAndClub(ctx context.Context, first, last, club string) ([]rosterdomain.PlayerRecord, error)
	FindByNameAndClubNumber(ctx context.Context, first, last, clubNumber string) ([]rosterdomain.PlayerRecord, error)
	FindByName(ctx context.Context, first, last string) ([]rosterdomain.PlayerRecord, error)
	// GetPlayer returns nil, nil for an unknown ID.
	GetPlayer(ctx context.Context, id string) (*rosterdomain.PlayerRecord, error)
	ClubExists(ctx context.Context, club string) (bool, error)
}

// HistoryReader exposes the change log for club drift lookups.
type HistoryReader interface {
	// FindLatestHistory returns nil, nil when no snapshot matches.
	FindLatestHistory(ctx context.Context, first, last, club string) (*rosterdomain.HistoryEntry, error)
}

// AuditLog receives every non-exact resolution. Implementations must be safe
// for concurrent use.
type AuditLog interface {
	RecordFuzzyMatch(ctx context.Context, match rosterdomain.FuzzyMatch) error
}

// Metrics records resolver outcomes.
type Metrics interface {
	RecordResolution(ctx context.Context, strategy string, fuzzy bool)
	RecordUnmatched(ctx context.Context, classification string)
	RecordAuditFailure(ctx context.Context)
	RecordDuration(ctx context.Context, d time.Duration)
}
