package rosterservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"github.com/uptrace/bun"
)

const (
	defaultHistoryLimit = 20
	recentActivityDays  = 30
)

func historyLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}

// GetPlayer returns rosterdb.ErrNotFound (wrapped) for an unknown ID.
func (s *RosterService) GetPlayer(ctx context.Context, id string) (*rosterdomain.PlayerRecord, error) {
	return withTelemetry(s, ctx, "GetPlayer", id, func(ctx context.Context) (*rosterdomain.PlayerRecord, error) {
		return s.repo.GetPlayer(ctx, nil, id)
	})
}

// ListPlayers returns the current roster ordered by region and name.
func (s *RosterService) ListPlayers(ctx context.Context) ([]rosterdomain.PlayerRecord, error) {
	return withTelemetry(s, ctx, "ListPlayers", "all", func(ctx context.Context) ([]rosterdomain.PlayerRecord, error) {
		return s.repo.ListPlayers(ctx, nil)
	})
}

// PlayerHistory returns every snapshot of one player, newest first.
func (s *RosterService) PlayerHistory(ctx context.Context, id string) ([]rosterdomain.HistoryEntry, error) {
	return withTelemetry(s, ctx, "PlayerHistory", id, func(ctx context.Context) ([]rosterdomain.HistoryEntry, error) {
		return s.repo.GetPlayerHistory(ctx, nil, id)
	})
}

func (s *RosterService) RecentChanges(ctx context.Context, limit int) ([]rosterdomain.HistoryEntry, error) {
	limit = historyLimit(limit)
	return withTelemetry(s, ctx, "RecentChanges", fmt.Sprint(limit), func(ctx context.Context) ([]rosterdomain.HistoryEntry, error) {
		return s.repo.RecentChanges(ctx, nil, limit)
	})
}

func (s *RosterService) ChangesByType(ctx context.Context, changeType rosterdomain.ChangeType, limit int) ([]rosterdomain.HistoryEntry, error) {
	limit = historyLimit(limit)
	return withTelemetry(s, ctx, "ChangesByType", string(changeType), func(ctx context.Context) ([]rosterdomain.HistoryEntry, error) {
		switch changeType {
		case rosterdomain.ChangeInsert, rosterdomain.ChangeUpdate:
		default:
			return nil, fmt.Errorf("unknown change type %q", changeType)
		}
		return s.repo.ChangesByType(ctx, nil, changeType, limit)
	})
}

// ClubChanges lists snapshots where the club or the previous club matches.
func (s *RosterService) ClubChanges(ctx context.Context, club string, limit int) ([]rosterdomain.HistoryEntry, error) {
	limit = historyLimit(limit)
	return withTelemetry(s, ctx, "ClubChanges", club, func(ctx context.Context) ([]rosterdomain.HistoryEntry, error) {
		return s.repo.ClubChanges(ctx, nil, club, limit)
	})
}

func (s *RosterService) DistrictChanges(ctx context.Context, district string, limit int) ([]rosterdomain.HistoryEntry, error) {
	limit = historyLimit(limit)
	return withTelemetry(s, ctx, "DistrictChanges", district, func(ctx context.Context) ([]rosterdomain.HistoryEntry, error) {
		return s.repo.DistrictChanges(ctx, nil, district, limit)
	})
}

// HistoryStatistics counts recent activity over the last 30 days.
func (s *RosterService) HistoryStatistics(ctx context.Context) (*rosterdb.HistoryStats, error) {
	since := s.now().AddDate(0, 0, -recentActivityDays)
	return withTelemetry(s, ctx, "HistoryStatistics", since.Format(time.DateOnly), func(ctx context.Context) (*rosterdb.HistoryStats, error) {
		return s.repo.HistoryStatistics(ctx, nil, since)
	})
}

// ExportHistory returns the snapshots between from and to; zero times are open bounds.
func (s *RosterService) ExportHistory(ctx context.Context, from, to time.Time) ([]rosterdomain.HistoryEntry, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("ExportHistory: end %s before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return withTelemetry(s, ctx, "ExportHistory", from.Format(time.DateOnly)+".."+to.Format(time.DateOnly), func(ctx context.Context) ([]rosterdomain.HistoryEntry, error) {
		return s.repo.HistoryBetween(ctx, nil, from, to)
	})
}

// ClearHistoryOlderThan deletes snapshots older than days and returns how many were removed.
func (s *RosterService) ClearHistoryOlderThan(ctx context.Context, days int) (int, error) {
	if days < 1 {
		return 0, fmt.Errorf("ClearHistoryOlderThan: days must be positive, got %d", days)
	}
	cutoff := s.now().AddDate(0, 0, -days)
	return withTelemetry(s, ctx, "ClearHistoryOlderThan", fmt.Sprint(days), func(ctx context.Context) (int, error) {
		removed, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (int, error) {
			return s.repo.ClearHistoryBefore(ctx, db, cutoff)
		})
		if err != nil {
			return 0, err
		}
		s.logger.InfoContext(ctx, "Cleared old history",
			slog.Int("days", days),
			slog.Int("removed", removed),
		)
		return removed, nil
	})
}

// CleanupDuplicateHistory removes identical snapshots left by older imports.
func (s *RosterService) CleanupDuplicateHistory(ctx context.Context) (int, error) {
	return withTelemetry(s, ctx, "CleanupDuplicateHistory", "all", func(ctx context.Context) (int, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (int, error) {
			return s.repo.CleanupDuplicateHistory(ctx, db)
		})
	})
}

// Stats reports table sizes and the eligible/too-old split for this season.
func (s *RosterService) Stats(ctx context.Context) (*rosterdb.Stats, error) {
	var oldest *int
	if year, ok := s.ages.OldestEligibleBirthYear(); ok {
		oldest = &year
	}
	return withTelemetry(s, ctx, "Stats", "all", func(ctx context.Context) (*rosterdb.Stats, error) {
		return s.repo.Stats(ctx, nil, oldest)
	})
}

func (s *RosterService) FuzzyMatches(ctx context.Context, limit int) ([]rosterdomain.FuzzyMatch, error) {
	return withTelemetry(s, ctx, "FuzzyMatches", fmt.Sprint(limit), func(ctx context.Context) ([]rosterdomain.FuzzyMatch, error) {
		return s.repo.ListFuzzyMatches(ctx, nil, limit)
	})
}
