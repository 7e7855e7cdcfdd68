package rosterdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/uptrace/bun"
)

// historyIdentityColumns is the content key of a snapshot; it mirrors
// idx_player_history_unique.
const historyIdentityColumns = `internal_id, first_name, last_name, club, gender, district,
	birth_year, age_class, region, COALESCE(qttr, -1), COALESCE(club_number, ''),
	federation, change_type, COALESCE(previous_club, ''), COALESCE(previous_district, '')`

// FindLatestHistory returns the most recent snapshot with the given name and club.
func (r *Impl) FindLatestHistory(ctx context.Context, db bun.IDB, first, last, club string) (*rosterdomain.HistoryEntry, error) {
	db = r.resolveDB(db)
	row := new(PlayerHistory)
	err := db.NewSelect().
		Model(row).
		Where(equalsFold("first_name"), first).
		Where(equalsFold("last_name"), last).
		Where(equalsFold("club"), club).
		OrderExpr("changed_at DESC, id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("rosterdb.FindLatestHistory: %w", err)
	}
	entry := row.toDomain()
	return &entry, nil
}

// GetPlayerHistory returns all snapshots of a player, newest first.
func (r *Impl) GetPlayerHistory(ctx context.Context, db bun.IDB, id string) ([]rosterdomain.HistoryEntry, error) {
	db = r.resolveDB(db)
	var rows []PlayerHistory
	err := db.NewSelect().
		Model(&rows).
		Where("internal_id = ?", id).
		OrderExpr("changed_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.GetPlayerHistory: %w", err)
	}
	return historyToDomain(rows), nil
}

// RecentChanges returns the newest snapshots across all players.
func (r *Impl) RecentChanges(ctx context.Context, db bun.IDB, limit int) ([]rosterdomain.HistoryEntry, error) {
	db = r.resolveDB(db)
	var rows []PlayerHistory
	err := db.NewSelect().
		Model(&rows).
		OrderExpr("changed_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.RecentChanges: %w", err)
	}
	return historyToDomain(rows), nil
}

// ChangesByType returns the newest snapshots of one change type.
func (r *Impl) ChangesByType(ctx context.Context, db bun.IDB, changeType rosterdomain.ChangeType, limit int) ([]rosterdomain.HistoryEntry, error) {
	db = r.resolveDB(db)
	var rows []PlayerHistory
	err := db.NewSelect().
		Model(&rows).
		Where("change_type = ?", string(changeType)).
		OrderExpr("changed_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.ChangesByType: %w", err)
	}
	return historyToDomain(rows), nil
}

// ClubChanges returns snapshots where the player joined or left club.
func (r *Impl) ClubChanges(ctx context.Context, db bun.IDB, club string, limit int) ([]rosterdomain.HistoryEntry, error) {
	db = r.resolveDB(db)
	var rows []PlayerHistory
	err := db.NewSelect().
		Model(&rows).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(equalsFold("club"), club).
				WhereOr(equalsFold("previous_club"), club)
		}).
		OrderExpr("changed_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.ClubChanges: %w", err)
	}
	return historyToDomain(rows), nil
}

// DistrictChanges returns snapshots where the player entered or left district.
func (r *Impl) DistrictChanges(ctx context.Context, db bun.IDB, district string, limit int) ([]rosterdomain.HistoryEntry, error) {
	db = r.resolveDB(db)
	var rows []PlayerHistory
	err := db.NewSelect().
		Model(&rows).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(equalsFold("district"), district).
				WhereOr(equalsFold("previous_district"), district)
		}).
		OrderExpr("changed_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.DistrictChanges: %w", err)
	}
	return historyToDomain(rows), nil
}

// HistoryBetween returns snapshots in [from, to], newest first.
func (r *Impl) HistoryBetween(ctx context.Context, db bun.IDB, from, to time.Time) ([]rosterdomain.HistoryEntry, error) {
	db = r.resolveDB(db)
	var rows []PlayerHistory
	q := db.NewSelect().Model(&rows)
	if !from.IsZero() {
		q = q.Where("changed_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("changed_at <= ?", to)
	}
	if err := q.OrderExpr("changed_at DESC, id DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("rosterdb.HistoryBetween: %w", err)
	}
	return historyToDomain(rows), nil
}

// HistoryStatistics aggregates the history log. since bounds the recent activity count.
func (r *Impl) HistoryStatistics(ctx context.Context, db bun.IDB, since time.Time) (*HistoryStats, error) {
	db = r.resolveDB(db)
	stats := &HistoryStats{ChangesByType: make(map[string]int)}

	total, err := db.NewSelect().Model((*PlayerHistory)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.HistoryStatistics: total: %w", err)
	}
	stats.TotalRecords = total

	var byType []NameCount
	err = db.NewSelect().
		Model((*PlayerHistory)(nil)).
		ColumnExpr("change_type AS name").
		ColumnExpr("count(*) AS count").
		Group("change_type").
		Scan(ctx, &byType)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.HistoryStatistics: by type: %w", err)
	}
	for _, row := range byType {
		stats.ChangesByType[row.Name] = row.Count
	}

	recent, err := db.NewSelect().
		Model((*PlayerHistory)(nil)).
		Where("changed_at > ?", since).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.HistoryStatistics: recent: %w", err)
	}
	stats.RecentActivity = recent

	if stats.MostActiveClubs, err = r.mostActive(ctx, db, "club"); err != nil {
		return nil, fmt.Errorf("rosterdb.HistoryStatistics: clubs: %w", err)
	}
	if stats.MostActiveDistricts, err = r.mostActive(ctx, db, "district"); err != nil {
		return nil, fmt.Errorf("rosterdb.HistoryStatistics: districts: %w", err)
	}
	return stats, nil
}

func (r *Impl) mostActive(ctx context.Context, db bun.IDB, column string) ([]NameCount, error) {
	var rows []NameCount
	err := db.NewSelect().
		Model((*PlayerHistory)(nil)).
		ColumnExpr("? AS name", bun.Ident(column)).
		ColumnExpr("count(*) AS count").
		GroupExpr("?", bun.Ident(column)).
		OrderExpr("count DESC, name ASC").
		Limit(10).
		Scan(ctx, &rows)
	return rows, err
}

// CleanupDuplicateHistory keeps the oldest of each set of identical snapshots.
func (r *Impl) CleanupDuplicateHistory(ctx context.Context, db bun.IDB) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewRaw(
		"DELETE FROM player_history WHERE id NOT IN (SELECT MIN(id) FROM player_history GROUP BY " + historyIdentityColumns + ")",
	).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("rosterdb.CleanupDuplicateHistory: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rosterdb.CleanupDuplicateHistory: %w", err)
	}
	return int(removed), nil
}

// ClearHistoryBefore deletes snapshots older than cutoff.
func (r *Impl) ClearHistoryBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*PlayerHistory)(nil)).
		Where("changed_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("rosterdb.ClearHistoryBefore: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rosterdb.ClearHistoryBefore: %w", err)
	}
	return int(removed), nil
}
