package rosterdb

import (
	"context"
	"fmt"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/uptrace/bun"
)

// InsertFuzzyMatch appends a review record.
func (r *Impl) InsertFuzzyMatch(ctx context.Context, db bun.IDB, match rosterdomain.FuzzyMatch) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(fuzzyMatchFromDomain(match)).Exec(ctx); err != nil {
		return fmt.Errorf("rosterdb.InsertFuzzyMatch: %w", err)
	}
	return nil
}

// ListFuzzyMatches returns review records, newest first. limit <= 0 returns all.
func (r *Impl) ListFuzzyMatches(ctx context.Context, db bun.IDB, limit int) ([]rosterdomain.FuzzyMatch, error) {
	db = r.resolveDB(db)
	var rows []FuzzyMatch
	q := db.NewSelect().
		Model(&rows).
		OrderExpr("match_timestamp DESC, tournament_name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rosterdb.ListFuzzyMatches: %w", err)
	}
	out := make([]rosterdomain.FuzzyMatch, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
