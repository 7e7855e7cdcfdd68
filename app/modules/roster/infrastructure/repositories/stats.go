package rosterdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Stats counts rows in the roster tables.
func (r *Impl) Stats(ctx context.Context, db bun.IDB, oldestEligible *int) (*Stats, error) {
	db = r.resolveDB(db)
	stats := &Stats{OldestEligibleBirthYear: oldestEligible}

	var err error
	if stats.CurrentPlayers, err = db.NewSelect().Model((*Player)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("rosterdb.Stats: players: %w", err)
	}
	if stats.HistoryRecords, err = db.NewSelect().Model((*PlayerHistory)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("rosterdb.Stats: history: %w", err)
	}
	if stats.FuzzyMatches, err = db.NewSelect().Model((*FuzzyMatch)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("rosterdb.Stats: fuzzy matches: %w", err)
	}

	if oldestEligible == nil {
		stats.Eligible = stats.CurrentPlayers
		return stats, nil
	}
	stats.Eligible, err = db.NewSelect().
		Model((*Player)(nil)).
		Where("birth_year >= ?", *oldestEligible).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.Stats: eligible: %w", err)
	}
	stats.TooOld = stats.CurrentPlayers - stats.Eligible
	return stats, nil
}
