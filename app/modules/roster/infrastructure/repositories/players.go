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

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db    bun.IDB
	locks *keyedMutex
}

// NewRepository creates a new roster repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db, locks: newKeyedMutex()}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func equalsFold(column string) string {
	return "lower(trim(" + column + ")) = lower(trim(?))"
}

// GetPlayer retrieves a player by internal ID.
func (r *Impl) GetPlayer(ctx context.Context, db bun.IDB, id string) (*rosterdomain.PlayerRecord, error) {
	db = r.resolveDB(db)
	row := new(Player)
	err := db.NewSelect().
		Model(row).
		Where("internal_id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rosterdb.GetPlayer: %w", err)
	}
	player := row.toDomain()
	return &player, nil
}

// ListPlayers returns the whole roster ordered by region and name.
func (r *Impl) ListPlayers(ctx context.Context, db bun.IDB) ([]rosterdomain.PlayerRecord, error) {
	db = r.resolveDB(db)
	var rows []Player
	err := db.NewSelect().
		Model(&rows).
		OrderExpr("region ASC, last_name ASC, first_name ASC, internal_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.ListPlayers: %w", err)
	}
	return playersToDomain(rows), nil
}

// FindByNameAndClub matches first name, last name and club.
func (r *Impl) FindByNameAndClub(ctx context.Context, db bun.IDB, first, last, club string) ([]rosterdomain.PlayerRecord, error) {
	db = r.resolveDB(db)
	var rows []Player
	err := db.NewSelect().
		Model(&rows).
		Where(equalsFold("first_name"), first).
		Where(equalsFold("last_name"), last).
		Where(equalsFold("club"), club).
		OrderExpr("internal_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.FindByNameAndClub: %w", err)
	}
	return playersToDomain(rows), nil
}

// FindByNameAndClubNumber matches names and the exact club number.
func (r *Impl) FindByNameAndClubNumber(ctx context.Context, db bun.IDB, first, last, clubNumber string) ([]rosterdomain.PlayerRecord, error) {
	db = r.resolveDB(db)
	var rows []Player
	err := db.NewSelect().
		Model(&rows).
		Where(equalsFold("first_name"), first).
		Where(equalsFold("last_name"), last).
		Where("trim(club_number) = trim(?)", clubNumber).
		OrderExpr("internal_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.FindByNameAndClubNumber: %w", err)
	}
	return playersToDomain(rows), nil
}

// FindByName matches first and last name in any club.
func (r *Impl) FindByName(ctx context.Context, db bun.IDB, first, last string) ([]rosterdomain.PlayerRecord, error) {
	db = r.resolveDB(db)
	var rows []Player
	err := db.NewSelect().
		Model(&rows).
		Where(equalsFold("first_name"), first).
		Where(equalsFold("last_name"), last).
		OrderExpr("internal_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.FindByName: %w", err)
	}
	return playersToDomain(rows), nil
}

// ClubExists reports whether any current player belongs to club.
func (r *Impl) ClubExists(ctx context.Context, db bun.IDB, club string) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Player)(nil)).
		Where(equalsFold("club"), club).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("rosterdb.ClubExists: %w", err)
	}
	return exists, nil
}

// UpsertPlayer inserts or updates a player and records the change in player_history.
func (r *Impl) UpsertPlayer(ctx context.Context, db bun.IDB, record rosterdomain.PlayerRecord) (rosterdomain.ChangeType, error) {
	db = r.resolveDB(db)

	unlock := r.locks.lock(record.ID)
	defer unlock()

	change := rosterdomain.ChangeNone
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(Player)
		err := tx.NewSelect().
			Model(existing).
			Where("internal_id = ?", record.ID).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := tx.NewInsert().Model(playerFromDomain(record)).Exec(ctx); err != nil {
				return fmt.Errorf("insert player: %w", err)
			}
			if err := insertHistory(ctx, tx, historyFromDomain(record, rosterdomain.ChangeInsert, nil)); err != nil {
				return err
			}
			change = rosterdomain.ChangeInsert
			return nil
		}
		if err != nil {
			return fmt.Errorf("load player: %w", err)
		}

		previous := existing.toDomain()
		if len(previous.Changes(record)) == 0 {
			return nil
		}

		row := playerFromDomain(record)
		row.UpdatedAt = time.Now().UTC()
		_, err = tx.NewUpdate().
			Model(row).
			ExcludeColumn("created_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update player: %w", err)
		}
		if err := insertHistory(ctx, tx, historyFromDomain(record, rosterdomain.ChangeUpdate, &previous)); err != nil {
			return err
		}
		change = rosterdomain.ChangeUpdate
		return nil
	})
	if err != nil {
		return rosterdomain.ChangeNone, fmt.Errorf("rosterdb.UpsertPlayer: %w", err)
	}
	return change, nil
}

// insertHistory relies on idx_player_history_unique to drop repeated snapshots.
func insertHistory(ctx context.Context, db bun.IDB, h *PlayerHistory) error {
	_, err := db.NewInsert().
		Model(h).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}
