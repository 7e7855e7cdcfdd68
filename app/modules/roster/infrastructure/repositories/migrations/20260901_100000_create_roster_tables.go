package rostermigrations

import (
	"context"
	"fmt"

	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating current_players, player_history and fuzzy_matches tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*rosterdb.Player)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			if _, err := tx.NewCreateTable().Model((*rosterdb.PlayerHistory)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			if _, err := tx.NewCreateTable().Model((*rosterdb.FuzzyMatch)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_current_players_name ON current_players (lower(trim(first_name)), lower(trim(last_name)))",
				"CREATE INDEX IF NOT EXISTS idx_current_players_club ON current_players (lower(trim(club)))",
				"CREATE INDEX IF NOT EXISTS idx_player_history_internal_id ON player_history (internal_id)",
				"CREATE INDEX IF NOT EXISTS idx_player_history_name_club ON player_history (lower(trim(first_name)), lower(trim(last_name)), lower(trim(club)))",
				"CREATE INDEX IF NOT EXISTS idx_player_history_changed_at ON player_history (changed_at DESC)",
				// Re-imports of an unchanged transition must not add a second snapshot.
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_player_history_unique ON player_history (
					internal_id, first_name, last_name, club, gender, district,
					birth_year, age_class, region, COALESCE(qttr, -1), COALESCE(club_number, ''),
					federation, change_type, COALESCE(previous_club, ''), COALESCE(previous_district, ''))`,
			}
			for _, stmt := range indexes {
				if _, err := tx.NewRaw(stmt).Exec(ctx); err != nil {
					return err
				}
			}

			fmt.Println("Roster tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping roster tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, model := range []any{(*rosterdb.FuzzyMatch)(nil), (*rosterdb.PlayerHistory)(nil), (*rosterdb.Player)(nil)} {
				if _, err := tx.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			fmt.Println("Roster tables dropped successfully!")
			return nil
		})
	})
}
