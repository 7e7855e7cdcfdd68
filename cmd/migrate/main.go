package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	rostermigrations "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/ttbw-roster/config"
	"github.com/Black-And-White-Club/ttbw-roster/db/bundb"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	var db *bun.DB
	migrators := map[string]*migrate.Migrator{}

	cliApp := &cli.App{
		Name:  "migrate",
		Usage: "roster database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Before: func(c *cli.Context) error {
			cfg, warning := config.LoadConfig(c.String("config"))
			if warning != nil {
				log.Printf("warning: %v", warning)
			}
			var err error
			db, err = bundb.Open(c.Context, cfg.Postgres, nil)
			if err != nil {
				return err
			}
			migrators["roster"] = migrate.NewMigrator(db, rostermigrations.Migrations)
			return nil
		},
		After: func(*cli.Context) error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
		Commands: newMigrationCommands(migrators),
	}

	if err := cliApp.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newMigrationCommands(migrators map[string]*migrate.Migrator) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init",
			Usage: "create migration tables",
			Action: func(c *cli.Context) error {
				for moduleName, migrator := range migrators {
					fmt.Printf("Initializing migrations for module: %s\n", moduleName)
					if err := migrator.Init(c.Context); err != nil {
						return fmt.Errorf("init %s: %w", moduleName, err)
					}
				}
				return nil
			},
		},
		{
			Name:  "migrate",
			Usage: "migrate database",
			Action: func(c *cli.Context) error {
				for moduleName, migrator := range migrators {
					if err := migrator.Lock(c.Context); err != nil {
						return err
					}
					group, err := migrator.Migrate(c.Context)
					unlockErr := migrator.Unlock(c.Context)
					if err != nil {
						return fmt.Errorf("migrate %s: %w", moduleName, err)
					}
					if unlockErr != nil {
						return unlockErr
					}
					if group.IsZero() {
						fmt.Printf("No new migrations to run for module: %s\n", moduleName)
					} else {
						fmt.Printf("Migrated module: %s to %s\n", moduleName, group)
					}
				}
				return nil
			},
		},
		{
			Name:  "rollback",
			Usage: "rollback the last migration group",
			Action: func(c *cli.Context) error {
				for moduleName, migrator := range migrators {
					group, err := migrator.Rollback(c.Context)
					if err != nil {
						return fmt.Errorf("rollback %s: %w", moduleName, err)
					}
					if group.IsZero() {
						fmt.Printf("No groups to roll back for module: %s\n", moduleName)
					} else {
						fmt.Printf("Rolled back module: %s to %s\n", moduleName, group)
					}
				}
				return nil
			},
		},
		{
			Name:      "create_go",
			Usage:     "create Go migration",
			ArgsUsage: "<module> <name...>",
			Action: func(c *cli.Context) error {
				moduleName := c.Args().First()
				migrator, ok := migrators[moduleName]
				if !ok {
					return fmt.Errorf("invalid module name: %s", moduleName)
				}

				name := strings.Join(c.Args().Tail(), "_")
				mf, err := migrator.CreateGoMigration(c.Context, name)
				if err != nil {
					return err
				}
				fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
				return nil
			},
		},
		{
			Name:  "status",
			Usage: "print migrations status",
			Action: func(c *cli.Context) error {
				for moduleName, migrator := range migrators {
					ms, err := migrator.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("Migrations for module: %s\n", moduleName)
					fmt.Printf("  %s\n", ms)
					fmt.Printf("  Applied: %s\n", ms.Applied())
					fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
				}
				return nil
			},
		},
	}
}
