package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Black-And-White-Club/ttbw-roster/app"
	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rankingservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application"
	rankingparsers "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application/parsers"
	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/urfave/cli/v2"
)

func requireArg(c *cli.Context, name string) (string, error) {
	arg := strings.TrimSpace(c.Args().First())
	if arg == "" {
		return "", cli.Exit(fmt.Sprintf("missing argument <%s>", name), 2)
	}
	return arg, nil
}

func importRosterCommand() *cli.Command {
	return &cli.Command{
		Name:      "import-roster",
		Usage:     "import a roster export (.csv or .xlsx)",
		ArgsUsage: "<file>",
		Action: withApp(func(c *cli.Context, a *app.App) error {
			path, err := requireArg(c, "file")
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			result, err := a.Roster.ImportRoster(c.Context, filepath.Base(path), data)
			if err != nil {
				return err
			}
			printImportResult(c.App.Writer, result)
			return nil
		}),
	}
}

func importRatingsCommand() *cli.Command {
	return &cli.Command{
		Name:      "import-ratings",
		Usage:     "apply a tab-separated QTTR rating list to the roster",
		ArgsUsage: "<file>",
		Action: withApp(func(c *cli.Context, a *app.App) error {
			path, err := requireArg(c, "file")
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			result, err := a.Roster.ImportRatings(c.Context, filepath.Base(path), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "ratings: %d entries, %d matched, %d updated\n", result.Entries, result.Matched, result.Updated)
			return nil
		}),
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "resolve one result-feed identity against the roster",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "first", Required: true, Usage: "first name"},
			&cli.StringFlag{Name: "last", Required: true, Usage: "last name"},
			&cli.StringFlag{Name: "club", Usage: "club name"},
			&cli.StringFlag{Name: "club-number", Usage: "club number"},
			&cli.StringFlag{Name: "tournament", Value: "manual", Usage: "label for audit records"},
		},
		Action: withApp(func(c *cli.Context, a *app.App) error {
			outcome, err := a.Resolver.Resolve(c.Context, identityservice.Query{
				FirstName:  c.String("first"),
				LastName:   c.String("last"),
				Club:       c.String("club"),
				ClubNumber: c.String("club-number"),
				Tournament: c.String("tournament"),
			})
			if err != nil {
				return err
			}
			printOutcome(c.App.Writer, outcome)
			return nil
		}),
	}
}

func rankingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "results", Usage: "offline results CSV files; when omitted the results website is queried"},
		&cli.StringSliceFlag{Name: "participants", Usage: "organizer participant lists (XML)"},
	}
}

// buildRanking resolves every result into a fresh accumulator.
func buildRanking(c *cli.Context, a *app.App) (*rankingservice.Accumulator, rankingservice.Summary, error) {
	acc := a.NewAccumulator()
	var total rankingservice.Summary

	participants := rankingdomain.ParticipantIndex{}
	for _, path := range c.StringSlice("participants") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, total, err
		}
		index, err := rankingparsers.ParseParticipants(data)
		if err != nil {
			return nil, total, fmt.Errorf("%s: %w", path, err)
		}
		participants.Merge(index)
	}

	files := c.StringSlice("results")
	if len(files) == 0 {
		summary, err := a.Ranking.ProcessFeed(c.Context, acc, a.Feed(), participants)
		return acc, summary, err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, total, err
		}
		parsed, err := rankingparsers.ParseResultsCSV(data)
		if err != nil {
			return nil, total, fmt.Errorf("%s: %w", path, err)
		}
		if parsed.Skipped > 0 {
			a.Logger.WarnContext(c.Context, "Skipped unreadable result rows", "file", path, "rows", parsed.Skipped)
		}
		summary, err := a.Ranking.ProcessResults(c.Context, acc, participants, parsed.Fragments)
		if err != nil {
			return nil, total, fmt.Errorf("%s: %w", path, err)
		}
		total.Fragments += summary.Fragments
		total.Matched += summary.Matched
		total.Unmatched += summary.Unmatched
		total.Skipped += summary.Skipped
	}
	return acc, total, nil
}

func rankCommand() *cli.Command {
	return &cli.Command{
		Name:  "rank",
		Usage: "compute the ranking and print the leaders",
		Flags: append(rankingFlags(),
			&cli.IntFlag{Name: "top", Value: 20, Usage: "number of players to print"},
			&cli.IntFlag{Name: "region", Usage: "restrict to one region"},
			&cli.IntFlag{Name: "age-class", Usage: "restrict to one age class"},
			&cli.StringFlag{Name: "gender", Usage: "restrict to Jungen or Mädchen"},
		),
		Action: withApp(func(c *cli.Context, a *app.App) error {
			acc, summary, err := buildRanking(c, a)
			if err != nil {
				return err
			}
			printSummary(c.App.Writer, summary)
			printStandings(c.App.Writer, acc.Top(c.Int("top"), rankingservice.Filter{
				Region:   c.Int("region"),
				AgeClass: c.Int("age-class"),
				Gender:   rosterdomain.Gender(c.String("gender")),
			}))
			return nil
		}),
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "compute the ranking and write all report files",
		Flags: rankingFlags(),
		Action: withApp(func(c *cli.Context, a *app.App) error {
			acc, summary, err := buildRanking(c, a)
			if err != nil {
				return err
			}
			printSummary(c.App.Writer, summary)
			result, err := a.Reports.GenerateAll(c.Context, acc)
			if err != nil {
				return err
			}
			for _, f := range result.Files {
				fmt.Fprintln(c.App.Writer, "wrote", f)
			}
			fmt.Fprintf(c.App.Writer, "%d roster players without results\n", result.UnmatchedPlayers)
			return nil
		}),
	}
}

func historyCommand() *cli.Command {
	limit := &cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum number of entries"}
	return &cli.Command{
		Name:  "history",
		Usage: "inspect the roster change log",
		Subcommands: []*cli.Command{
			{
				Name:      "player",
				Usage:     "all snapshots of one player",
				ArgsUsage: "<id>",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					entries, err := a.Roster.PlayerHistory(c.Context, id)
					if err != nil {
						return err
					}
					printHistory(c.App.Writer, entries)
					return nil
				}),
			},
			{
				Name:  "recent",
				Usage: "latest changes",
				Flags: []cli.Flag{limit},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					entries, err := a.Roster.RecentChanges(c.Context, c.Int("limit"))
					if err != nil {
						return err
					}
					printHistory(c.App.Writer, entries)
					return nil
				}),
			},
			{
				Name:      "type",
				Usage:     "changes of one type",
				ArgsUsage: "<INSERT|UPDATE>",
				Flags:     []cli.Flag{limit},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					changeType, err := requireArg(c, "type")
					if err != nil {
						return err
					}
					entries, err := a.Roster.ChangesByType(c.Context, rosterdomain.ChangeType(strings.ToUpper(changeType)), c.Int("limit"))
					if err != nil {
						return err
					}
					printHistory(c.App.Writer, entries)
					return nil
				}),
			},
			{
				Name:      "club",
				Usage:     "changes involving a club",
				ArgsUsage: "<club>",
				Flags:     []cli.Flag{limit},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					club, err := requireArg(c, "club")
					if err != nil {
						return err
					}
					entries, err := a.Roster.ClubChanges(c.Context, club, c.Int("limit"))
					if err != nil {
						return err
					}
					printHistory(c.App.Writer, entries)
					return nil
				}),
			},
			{
				Name:      "district",
				Usage:     "changes involving a district",
				ArgsUsage: "<district>",
				Flags:     []cli.Flag{limit},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					district, err := requireArg(c, "district")
					if err != nil {
						return err
					}
					entries, err := a.Roster.DistrictChanges(c.Context, district, c.Int("limit"))
					if err != nil {
						return err
					}
					printHistory(c.App.Writer, entries)
					return nil
				}),
			},
			{
				Name:  "stats",
				Usage: "change log statistics",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					stats, err := a.Roster.HistoryStatistics(c.Context)
					if err != nil {
						return err
					}
					printHistoryStats(c.App.Writer, stats)
					return nil
				}),
			},
			{
				Name:  "export",
				Usage: "write the change log to CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "first day (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "to", Usage: "last day (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "output", Value: "history.csv", Usage: "destination file"},
				},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					from, to, err := parseRange(c.String("from"), c.String("to"))
					if err != nil {
						return cli.Exit(err.Error(), 2)
					}
					n, err := a.Reports.ExportHistory(c.Context, c.String("output"), from, to)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "exported %d history entries to %s\n", n, c.String("output"))
					return nil
				}),
			},
		},
	}
}

// parseRange reads optional YYYY-MM-DD bounds. The upper bound covers its whole day.
func parseRange(fromRaw, toRaw string) (from, to time.Time, err error) {
	if fromRaw != "" {
		if from, err = time.ParseInLocation(time.DateOnly, fromRaw, time.Local); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from %q: %w", fromRaw, err)
		}
	}
	if toRaw != "" {
		if to, err = time.ParseInLocation(time.DateOnly, toRaw, time.Local); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to %q: %w", toRaw, err)
		}
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return from, to, nil
}

func cleanupHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "cleanup-history",
		Usage: "remove duplicate snapshots and optionally old history",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "older-than-days", Usage: "also delete snapshots older than this many days"},
		},
		Action: withApp(func(c *cli.Context, a *app.App) error {
			removed, err := a.Roster.CleanupDuplicateHistory(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "removed %d duplicate history entries\n", removed)

			if days := c.Int("older-than-days"); days > 0 {
				cleared, err := a.Roster.ClearHistoryOlderThan(c.Context, days)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "removed %d history entries older than %d days\n", cleared, days)
			}
			return nil
		}),
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "print database statistics",
		Action: withApp(func(c *cli.Context, a *app.App) error {
			stats, err := a.Roster.Stats(c.Context)
			if err != nil {
				return err
			}
			printStats(c.App.Writer, stats)
			return nil
		}),
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the read API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides http.addr"},
		},
		Action: withApp(func(c *cli.Context, a *app.App) error {
			if addr := c.String("addr"); addr != "" {
				a.Cfg.HTTP.Addr = addr
			}
			return a.Serve(c.Context)
		}),
	}
}
