package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/ttbw-roster/app"
	"github.com/Black-And-White-Club/ttbw-roster/app/shared/observability"
	"github.com/Black-And-White-Club/ttbw-roster/config"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCLI().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "ttbw",
		Usage: "youth roster, identity resolution and ranking lists",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.yaml", Usage: "path to the configuration file", EnvVars: []string{"TTBW_CONFIG"}},
		},
		Commands: []*cli.Command{
			importRosterCommand(),
			importRatingsCommand(),
			resolveCommand(),
			rankCommand(),
			reportCommand(),
			historyCommand(),
			cleanupHistoryCommand(),
			statsCommand(),
			serveCommand(),
		},
	}
}

// withApp loads the configuration, wires the application and closes it after fn.
func withApp(fn func(c *cli.Context, a *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) (err error) {
		cfg, warning := config.LoadConfig(c.String("config"))
		logger := observability.NewLogger(c.App.ErrWriter, cfg.Logging.Level, cfg.Logging.Format)
		if warning != nil {
			logger.WarnContext(c.Context, "Configuration fallback", "warning", warning)
		}
		logger.DebugContext(c.Context, "Configuration loaded", "config", cfg)

		application, err := app.NewApp(c.Context, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := application.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return fn(c, application)
	}
}
