package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	identityadapters "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/infrastructure/adapters"
	"github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/infrastructure/audit"
	identitymetrics "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/infrastructure/metrics"
	rankingservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application"
	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
	"github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/infrastructure/nuliga"
	reportservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/report/application"
	rosterservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/application"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rostermetrics "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/metrics"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"github.com/Black-And-White-Club/ttbw-roster/app/shared/observability"
	"github.com/Black-And-White-Club/ttbw-roster/config"
	"github.com/Black-And-White-Club/ttbw-roster/db/bundb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Black-And-White-Club/ttbw-roster"

// App holds the wired services of one process.
type App struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Tracer   trace.Tracer

	DB       *bun.DB
	Repo     rosterdb.Repository
	Roster   *rosterservice.RosterService
	Resolver *identityservice.Resolver
	Ranking  *rankingservice.RankingService
	Reports  *reportservice.ReportService

	ages  rosterdomain.AgeClassTable
	audit *audit.Queue
}

// NewApp connects to the database and wires every module.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := bundb.Open(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app, err := newApp(ctx, cfg, logger, db, rosterdb.NewRepository(db))
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *bun.DB, repo rosterdb.Repository) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tracer := otel.Tracer(tracerName)
	opMetrics := observability.NewPrometheusOperationMetrics(registry)
	ages := rosterdomain.NewAgeClassTable(cfg.AgeClasses, cfg.DefaultBirthYear)

	districts := make([]rosterdomain.District, 0, len(cfg.Districts))
	for _, d := range cfg.Districts {
		districts = append(districts, rosterdomain.District{Name: d.Name, Region: d.Region, ShortName: d.ShortName})
	}

	app := &App{
		Cfg:      cfg,
		Logger:   logger,
		Registry: registry,
		Tracer:   tracer,
		DB:       db,
		Repo:     repo,
		ages:     ages,
	}

	app.Roster = rosterservice.NewRosterService(
		repo, logger, opMetrics, rostermetrics.NewPrometheusMetrics(registry), tracer, db,
		ages, rosterdomain.NewDistrictTable(districts),
	)

	lookup := identityadapters.NewRosterLookupAdapter(repo)
	var auditLog identityservice.AuditLog = lookup
	if cfg.Resolver.AuditQueue {
		queue, err := audit.NewQueue(ctx, lookup, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start audit queue: %w", err)
		}
		app.audit = queue
		auditLog = queue
	}

	app.Resolver = identityservice.NewResolver(
		lookup, lookup, auditLog, ages, logger,
		identitymetrics.NewPrometheusMetrics(registry), tracer,
	)
	app.Ranking = rankingservice.NewRankingService(app.Resolver, logger, opMetrics, tracer, cfg.Resolver.Workers)
	app.Reports = reportservice.NewReportService(
		app.Roster, logger, opMetrics, tracer, ages,
		cfg.Output.Folder, cfg.Output.Delimiter(),
	)
	return app, nil
}

// Tournaments converts the configured tournaments for the ranking module.
func (app *App) Tournaments() []rankingdomain.Tournament {
	out := make([]rankingdomain.Tournament, 0, len(app.Cfg.Tournaments))
	for _, t := range app.Cfg.Tournaments {
		out = append(out, rankingdomain.Tournament{
			Name:       t.Name,
			ID:         t.TournamentID,
			Points:     t.Points,
			Federation: t.ResolvedFederation(),
		})
	}
	return out
}

// NewAccumulator returns an empty accumulator for the configured season.
func (app *App) NewAccumulator() *rankingservice.Accumulator {
	return rankingservice.NewAccumulator(app.ages, app.Tournaments(), app.Cfg.Regions())
}

// Feed returns a client for the configured results website.
func (app *App) Feed() *nuliga.Client {
	return nuliga.NewClient(nil, nuliga.Endpoints{
		BaseURL:         app.Cfg.API.NuLigaBaseURL,
		TournamentPath:  app.Cfg.API.TournamentBaseURL,
		CompetitionPath: app.Cfg.API.CompetitionBaseURL,
		FederationTTBW:  app.Cfg.API.FederationTTBW,
		FederationArge:  app.Cfg.API.FederationArge,
	}, app.Logger)
}

// Close drains the audit queue before closing the database.
func (app *App) Close() error {
	var errs []error
	if app.audit != nil {
		if failures := app.audit.Failures(); failures > 0 {
			app.Logger.Warn("Fuzzy matches could not be recorded", slog.Int64("failures", failures))
		}
		if err := app.audit.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audit queue: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
