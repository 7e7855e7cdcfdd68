package rosterhandlers

import (
	"context"
	"log/slog"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"go.opentelemetry.io/otel/trace"
)

// RosterQueries is the read side of the roster service used by the API.
type RosterQueries interface {
	GetPlayer(ctx context.Context, id string) (*rosterdomain.PlayerRecord, error)
	PlayerHistory(ctx context.Context, id string) ([]rosterdomain.HistoryEntry, error)
	FuzzyMatches(ctx context.Context, limit int) ([]rosterdomain.FuzzyMatch, error)
	Stats(ctx context.Context) (*rosterdb.Stats, error)
}

// IdentityResolver resolves one result-feed identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, q identityservice.Query) (identityservice.Outcome, error)
}

// RosterHandlers serves the roster JSON API.
type RosterHandlers struct {
	service  RosterQueries
	resolver IdentityResolver
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewRosterHandlers creates a new RosterHandlers instance.
func NewRosterHandlers(
	service RosterQueries,
	resolver IdentityResolver,
	logger *slog.Logger,
	tracer trace.Tracer,
) *RosterHandlers {
	return &RosterHandlers{
		service:  service,
		resolver: resolver,
		logger:   logger,
		tracer:   tracer,
	}
}
