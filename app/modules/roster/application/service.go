package rosterservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/application/parsers"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"github.com/Black-And-White-Club/ttbw-roster/app/shared/observability"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RosterService"

// ImportMetrics counts row-level import outcomes.
type ImportMetrics interface {
	RecordRowImported(ctx context.Context, change string)
	RecordRowSkipped(ctx context.Context, reason string)
	RecordRatingUpdated(ctx context.Context)
}

// RosterService imports roster exports and answers roster and history queries.
type RosterService struct {
	repo          rosterdb.Repository
	logger        *slog.Logger
	metrics       observability.OperationMetrics
	importMetrics ImportMetrics
	tracer        trace.Tracer
	db            *bun.DB
	parsers       parsers.ParserFactory
	ages          rosterdomain.AgeClassTable
	districts     rosterdomain.DistrictTable
	now           func() time.Time
}

// NewRosterService creates a new RosterService.
func NewRosterService(
	repo rosterdb.Repository,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	importMetrics ImportMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	ages rosterdomain.AgeClassTable,
	districts rosterdomain.DistrictTable,
) *RosterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RosterService{
		repo:          repo,
		logger:        logger,
		metrics:       metrics,
		importMetrics: importMetrics,
		tracer:        tracer,
		db:            db,
		parsers:       parsers.NewFactory(),
		ages:          ages,
		districts:     districts,
		now:           time.Now,
	}
}

type operationFunc[T any] func(ctx context.Context) (T, error)

func withTelemetry[T any](
	s *RosterService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[T],
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.DebugContext(ctx, "Operation triggered", slog.String("operation", operationName), slog.String("identifier", identifier))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

// runInTx passes a nil handle when the service has no database, so the
// repository falls back to its own connection (and fakes see nil).
func runInTx[T any](s *RosterService, ctx context.Context, fn func(ctx context.Context, db bun.IDB) (T, error)) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		result, err = fn(ctx, tx)
		return err
	})
	return result, err
}
