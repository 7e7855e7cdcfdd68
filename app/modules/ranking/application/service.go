package rankingservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
	"github.com/Black-And-White-Club/ttbw-roster/app/shared/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName    = "RankingService"
	defaultWorkers = 8
)

// Resolver attributes result fragments to roster players.
type Resolver interface {
	Resolve(ctx context.Context, q identityservice.Query) (identityservice.Outcome, error)
	ResolveLicense(ctx context.Context, id string) (identityservice.Outcome, error)
}

// Feed supplies competitions and placements for configured tournaments.
type Feed interface {
	Competitions(ctx context.Context, t rankingdomain.Tournament) ([]rankingdomain.Competition, error)
	Results(ctx context.Context, t rankingdomain.Tournament, c rankingdomain.Competition) ([]rankingdomain.ResultFragment, error)
}

// Summary counts what happened to a batch of fragments.
type Summary struct {
	Fragments int
	Matched   int
	Unmatched int
	// Skipped counts matched fragments that were not credited.
	Skipped int
}

func (s *Summary) add(other Summary) {
	s.Fragments += other.Fragments
	s.Matched += other.Matched
	s.Unmatched += other.Unmatched
	s.Skipped += other.Skipped
}

// RankingService resolves result feeds and feeds an Accumulator.
type RankingService struct {
	resolver Resolver
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	tracer   trace.Tracer
	workers  int
}

// NewRankingService creates a RankingService. workers bounds concurrent
// resolutions; values below 1 use a default.
func NewRankingService(
	resolver Resolver,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	workers int,
) *RankingService {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = defaultWorkers
	}
	return &RankingService{
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		workers:  workers,
	}
}

// ProcessResults resolves fragments concurrently and credits them in input
// order. Organizer participant lists take precedence over name matching.
// A storage error aborts the batch before anything is credited.
func (s *RankingService) ProcessResults(
	ctx context.Context,
	acc *Accumulator,
	participants rankingdomain.ParticipantIndex,
	fragments []rankingdomain.ResultFragment,
) (Summary, error) {
	return withTelemetry(s, ctx, "ProcessResults", fmt.Sprintf("%d fragments", len(fragments)), func(ctx context.Context) (Summary, error) {
		return s.processResults(ctx, acc, participants, fragments)
	})
}

func (s *RankingService) processResults(
	ctx context.Context,
	acc *Accumulator,
	participants rankingdomain.ParticipantIndex,
	fragments []rankingdomain.ResultFragment,
) (Summary, error) {
	outcomes := make([]identityservice.Outcome, len(fragments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range fragments {
		g.Go(func() error {
			out, err := s.resolveOne(gctx, participants, f)
			if err != nil {
				return fmt.Errorf("resolve %s %s (%s): %w", f.FirstName, f.LastName, f.Club, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Fragments: len(fragments)}
	for i, f := range fragments {
		out := outcomes[i]
		if !out.Matched() {
			summary.Unmatched++
			acc.AddUnmatched(f, out.Classification)
			continue
		}

		summary.Matched++
		added, err := acc.Add(*out.Player, f.Tournament, f.Competition, f.Placement)
		if err != nil {
			if errors.Is(err, ErrUnknownTournament) || errors.Is(err, ErrInvalidPlacement) {
				summary.Skipped++
				s.logger.WarnContext(ctx, "Skipping result",
					slog.String("tournament", f.Tournament),
					slog.String("competition", f.Competition),
					slog.String("player_id", out.PlayerID),
					slog.Any("error", err),
				)
				continue
			}
			return summary, err
		}
		if !added {
			summary.Skipped++
			s.logger.DebugContext(ctx, "Skipping result of ineligible player",
				slog.String("player_id", out.PlayerID),
				slog.Int("birth_year", out.Player.BirthYear),
			)
		}
	}
	return summary, nil
}

func (s *RankingService) resolveOne(ctx context.Context, participants rankingdomain.ParticipantIndex, f rankingdomain.ResultFragment) (identityservice.Outcome, error) {
	if id, ok := participants.Lookup(f); ok {
		out, err := s.resolver.ResolveLicense(ctx, id)
		if err != nil || out.Matched() {
			return out, err
		}
	}
	return s.resolver.Resolve(ctx, identityservice.Query{
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Club:       f.Club,
		ClubNumber: f.ClubNumber,
		Tournament: f.Tournament,
	})
}

// ProcessFeed walks every configured tournament of acc through feed.
func (s *RankingService) ProcessFeed(ctx context.Context, acc *Accumulator, feed Feed, participants rankingdomain.ParticipantIndex) (Summary, error) {
	var total Summary
	for _, t := range acc.Tournaments() {
		competitions, err := feed.Competitions(ctx, t)
		if err != nil {
			return total, fmt.Errorf("rankingservice.ProcessFeed: %s: %w", t.Name, err)
		}
		for _, c := range competitions {
			fragments, err := feed.Results(ctx, t, c)
			if err != nil {
				return total, fmt.Errorf("rankingservice.ProcessFeed: %s/%s: %w", t.Name, c.Name, err)
			}
			summary, err := s.ProcessResults(ctx, acc, participants, fragments)
			if err != nil {
				return total, fmt.Errorf("rankingservice.ProcessFeed: %s/%s: %w", t.Name, c.Name, err)
			}
			if summary.Fragments > 0 {
				s.logger.InfoContext(ctx, "Competition processed",
					slog.String("tournament", t.Name),
					slog.String("competition", c.Name),
					slog.Int("found", summary.Fragments),
					slog.Int("matched", summary.Matched),
				)
			}
			total.add(summary)
		}
	}
	return total, nil
}

type operationFunc[T any] func(ctx context.Context) (T, error)

func withTelemetry[T any](
	s *RankingService,
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
