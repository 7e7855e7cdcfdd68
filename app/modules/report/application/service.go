package reportservice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	rankingservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/Black-And-White-Club/ttbw-roster/app/shared/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ReportService"

// RosterSource supplies the stored data the reports need.
type RosterSource interface {
	ListPlayers(ctx context.Context) ([]rosterdomain.PlayerRecord, error)
	FuzzyMatches(ctx context.Context, limit int) ([]rosterdomain.FuzzyMatch, error)
	ExportHistory(ctx context.Context, from, to time.Time) ([]rosterdomain.HistoryEntry, error)
}

// Result lists the files written by GenerateAll.
type Result struct {
	Files            []string
	UnmatchedPlayers int
}

// ReportService writes ranking reports into an output folder.
type ReportService struct {
	source    RosterSource
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
	ages      rosterdomain.AgeClassTable
	folder    string
	delimiter rune
	palette   ChartPalette
}

// NewReportService creates a ReportService writing into folder. A zero
// delimiter means ';'.
func NewReportService(
	source RosterSource,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	ages rosterdomain.AgeClassTable,
	folder string,
	delimiter rune,
) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if delimiter == 0 {
		delimiter = ';'
	}
	return &ReportService{
		source:    source,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		ages:      ages,
		folder:    folder,
		delimiter: delimiter,
		palette:   DefaultPalette,
	}
}

// GenerateAll writes the region lists, the player overviews, the review
// lists, a workbook and a chart.
func (s *ReportService) GenerateAll(ctx context.Context, acc *rankingservice.Accumulator) (*Result, error) {
	return withTelemetry(s, ctx, "GenerateAll", s.folder, func(ctx context.Context) (*Result, error) {
		return s.generateAll(ctx, acc)
	})
}

func (s *ReportService) generateAll(ctx context.Context, acc *rankingservice.Accumulator) (*Result, error) {
	if err := os.MkdirAll(s.folder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}
	players, err := s.source.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	matches, err := s.source.FuzzyMatches(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load fuzzy matches: %w", err)
	}

	result := &Result{}
	write := func(name string, fn func(w io.Writer) error) error {
		path := filepath.Join(s.folder, name)
		if err := writeFile(path, fn); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		result.Files = append(result.Files, path)
		return nil
	}

	for _, region := range acc.Regions() {
		err := write(fmt.Sprintf("region%d.csv", region), func(w io.Writer) error {
			return WriteRegion(w, s.delimiter, acc, region)
		})
		if err != nil {
			return result, err
		}
	}

	if err := write("all_players.csv", func(w io.Writer) error {
		return WriteAllPlayers(w, s.delimiter, acc, players, s.ages)
	}); err != nil {
		return result, err
	}

	if err := write("unmatched_players.csv", func(w io.Writer) error {
		n, err := WriteUnmatchedPlayers(w, s.delimiter, acc, players, s.ages)
		result.UnmatchedPlayers = n
		return err
	}); err != nil {
		return result, err
	}

	if unmatched := acc.Unmatched(); len(unmatched) > 0 {
		if err := write("tournament_unmatched_players.csv", func(w io.Writer) error {
			return WriteTournamentUnmatched(w, s.delimiter, unmatched, players, s.ages)
		}); err != nil {
			return result, err
		}
	}

	if len(matches) > 0 {
		if err := write("fuzzy_matches.csv", func(w io.Writer) error {
			return WriteFuzzyMatches(w, s.delimiter, matches)
		}); err != nil {
			return result, err
		}
	} else {
		s.logger.InfoContext(ctx, "No fuzzy matches occurred during processing")
	}

	if err := write("statistics.csv", func(w io.Writer) error {
		return WriteStatistics(w, s.delimiter, acc.Statistics(), len(acc.Unmatched()), acc.Skipped())
	}); err != nil {
		return result, err
	}

	if err := write("ranking.xlsx", func(w io.Writer) error {
		return WriteWorkbook(w, acc)
	}); err != nil {
		return result, err
	}

	png, err := GenerateRegionChart(acc, s.palette)
	if err != nil {
		return result, err
	}
	if err := write("region_points.png", func(w io.Writer) error {
		_, err := w.Write(png)
		return err
	}); err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "Reports generated",
		slog.String("folder", s.folder),
		slog.Int("files", len(result.Files)),
		slog.Int("unmatched_players", result.UnmatchedPlayers),
	)
	return result, nil
}

// ExportHistory writes history snapshots between from and to into path and
// returns how many were written.
func (s *ReportService) ExportHistory(ctx context.Context, path string, from, to time.Time) (int, error) {
	return withTelemetry(s, ctx, "ExportHistory", path, func(ctx context.Context) (int, error) {
		entries, err := s.source.ExportHistory(ctx, from, to)
		if err != nil {
			return 0, err
		}
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return 0, fmt.Errorf("failed to create output folder: %w", err)
			}
		}
		if err := writeFile(path, func(w io.Writer) error {
			return WriteHistory(w, s.delimiter, entries)
		}); err != nil {
			return 0, err
		}
		return len(entries), nil
	})
}

func writeFile(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return err
	}
	return bw.Flush()
}

type operationFunc[T any] func(ctx context.Context) (T, error)

func withTelemetry[T any](
	s *ReportService,
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
