package identityservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxFieldLength bounds query fields; longer input cannot be a real name.
const maxFieldLength = 200

// Query is one identity fragment taken from a results feed.
type Query struct {
	FirstName  string
	LastName   string
	Club       string
	ClubNumber string
	// Tournament labels audit records only.
	Tournament string
}

func (q Query) trimmed() Query {
	return Query{
		FirstName:  strings.TrimSpace(q.FirstName),
		LastName:   strings.TrimSpace(q.LastName),
		Club:       strings.TrimSpace(q.Club),
		ClubNumber: strings.TrimSpace(q.ClubNumber),
		Tournament: strings.TrimSpace(q.Tournament),
	}
}

func (q Query) matchable() bool {
	if q.FirstName == "" || q.LastName == "" {
		return false
	}
	for _, field := range []string{q.FirstName, q.LastName, q.Club, q.ClubNumber} {
		if utf8.RuneCountInString(field) > maxFieldLength {
			return false
		}
	}
	return true
}

// Classification tells reporting why a fragment ended where it did.
type Classification string

const (
	ClassMatched          Classification = "matched"
	ClassClubOutOfScope   Classification = "club_out_of_scope"
	ClassUnmatchedInScope Classification = "unmatched_in_scope"
)

// Outcome is the result of one resolution. PlayerID is empty when unmatched.
type Outcome struct {
	PlayerID       string
	Player         *rosterdomain.PlayerRecord
	Strategy       string
	Fuzzy          bool
	Classification Classification
}

// Matched reports whether a roster player was found.
func (o Outcome) Matched() bool {
	return o.PlayerID != ""
}

// Match is what a strategy returns when it accepts a candidate.
type Match struct {
	Player rosterdomain.PlayerRecord
	Fuzzy  bool
	// OldClub and CurrentClub are set when the match crossed a club change.
	OldClub     string
	CurrentClub string
}

// StrategyFunc tries to resolve q. It returns nil, nil when it has no eligible candidate.
type StrategyFunc func(ctx context.Context, q Query) (*Match, error)

// Strategy is one named step of the cascade.
type Strategy struct {
	Name    string
	Resolve StrategyFunc
}

// Resolver maps result-feed identities to roster players by running an
// ordered cascade of strategies. The first eligible candidate wins.
type Resolver struct {
	roster     RosterReader
	history    HistoryReader
	audit      AuditLog
	ages       rosterdomain.AgeClassTable
	logger     *slog.Logger
	metrics    Metrics
	tracer     trace.Tracer
	now        func() time.Time
	strategies []Strategy
}

// NewResolver wires the default cascade.
func NewResolver(
	roster RosterReader,
	history HistoryReader,
	audit AuditLog,
	ages rosterdomain.AgeClassTable,
	logger *slog.Logger,
	metrics Metrics,
	tracer trace.Tracer,
) *Resolver {
	r := &Resolver{
		roster:  roster,
		history: history,
		audit:   audit,
		ages:    ages,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		now:     time.Now,
	}
	r.strategies = r.defaultStrategies()
	return r
}

// StrategyNames lists the cascade in evaluation order.
func (r *Resolver) StrategyNames() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name
	}
	return names
}

// Resolve runs the cascade for q. A missing match is not an error; errors
// come only from the roster store.
func (r *Resolver) Resolve(ctx context.Context, q Query) (outcome Outcome, err error) {
	q = q.trimmed()

	ctx, span := r.tracer.Start(ctx, "Resolver.Resolve", trace.WithAttributes(
		attribute.String("tournament", q.Tournament),
		attribute.String("club", q.Club),
	))
	defer span.End()

	start := r.now()
	defer func() {
		r.metrics.RecordDuration(ctx, r.now().Sub(start))
	}()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Resolve: %v", rec)
			r.logger.ErrorContext(ctx, "Critical panic recovered", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			outcome = Outcome{}
		}
	}()

	if q.matchable() {
		for _, s := range r.strategies {
			m, err := s.Resolve(ctx, q)
			if err != nil {
				wrapped := fmt.Errorf("identityservice.Resolve: %s: %w", s.Name, err)
				span.RecordError(wrapped)
				span.SetStatus(codes.Error, wrapped.Error())
				return Outcome{}, wrapped
			}
			if m == nil {
				continue
			}
			return r.accept(ctx, q, s.Name, m), nil
		}
	}

	return r.classifyUnmatched(ctx, q)
}

// ResolveLicense accepts an organizer-supplied license ID from a participant
// list. Only eligibility is checked; nothing is audited.
func (r *Resolver) ResolveLicense(ctx context.Context, id string) (Outcome, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Outcome{Classification: ClassUnmatchedInScope}, nil
	}
	p, err := r.roster.GetPlayer(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("identityservice.ResolveLicense: %w", err)
	}
	if p == nil || !r.ages.IsEligible(p.BirthYear) {
		return Outcome{Classification: ClassUnmatchedInScope}, nil
	}
	r.metrics.RecordResolution(ctx, StrategyParticipantList, false)
	return Outcome{
		PlayerID:       p.ID,
		Player:         p,
		Strategy:       StrategyParticipantList,
		Classification: ClassMatched,
	}, nil
}

func (r *Resolver) accept(ctx context.Context, q Query, strategy string, m *Match) Outcome {
	if m.Fuzzy {
		r.recordFuzzy(ctx, q, strategy, m)
	}
	r.metrics.RecordResolution(ctx, strategy, m.Fuzzy)

	r.logger.DebugContext(ctx, "Resolved player",
		slog.String("strategy", strategy),
		slog.String("player_id", m.Player.ID),
		slog.Bool("fuzzy", m.Fuzzy),
	)

	player := m.Player
	return Outcome{
		PlayerID:       player.ID,
		Player:         &player,
		Strategy:       strategy,
		Fuzzy:          m.Fuzzy,
		Classification: ClassMatched,
	}
}

func (r *Resolver) recordFuzzy(ctx context.Context, q Query, strategy string, m *Match) {
	record := rosterdomain.FuzzyMatch{
		Tournament:      q.Tournament,
		TournamentFirst: q.FirstName,
		TournamentLast:  q.LastName,
		TournamentClub:  q.Club,
		DBFirst:         m.Player.FirstName,
		DBLast:          m.Player.LastName,
		DBClub:          m.Player.Club,
		OldClub:         m.OldClub,
		CurrentClub:     m.CurrentClub,
		Strategy:        strategy,
		PlayerID:        m.Player.ID,
		MatchedAt:       r.now().UTC(),
	}

	r.logger.InfoContext(ctx, "Fuzzy match accepted",
		slog.String("strategy", strategy),
		slog.String("tournament_player", q.FirstName+" "+q.LastName),
		slog.String("tournament_club", q.Club),
		slog.String("db_player", m.Player.FirstName+" "+m.Player.LastName),
		slog.String("db_club", m.Player.Club),
	)

	// Audit records are for review only; a failed append must not lose the match.
	if err := r.audit.RecordFuzzyMatch(ctx, record); err != nil {
		r.metrics.RecordAuditFailure(ctx)
		r.logger.ErrorContext(ctx, "Failed to record fuzzy match",
			slog.String("player_id", m.Player.ID),
			slog.String("strategy", strategy),
			slog.Any("error", err),
		)
	}
}

func (r *Resolver) classifyUnmatched(ctx context.Context, q Query) (Outcome, error) {
	class := ClassUnmatchedInScope
	if q.Club != "" && utf8.RuneCountInString(q.Club) <= maxFieldLength {
		exists, err := r.roster.ClubExists(ctx, q.Club)
		if err != nil {
			return Outcome{}, fmt.Errorf("identityservice.Resolve: club lookup: %w", err)
		}
		if !exists {
			class = ClassClubOutOfScope
		}
	} else {
		class = ClassClubOutOfScope
	}

	r.metrics.RecordUnmatched(ctx, string(class))
	r.logger.InfoContext(ctx, "No roster match",
		slog.String("first_name", q.FirstName),
		slog.String("last_name", q.LastName),
		slog.String("club", q.Club),
		slog.String("club_number", q.ClubNumber),
		slog.String("classification", string(class)),
	)
	return Outcome{Classification: class}, nil
}
