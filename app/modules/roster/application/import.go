package rosterservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/application/parsers"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/uptrace/bun"
)

// SkipReason explains why a roster row was not imported.
type SkipReason string

const (
	SkipMissingName       SkipReason = "missing_name"
	SkipMissingID         SkipReason = "missing_id"
	SkipMissingBirthDate  SkipReason = "missing_birth_date"
	SkipInvalidBirthDate  SkipReason = "invalid_birth_date"
	SkipForeignFederation SkipReason = "foreign_federation"
)

// ImportResult summarizes one roster import.
type ImportResult struct {
	Rows      int
	Inserted  int
	Updated   int
	Unchanged int
	Skipped   map[SkipReason]int
	// UnknownDistricts counts rows whose district fell back to the first
	// configured district.
	UnknownDistricts  int
	DuplicatesRemoved int
}

// SkippedTotal sums all skip reasons.
func (r ImportResult) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

// RatingResult summarizes one rating import.
type RatingResult struct {
	Entries int
	Matched int
	Updated int
}

// ImportRoster parses a roster export and upserts every valid row. Rows are
// committed one by one: a storage error stops the import but keeps what was
// already written.
func (s *RosterService) ImportRoster(ctx context.Context, fileName string, data []byte) (*ImportResult, error) {
	return withTelemetry(s, ctx, "ImportRoster", fileName, func(ctx context.Context) (*ImportResult, error) {
		return s.importRoster(ctx, fileName, data)
	})
}

func (s *RosterService) importRoster(ctx context.Context, fileName string, data []byte) (*ImportResult, error) {
	parser, err := s.parsers.GetParser(fileName)
	if err != nil {
		return nil, err
	}
	roster, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	// Roster exports carry no ratings; keep the ones a rating import stored.
	existing, err := s.repo.ListPlayers(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load current roster: %w", err)
	}
	ratings := make(map[string]*int, len(existing))
	for _, p := range existing {
		ratings[p.ID] = p.Rating
	}

	result := &ImportResult{Rows: len(roster.Rows), Skipped: make(map[SkipReason]int)}
	for _, row := range roster.Rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record, reason, districtMatched := s.recordFromRow(row)
		if reason != "" {
			result.Skipped[reason]++
			s.recordSkip(ctx, reason)
			s.logger.WarnContext(ctx, "Skipping roster row",
				slog.Int("line", row.Line),
				slog.String("reason", string(reason)),
				slog.String("internal_id", row.Get(parsers.ColInternalID)),
			)
			continue
		}
		if !districtMatched {
			result.UnknownDistricts++
			s.logger.WarnContext(ctx, "Unknown district, using fallback region",
				slog.Int("line", row.Line),
				slog.String("district", record.District),
				slog.Int("region", record.Region),
			)
		}
		record.Rating = ratings[record.ID]

		change, err := s.repo.UpsertPlayer(ctx, nil, record)
		if err != nil {
			return result, fmt.Errorf("failed to upsert player %s (line %d): %w", record.ID, row.Line, err)
		}
		switch change {
		case rosterdomain.ChangeInsert:
			result.Inserted++
		case rosterdomain.ChangeUpdate:
			result.Updated++
		default:
			result.Unchanged++
		}
		if s.importMetrics != nil {
			label := string(change)
			if change == rosterdomain.ChangeNone {
				label = "unchanged"
			}
			s.importMetrics.RecordRowImported(ctx, label)
		}
	}

	removed, err := s.repo.CleanupDuplicateHistory(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to clean up history: %w", err)
	}
	result.DuplicatesRemoved = removed

	s.logger.InfoContext(ctx, "Roster imported",
		slog.String("file", fileName),
		slog.Int("rows", result.Rows),
		slog.Int("inserted", result.Inserted),
		slog.Int("updated", result.Updated),
		slog.Int("unchanged", result.Unchanged),
		slog.Int("skipped", result.SkippedTotal()),
	)
	return result, nil
}

// recordFromRow maps one export row. A non-empty reason means the row is skipped.
func (s *RosterService) recordFromRow(row parsers.Row) (rosterdomain.PlayerRecord, SkipReason, bool) {
	first, last := row.Get(parsers.ColFirstName), row.Get(parsers.ColLastName)
	id := row.Get(parsers.ColInternalID)
	birthDate := row.Get(parsers.ColBirthDate)

	switch {
	case first == "" || last == "":
		return rosterdomain.PlayerRecord{}, SkipMissingName, false
	case id == "":
		return rosterdomain.PlayerRecord{}, SkipMissingID, false
	case birthDate == "":
		return rosterdomain.PlayerRecord{}, SkipMissingBirthDate, false
	case row.Get(parsers.ColFederation) != rosterdomain.Federation:
		return rosterdomain.PlayerRecord{}, SkipForeignFederation, false
	}

	birthYear, err := rosterdomain.ParseBirthYear(birthDate)
	if err != nil {
		return rosterdomain.PlayerRecord{}, SkipInvalidBirthDate, false
	}

	districtName := row.Get(parsers.ColDistrict)
	district, matched := s.districts.Lookup(districtName)

	return rosterdomain.PlayerRecord{
		ID:         id,
		FirstName:  first,
		LastName:   last,
		Club:       row.Get(parsers.ColClub),
		Gender:     rosterdomain.GenderFromSalutation(row.Get(parsers.ColSalutation)),
		District:   districtName,
		BirthYear:  birthYear,
		AgeClass:   s.ages.AgeClassFor(birthYear),
		Region:     district.Region,
		ClubNumber: row.Get(parsers.ColClubNumber),
		Federation: rosterdomain.Federation,
	}, "", matched
}

func (s *RosterService) recordSkip(ctx context.Context, reason SkipReason) {
	if s.importMetrics != nil {
		s.importMetrics.RecordRowSkipped(ctx, string(reason))
	}
}

// ImportRatings applies a QTTR rating list to the roster. All changed ratings
// are written in one transaction and tracked in history.
func (s *RosterService) ImportRatings(ctx context.Context, fileName string, data []byte) (*RatingResult, error) {
	ratings, err := parsers.ParseRatings(data)
	if err != nil {
		return nil, fmt.Errorf("ImportRatings: %w", err)
	}

	return withTelemetry(s, ctx, "ImportRatings", fileName, func(ctx context.Context) (*RatingResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*RatingResult, error) {
			return s.applyRatings(ctx, db, ratings)
		})
	})
}

func (s *RosterService) applyRatings(ctx context.Context, db bun.IDB, ratings parsers.Ratings) (*RatingResult, error) {
	players, err := s.repo.ListPlayers(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to load current roster: %w", err)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	result := &RatingResult{Entries: len(ratings)}
	for _, p := range players {
		value, ok := ratings.Lookup(p.FirstName, p.LastName, p.Club)
		if !ok {
			continue
		}
		result.Matched++
		if p.Rating != nil && *p.Rating == value {
			continue
		}

		p.Rating = &value
		change, err := s.repo.UpsertPlayer(ctx, db, p)
		if err != nil {
			return nil, fmt.Errorf("failed to update rating of %s: %w", p.ID, err)
		}
		if change == rosterdomain.ChangeNone {
			continue
		}
		result.Updated++
		if s.importMetrics != nil {
			s.importMetrics.RecordRatingUpdated(ctx)
		}
	}

	s.logger.InfoContext(ctx, "Ratings imported",
		slog.Int("entries", result.Entries),
		slog.Int("matched", result.Matched),
		slog.Int("updated", result.Updated),
	)
	return result, nil
}
