package rosterdomain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Federation is the only federation tag imported into the roster.
const Federation = "TTBW"

// Gender follows the federation's competition naming.
type Gender string

const (
	GenderBoys  Gender = "Jungen"
	GenderGirls Gender = "Mädchen"
)

// GenderFromSalutation maps the export's "Anrede" column.
func GenderFromSalutation(salutation string) Gender {
	if strings.TrimSpace(salutation) == "Herr" {
		return GenderBoys
	}
	return GenderGirls
}

// ChangeType classifies a roster upsert.
type ChangeType string

const (
	ChangeNone   ChangeType = ""
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
)

// PlayerRecord is one roster player keyed by the federation's internal ID.
type PlayerRecord struct {
	ID         string
	FirstName  string
	LastName   string
	Club       string
	Gender     Gender
	District   string
	BirthYear  int
	AgeClass   int
	Region     int
	Rating     *int
	ClubNumber string
	Federation string
}

// CompetitionKey groups players for the ranking lists, e.g. "Jungen 13".
func (p PlayerRecord) CompetitionKey() string {
	return fmt.Sprintf("%s %d", p.Gender, p.AgeClass)
}

// Changes lists the tracked fields that differ between p and next.
func (p PlayerRecord) Changes(next PlayerRecord) []string {
	var changed []string
	check := func(field string, differs bool) {
		if differs {
			changed = append(changed, field)
		}
	}
	check("first_name", p.FirstName != next.FirstName)
	check("last_name", p.LastName != next.LastName)
	check("club", p.Club != next.Club)
	check("gender", p.Gender != next.Gender)
	check("district", p.District != next.District)
	check("birth_year", p.BirthYear != next.BirthYear)
	check("age_class", p.AgeClass != next.AgeClass)
	check("region", p.Region != next.Region)
	check("rating", !sameRating(p.Rating, next.Rating))
	check("club_number", p.ClubNumber != next.ClubNumber)
	return changed
}

func sameRating(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// HistoryEntry is an immutable snapshot written whenever a player changes.
type HistoryEntry struct {
	ID               int64
	Player           PlayerRecord
	ChangeType       ChangeType
	ChangedAt        time.Time
	PreviousClub     string
	PreviousDistrict string
}

// FuzzyMatch records a resolution that was not an exact roster hit.
type FuzzyMatch struct {
	ID              string
	Tournament      string
	TournamentFirst string
	TournamentLast  string
	TournamentClub  string
	DBFirst         string
	DBLast          string
	DBClub          string
	OldClub         string
	CurrentClub     string
	Strategy        string
	PlayerID        string
	MatchedAt       time.Time
}

// MatchType labels the kind of name deviation for review lists.
func (m FuzzyMatch) MatchType() string {
	switch {
	case m.TournamentFirst != m.DBFirst:
		return "First Name Variant"
	case m.TournamentLast != m.DBLast:
		return "Last Name Variant"
	default:
		return "Name Variant"
	}
}

var ErrInvalidBirthDate = errors.New("invalid birth date")

// ParseBirthYear accepts "DD.MM.YYYY" or a bare year.
func ParseBirthYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidBirthDate
	}
	if i := strings.LastIndex(raw, "."); i >= 0 {
		raw = raw[i+1:]
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBirthDate, raw)
	}
	return year, nil
}
