package rosterdb

import (
	"context"
	"time"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Player is the current state of one roster player.
type Player struct {
	bun.BaseModel `bun:"table:current_players,alias:cp"`

	ID         string `bun:"internal_id,pk"`
	FirstName  string `bun:"first_name,notnull"`
	LastName   string `bun:"last_name,notnull"`
	Club       string `bun:"club,notnull"`
	Gender     string `bun:"gender,notnull"`
	District   string `bun:"district,notnull"`
	BirthYear  int    `bun:"birth_year,notnull"`
	AgeClass   int    `bun:"age_class,notnull"`
	Region     int    `bun:"region,notnull"`
	Rating     *int   `bun:"qttr"`
	ClubNumber string `bun:"club_number,nullzero"`
	Federation string `bun:"federation,notnull,default:'TTBW'"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// PlayerHistory is an append-only snapshot written on insert and on every change.
type PlayerHistory struct {
	bun.BaseModel `bun:"table:player_history,alias:ph"`

	ID         int64  `bun:"id,pk,autoincrement"`
	PlayerID   string `bun:"internal_id,notnull"`
	FirstName  string `bun:"first_name,notnull"`
	LastName   string `bun:"last_name,notnull"`
	Club       string `bun:"club,notnull"`
	Gender     string `bun:"gender,notnull"`
	District   string `bun:"district,notnull"`
	BirthYear  int    `bun:"birth_year,notnull"`
	AgeClass   int    `bun:"age_class,notnull"`
	Region     int    `bun:"region,notnull"`
	Rating     *int   `bun:"qttr"`
	ClubNumber string `bun:"club_number,nullzero"`
	Federation string `bun:"federation,notnull,default:'TTBW'"`

	ChangeType       string    `bun:"change_type,notnull"`
	ChangedAt        time.Time `bun:"changed_at,nullzero,notnull,default:current_timestamp"`
	PreviousClub     string    `bun:"previous_club,nullzero"`
	PreviousDistrict string    `bun:"previous_district,nullzero"`
}

// FuzzyMatch is a review record for a non-exact resolution.
type FuzzyMatch struct {
	bun.BaseModel `bun:"table:fuzzy_matches,alias:fm"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	Tournament      string    `bun:"tournament_name,notnull"`
	TournamentFirst string    `bun:"tournament_first,notnull"`
	TournamentLast  string    `bun:"tournament_last,notnull"`
	TournamentClub  string    `bun:"tournament_club,notnull"`
	DBFirst         string    `bun:"db_first,notnull"`
	DBLast          string    `bun:"db_last,notnull"`
	DBClub          string    `bun:"db_club,notnull"`
	OldClub         string    `bun:"old_club,nullzero"`
	CurrentClub     string    `bun:"current_club,nullzero"`
	Strategy        string    `bun:"strategy,notnull"`
	PlayerID        string    `bun:"internal_id,notnull"`
	MatchedAt       time.Time `bun:"match_timestamp,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*FuzzyMatch)(nil)

func (m *FuzzyMatch) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func playerFromDomain(p rosterdomain.PlayerRecord) *Player {
	federation := p.Federation
	if federation == "" {
		federation = rosterdomain.Federation
	}
	return &Player{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Club:       p.Club,
		Gender:     string(p.Gender),
		District:   p.District,
		BirthYear:  p.BirthYear,
		AgeClass:   p.AgeClass,
		Region:     p.Region,
		Rating:     p.Rating,
		ClubNumber: p.ClubNumber,
		Federation: federation,
	}
}

func (p *Player) toDomain() rosterdomain.PlayerRecord {
	return rosterdomain.PlayerRecord{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Club:       p.Club,
		Gender:     rosterdomain.Gender(p.Gender),
		District:   p.District,
		BirthYear:  p.BirthYear,
		AgeClass:   p.AgeClass,
		Region:     p.Region,
		Rating:     p.Rating,
		ClubNumber: p.ClubNumber,
		Federation: p.Federation,
	}
}

func historyFromDomain(p rosterdomain.PlayerRecord, change rosterdomain.ChangeType, previous *rosterdomain.PlayerRecord) *PlayerHistory {
	row := playerFromDomain(p)
	h := &PlayerHistory{
		PlayerID:   row.ID,
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		Club:       row.Club,
		Gender:     row.Gender,
		District:   row.District,
		BirthYear:  row.BirthYear,
		AgeClass:   row.AgeClass,
		Region:     row.Region,
		Rating:     row.Rating,
		ClubNumber: row.ClubNumber,
		Federation: row.Federation,
		ChangeType: string(change),
	}
	if previous != nil {
		h.PreviousClub = previous.Club
		h.PreviousDistrict = previous.District
	}
	return h
}

func (h *PlayerHistory) toDomain() rosterdomain.HistoryEntry {
	return rosterdomain.HistoryEntry{
		ID: h.ID,
		Player: rosterdomain.PlayerRecord{
			ID:         h.PlayerID,
			FirstName:  h.FirstName,
			LastName:   h.LastName,
			Club:       h.Club,
			Gender:     rosterdomain.Gender(h.Gender),
			District:   h.District,
			BirthYear:  h.BirthYear,
			AgeClass:   h.AgeClass,
			Region:     h.Region,
			Rating:     h.Rating,
			ClubNumber: h.ClubNumber,
			Federation: h.Federation,
		},
		ChangeType:       rosterdomain.ChangeType(h.ChangeType),
		ChangedAt:        h.ChangedAt,
		PreviousClub:     h.PreviousClub,
		PreviousDistrict: h.PreviousDistrict,
	}
}

func fuzzyMatchFromDomain(m rosterdomain.FuzzyMatch) *FuzzyMatch {
	row := &FuzzyMatch{
		Tournament:      m.Tournament,
		TournamentFirst: m.TournamentFirst,
		TournamentLast:  m.TournamentLast,
		TournamentClub:  m.TournamentClub,
		DBFirst:         m.DBFirst,
		DBLast:          m.DBLast,
		DBClub:          m.DBClub,
		OldClub:         m.OldClub,
		CurrentClub:     m.CurrentClub,
		Strategy:        m.Strategy,
		PlayerID:        m.PlayerID,
		MatchedAt:       m.MatchedAt,
	}
	if id, err := uuid.Parse(m.ID); err == nil {
		row.ID = id
	}
	return row
}

func (m *FuzzyMatch) toDomain() rosterdomain.FuzzyMatch {
	return rosterdomain.FuzzyMatch{
		ID:              m.ID.String(),
		Tournament:      m.Tournament,
		TournamentFirst: m.TournamentFirst,
		TournamentLast:  m.TournamentLast,
		TournamentClub:  m.TournamentClub,
		DBFirst:         m.DBFirst,
		DBLast:          m.DBLast,
		DBClub:          m.DBClub,
		OldClub:         m.OldClub,
		CurrentClub:     m.CurrentClub,
		Strategy:        m.Strategy,
		PlayerID:        m.PlayerID,
		MatchedAt:       m.MatchedAt,
	}
}

func playersToDomain(rows []Player) []rosterdomain.PlayerRecord {
	out := make([]rosterdomain.PlayerRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}

func historyToDomain(rows []PlayerHistory) []rosterdomain.HistoryEntry {
	out := make([]rosterdomain.HistoryEntry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}
