package rosterhandlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
)

const defaultFuzzyLimit = 100

type playerResponse struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Club       string `json:"club"`
	ClubNumber string `json:"club_number,omitempty"`
	Gender     string `json:"gender"`
	District   string `json:"district"`
	Region     int    `json:"region"`
	BirthYear  int    `json:"birth_year"`
	AgeClass   int    `json:"age_class"`
	Rating     *int   `json:"rating"`
}

func toPlayerResponse(p rosterdomain.PlayerRecord) playerResponse {
	return playerResponse{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Club:       p.Club,
		ClubNumber: p.ClubNumber,
		Gender:     string(p.Gender),
		District:   p.District,
		Region:     p.Region,
		BirthYear:  p.BirthYear,
		AgeClass:   p.AgeClass,
		Rating:     p.Rating,
	}
}

type historyResponse struct {
	ChangeType       string         `json:"change_type"`
	ChangedAt        time.Time      `json:"changed_at"`
	PreviousClub     string         `json:"previous_club,omitempty"`
	PreviousDistrict string         `json:"previous_district,omitempty"`
	Player           playerResponse `json:"player"`
}

type fuzzyMatchResponse struct {
	Tournament string    `json:"tournament"`
	MatchType  string    `json:"match_type"`
	Strategy   string    `json:"strategy"`
	PlayerID   string    `json:"player_id"`
	Feed       nameClub  `json:"feed"`
	Roster     nameClub  `json:"roster"`
	OldClub    string    `json:"old_club,omitempty"`
	MatchedAt  time.Time `json:"matched_at"`
}

type nameClub struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Club      string `json:"club"`
}

type statsResponse struct {
	CurrentPlayers          int  `json:"current_players"`
	HistoryRecords          int  `json:"history_records"`
	FuzzyMatches            int  `json:"fuzzy_matches"`
	OldestEligibleBirthYear *int `json:"oldest_eligible_birth_year"`
	Eligible                int  `json:"eligible"`
	TooOld                  int  `json:"too_old"`
}

type resolveRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Club       string `json:"club"`
	ClubNumber string `json:"club_number"`
	Tournament string `json:"tournament"`
}

type resolveResponse struct {
	Matched        bool            `json:"matched"`
	Classification string          `json:"classification"`
	Strategy       string          `json:"strategy,omitempty"`
	Fuzzy          bool            `json:"fuzzy"`
	Player         *playerResponse `json:"player,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleHealth reports liveness.
func (h *RosterHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RosterHandlers) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RosterHandlers.GetPlayer")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("player_id", id))

	player, err := h.service.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load player", "player_id", id, "error", err)
		http.Error(w, "failed to load player", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerResponse(*player))
}

func (h *RosterHandlers) HandlePlayerHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RosterHandlers.PlayerHistory")
	defer span.End()

	id := chi.URLParam(r, "id")
	entries, err := h.service.PlayerHistory(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load player history", "player_id", id, "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		http.Error(w, "no history for player", http.StatusNotFound)
		return
	}

	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyResponse{
			ChangeType:       string(e.ChangeType),
			ChangedAt:        e.ChangedAt,
			PreviousClub:     e.PreviousClub,
			PreviousDistrict: e.PreviousDistrict,
			Player:           toPlayerResponse(e.Player),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleFuzzyMatches lists recent non-exact resolutions. The optional
// "limit" query parameter defaults to 100.
func (h *RosterHandlers) HandleFuzzyMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RosterHandlers.FuzzyMatches")
	defer span.End()

	limit := defaultFuzzyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	matches, err := h.service.FuzzyMatches(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load fuzzy matches", "error", err)
		http.Error(w, "failed to load fuzzy matches", http.StatusInternalServerError)
		return
	}

	out := make([]fuzzyMatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, fuzzyMatchResponse{
			Tournament: m.Tournament,
			MatchType:  m.MatchType(),
			Strategy:   m.Strategy,
			PlayerID:   m.PlayerID,
			Feed:       nameClub{FirstName: m.TournamentFirst, LastName: m.TournamentLast, Club: m.TournamentClub},
			Roster:     nameClub{FirstName: m.DBFirst, LastName: m.DBLast, Club: m.DBClub},
			OldClub:    m.OldClub,
			MatchedAt:  m.MatchedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RosterHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RosterHandlers.Stats")
	defer span.End()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load stats", "error", err)
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		CurrentPlayers:          stats.CurrentPlayers,
		HistoryRecords:          stats.HistoryRecords,
		FuzzyMatches:            stats.FuzzyMatches,
		OldestEligibleBirthYear: stats.OldestEligibleBirthYear,
		Eligible:                stats.Eligible,
		TooOld:                  stats.TooOld,
	})
}

// HandleResolve runs the identity cascade for one posted fragment.
func (h *RosterHandlers) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RosterHandlers.Resolve")
	defer span.End()

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		http.Error(w, "first_name and last_name are required", http.StatusBadRequest)
		return
	}

	outcome, err := h.resolver.Resolve(ctx, identityservice.Query{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Club:       req.Club,
		ClubNumber: req.ClubNumber,
		Tournament: req.Tournament,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Resolve failed", "error", err)
		http.Error(w, "resolution failed", http.StatusInternalServerError)
		return
	}

	resp := resolveResponse{
		Matched:        outcome.Matched(),
		Classification: string(outcome.Classification),
		Strategy:       outcome.Strategy,
		Fuzzy:          outcome.Fuzzy,
	}
	if outcome.Player != nil {
		p := toPlayerResponse(*outcome.Player)
		resp.Player = &p
	}
	writeJSON(w, http.StatusOK, resp)
}
