package rankingdomain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
)

// maxPlacementBase is the placement points are counted down from.
const maxPlacementBase = 100

// Federation query parameter selection for a tournament's result pages.
const (
	FederationTTBW = "ttbw"
	FederationArge = "arge"
)

// Tournament is one configured ranking tournament.
type Tournament struct {
	Name       string
	ID         int
	Points     int
	Federation string
}

// Competition is one singles competition inside a tournament, e.g. "Jungen 13".
type Competition struct {
	ID   int
	Name string
}

// ResultFragment is one placement read from a results feed.
type ResultFragment struct {
	FirstName   string
	LastName    string
	Club        string
	ClubNumber  string
	Tournament  string
	Competition string
	Placement   int
}

// PlacementPoints scores one placement. A rating adds rating/1000 so equal
// placements are ordered by playing strength.
func PlacementPoints(placement, tournamentPoints int, rating *int) float64 {
	points := float64((maxPlacementBase - placement) * tournamentPoints)
	if rating != nil && *rating > 0 {
		points += float64(*rating) / 1000
	}
	return points
}

// Standing is a player's accumulated ranking state.
type Standing struct {
	Player rosterdomain.PlayerRecord
	Points float64
	// Results maps tournament name to competition name to placement.
	Results map[string]map[string]int
}

// TournamentCount is the number of distinct tournaments played.
func (s Standing) TournamentCount() int {
	return len(s.Results)
}

// ResultCell renders the placements in tournament as "3. Jungen 13", or "-".
func (s Standing) ResultCell(tournament string) string {
	competitions := s.Results[tournament]
	if len(competitions) == 0 {
		return "-"
	}
	names := make([]string, 0, len(competitions))
	for name := range competitions {
		names = append(names, name)
	}
	slices.Sort(names)

	cells := make([]string, len(names))
	for i, name := range names {
		cells[i] = fmt.Sprintf("%d. %s", competitions[name], name)
	}
	return strings.Join(cells, ", ")
}

// SortByPoints orders standings by points descending, then internal ID.
func SortByPoints(standings []Standing) {
	slices.SortFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.Player.ID, b.Player.ID)
	})
}

// SortByPointsThenName orders standings by points descending, then last and
// first name.
func SortByPointsThenName(standings []Standing) {
	slices.SortFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Player.LastName, b.Player.LastName); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Player.FirstName, b.Player.FirstName); c != 0 {
			return c
		}
		return cmp.Compare(a.Player.ID, b.Player.ID)
	})
}

var umlautReplacer = strings.NewReplacer(
	"ö", "oe", "ä", "ae", "ü", "ue", "ß", "ss",
	"Ö", "Oe", "Ä", "Ae", "Ü", "Ue",
)

// ReplaceUmlauts spells out German umlauts, keeping case.
func ReplaceUmlauts(s string) string {
	return umlautReplacer.Replace(s)
}

// ParticipantKey identifies an organizer participant list entry.
func ParticipantKey(first, last, clubNumber string) string {
	return ReplaceUmlauts(strings.TrimSpace(first) + strings.TrimSpace(last) + strings.TrimSpace(clubNumber))
}

// ParticipantIndex maps ParticipantKey to license ID.
type ParticipantIndex map[string]string

// Lookup finds the license ID for a result fragment.
func (p ParticipantIndex) Lookup(f ResultFragment) (string, bool) {
	if len(p) == 0 || f.ClubNumber == "" {
		return "", false
	}
	id, ok := p[ParticipantKey(f.FirstName, f.LastName, f.ClubNumber)]
	return id, ok
}

// Merge copies other into p. Existing keys are kept.
func (p ParticipantIndex) Merge(other ParticipantIndex) {
	for k, v := range other {
		if _, exists := p[k]; !exists {
			p[k] = v
		}
	}
}
