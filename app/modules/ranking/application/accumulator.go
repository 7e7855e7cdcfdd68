package rankingservice

import (
	"errors"
	"fmt"
	"slices"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
)

var (
	ErrUnknownTournament = errors.New("tournament not configured")
	ErrInvalidPlacement  = errors.New("placement must be positive")
)

// UnmatchedResult is a result fragment the resolver could not attribute.
type UnmatchedResult struct {
	Fragment       rankingdomain.ResultFragment
	Classification identityservice.Classification
}

// Filter narrows a ranking. Zero values match everything.
type Filter struct {
	Region   int
	AgeClass int
	Gender   rosterdomain.Gender
}

func (f Filter) match(p rosterdomain.PlayerRecord) bool {
	return (f.Region == 0 || p.Region == f.Region) &&
		(f.AgeClass == 0 || p.AgeClass == f.AgeClass) &&
		(f.Gender == "" || p.Gender == f.Gender)
}

// Statistics summarizes the accumulated standings.
type Statistics struct {
	TotalPlayers  int
	TotalPoints   float64
	AveragePoints float64
	ByRegion      map[int]int
	ByAgeClass    map[int]int
	ByGender      map[rosterdomain.Gender]int
}

// Accumulator collects placements into per-player standings grouped by
// region and competition key. It is not safe for concurrent use; resolve in
// parallel and add in order.
type Accumulator struct {
	ages        rosterdomain.AgeClassTable
	tournaments map[string]rankingdomain.Tournament
	order       []string
	standings   map[string]*rankingdomain.Standing
	// regions maps region to competition key to member IDs.
	regions   map[int]map[string]map[string]struct{}
	unmatched []UnmatchedResult
	skipped   int
}

// NewAccumulator prepares empty groups for every region so that regions
// without results still produce a report.
func NewAccumulator(ages rosterdomain.AgeClassTable, tournaments []rankingdomain.Tournament, regions []int) *Accumulator {
	a := &Accumulator{
		ages:        ages,
		tournaments: make(map[string]rankingdomain.Tournament, len(tournaments)),
		standings:   make(map[string]*rankingdomain.Standing),
		regions:     make(map[int]map[string]map[string]struct{}, len(regions)),
	}
	for _, t := range tournaments {
		if _, dup := a.tournaments[t.Name]; !dup {
			a.order = append(a.order, t.Name)
		}
		a.tournaments[t.Name] = t
	}
	for _, r := range regions {
		a.regions[r] = make(map[string]map[string]struct{})
	}
	return a
}

// Add credits player with a placement. It returns false without error when
// the player is too old for the season.
func (a *Accumulator) Add(player rosterdomain.PlayerRecord, tournament, competition string, placement int) (bool, error) {
	t, ok := a.tournaments[tournament]
	if !ok {
		return false, fmt.Errorf("rankingservice.Add: %w: %q", ErrUnknownTournament, tournament)
	}
	if placement < 1 {
		return false, fmt.Errorf("rankingservice.Add: %w: %d", ErrInvalidPlacement, placement)
	}
	if !a.ages.IsEligible(player.BirthYear) {
		a.skipped++
		return false, nil
	}

	s, ok := a.standings[player.ID]
	if !ok {
		s = &rankingdomain.Standing{Player: player, Results: make(map[string]map[string]int)}
		a.standings[player.ID] = s
	}
	s.Points += rankingdomain.PlacementPoints(placement, t.Points, player.Rating)
	if s.Results[tournament] == nil {
		s.Results[tournament] = make(map[string]int)
	}
	s.Results[tournament][competition] = placement

	key := player.CompetitionKey()
	if a.regions[player.Region] == nil {
		a.regions[player.Region] = make(map[string]map[string]struct{})
	}
	if a.regions[player.Region][key] == nil {
		a.regions[player.Region][key] = make(map[string]struct{})
	}
	a.regions[player.Region][key][player.ID] = struct{}{}
	return true, nil
}

// AddUnmatched keeps a fragment the resolver could not attribute.
func (a *Accumulator) AddUnmatched(f rankingdomain.ResultFragment, class identityservice.Classification) {
	a.unmatched = append(a.unmatched, UnmatchedResult{Fragment: f, Classification: class})
}

// Tournaments returns the configured tournaments in configuration order.
func (a *Accumulator) Tournaments() []rankingdomain.Tournament {
	out := make([]rankingdomain.Tournament, len(a.order))
	for i, name := range a.order {
		out[i] = a.tournaments[name]
	}
	return out
}

// Regions lists the known regions in ascending order.
func (a *Accumulator) Regions() []int {
	out := make([]int, 0, len(a.regions))
	for r := range a.regions {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Competitions lists the competition keys of region in ascending order.
func (a *Accumulator) Competitions(region int) []string {
	out := make([]string, 0, len(a.regions[region]))
	for key := range a.regions[region] {
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}

// RegionStandings returns the members of one region competition ordered by
// points, then internal ID.
func (a *Accumulator) RegionStandings(region int, competition string) []rankingdomain.Standing {
	members := a.regions[region][competition]
	out := make([]rankingdomain.Standing, 0, len(members))
	for id := range members {
		out = append(out, *a.standings[id])
	}
	rankingdomain.SortByPoints(out)
	return out
}

// Standing returns the accumulated state of one player.
func (a *Accumulator) Standing(id string) (rankingdomain.Standing, bool) {
	s, ok := a.standings[id]
	if !ok {
		return rankingdomain.Standing{}, false
	}
	return *s, true
}

// Ranking returns the standings matching filter ordered by points, then name.
func (a *Accumulator) Ranking(filter Filter) []rankingdomain.Standing {
	var out []rankingdomain.Standing
	for _, s := range a.standings {
		if filter.match(s.Player) {
			out = append(out, *s)
		}
	}
	rankingdomain.SortByPointsThenName(out)
	return out
}

// Top returns at most limit entries of Ranking(filter).
func (a *Accumulator) Top(limit int, filter Filter) []rankingdomain.Standing {
	ranking := a.Ranking(filter)
	if limit >= 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

// Unmatched returns the unattributed fragments in the order they were added.
func (a *Accumulator) Unmatched() []UnmatchedResult {
	return slices.Clone(a.unmatched)
}

// Skipped counts results of matched players that were too old.
func (a *Accumulator) Skipped() int {
	return a.skipped
}

// Statistics aggregates the standings.
func (a *Accumulator) Statistics() Statistics {
	stats := Statistics{
		ByRegion:   make(map[int]int),
		ByAgeClass: make(map[int]int),
		ByGender:   make(map[rosterdomain.Gender]int),
	}
	for _, s := range a.standings {
		stats.TotalPlayers++
		stats.TotalPoints += s.Points
		stats.ByRegion[s.Player.Region]++
		stats.ByAgeClass[s.Player.AgeClass]++
		stats.ByGender[s.Player.Gender]++
	}
	if stats.TotalPlayers > 0 {
		stats.AveragePoints = stats.TotalPoints / float64(stats.TotalPlayers)
	}
	return stats
}
