package identityservice

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
)

// Strategy names, in cascade order.
const (
	StrategyExact                 = "exact"
	StrategyClubNumber            = "club_number"
	StrategyLicenseID             = "license_id"
	StrategyNameOnly              = "name_only"
	StrategyFirstNameAlias        = "first_name_alias"
	StrategyLastNameAlias         = "last_name_alias"
	StrategyFirstNameAliasAnyClub = "first_name_alias_any_club"
	StrategyHistory               = "history"
	StrategyHistoryAlias          = "history_alias"

	// StrategyParticipantList marks matches taken from an organizer's participant list.
	StrategyParticipantList = "participant_list"
)

// licenseIDMinLength separates internal license IDs from short club numbers.
const licenseIDMinLength = 8

func (r *Resolver) defaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyExact, Resolve: r.exact},
		{Name: StrategyClubNumber, Resolve: r.byClubNumber},
		{Name: StrategyLicenseID, Resolve: r.byLicenseID},
		{Name: StrategyNameOnly, Resolve: r.byNameOnly},
		{Name: StrategyFirstNameAlias, Resolve: r.byFirstNameAlias},
		{Name: StrategyLastNameAlias, Resolve: r.byLastNameAlias},
		{Name: StrategyFirstNameAliasAnyClub, Resolve: r.byFirstNameAliasAnyClub},
		{Name: StrategyHistory, Resolve: r.byHistory},
		{Name: StrategyHistoryAlias, Resolve: r.byHistoryAlias},
	}
}

// eligible returns the age-eligible candidates ordered by internal ID.
func (r *Resolver) eligible(candidates []rosterdomain.PlayerRecord) []rosterdomain.PlayerRecord {
	out := make([]rosterdomain.PlayerRecord, 0, len(candidates))
	for _, c := range candidates {
		if r.ages.IsEligible(c.BirthYear) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b rosterdomain.PlayerRecord) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (r *Resolver) firstEligible(candidates []rosterdomain.PlayerRecord) (rosterdomain.PlayerRecord, bool) {
	eligible := r.eligible(candidates)
	if len(eligible) == 0 {
		return rosterdomain.PlayerRecord{}, false
	}
	return eligible[0], true
}

func sameClub(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (r *Resolver) exact(ctx context.Context, q Query) (*Match, error) {
	candidates, err := r.roster.FindByNameAndClub(ctx, q.FirstName, q.LastName, q.Club)
	if err != nil {
		return nil, err
	}
	if p, ok := r.firstEligible(candidates); ok {
		return &Match{Player: p}, nil
	}
	return nil, nil
}

func (r *Resolver) byClubNumber(ctx context.Context, q Query) (*Match, error) {
	if q.ClubNumber == "" {
		return nil, nil
	}
	candidates, err := r.roster.FindByNameAndClubNumber(ctx, q.FirstName, q.LastName, q.ClubNumber)
	if err != nil {
		return nil, err
	}
	if p, ok := r.firstEligible(candidates); ok {
		return &Match{Player: p}, nil
	}
	return nil, nil
}

func (r *Resolver) byLicenseID(ctx context.Context, q Query) (*Match, error) {
	if utf8.RuneCountInString(q.ClubNumber) < licenseIDMinLength {
		return nil, nil
	}
	p, err := r.roster.GetPlayer(ctx, q.ClubNumber)
	if err != nil {
		return nil, err
	}
	if p == nil || !r.ages.IsEligible(p.BirthYear) {
		return nil, nil
	}
	return &Match{Player: *p, Fuzzy: true}, nil
}

// byNameOnly ignores the club. It is audited only when the roster club
// differs from the reported one.
func (r *Resolver) byNameOnly(ctx context.Context, q Query) (*Match, error) {
	candidates, err := r.roster.FindByName(ctx, q.FirstName, q.LastName)
	if err != nil {
		return nil, err
	}
	p, ok := r.firstEligible(candidates)
	if !ok {
		return nil, nil
	}
	return &Match{Player: p, Fuzzy: !sameClub(p.Club, q.Club)}, nil
}

func (r *Resolver) byFirstNameAlias(ctx context.Context, q Query) (*Match, error) {
	for _, alias := range rosterdomain.Aliases(q.FirstName) {
		candidates, err := r.roster.FindByNameAndClub(ctx, alias, q.LastName, q.Club)
		if err != nil {
			return nil, err
		}
		if p, ok := r.firstEligible(candidates); ok {
			return &Match{Player: p, Fuzzy: true}, nil
		}
	}
	return nil, nil
}

func (r *Resolver) byLastNameAlias(ctx context.Context, q Query) (*Match, error) {
	for _, alias := range rosterdomain.Aliases(q.LastName) {
		candidates, err := r.roster.FindByNameAndClub(ctx, q.FirstName, alias, q.Club)
		if err != nil {
			return nil, err
		}
		if p, ok := r.firstEligible(candidates); ok {
			return &Match{Player: p, Fuzzy: true}, nil
		}
	}
	return nil, nil
}

// byFirstNameAliasAnyClub only accepts an unambiguous hit.
func (r *Resolver) byFirstNameAliasAnyClub(ctx context.Context, q Query) (*Match, error) {
	for _, alias := range rosterdomain.Aliases(q.FirstName) {
		candidates, err := r.roster.FindByName(ctx, alias, q.LastName)
		if err != nil {
			return nil, err
		}
		if eligible := r.eligible(candidates); len(eligible) == 1 {
			return &Match{Player: eligible[0], Fuzzy: true}, nil
		}
	}
	return nil, nil
}

func (r *Resolver) byHistory(ctx context.Context, q Query) (*Match, error) {
	return r.historyMatch(ctx, q.FirstName, q.LastName, q.Club)
}

func (r *Resolver) byHistoryAlias(ctx context.Context, q Query) (*Match, error) {
	for _, alias := range rosterdomain.Aliases(q.FirstName) {
		m, err := r.historyMatch(ctx, alias, q.LastName, q.Club)
		if err != nil || m != nil {
			return m, err
		}
	}
	return nil, nil
}

// historyMatch follows the newest matching snapshot to the player's current record.
func (r *Resolver) historyMatch(ctx context.Context, first, last, club string) (*Match, error) {
	entry, err := r.history.FindLatestHistory(ctx, first, last, club)
	if err != nil || entry == nil {
		return nil, err
	}
	p, err := r.roster.GetPlayer(ctx, entry.Player.ID)
	if err != nil || p == nil {
		return nil, err
	}
	if !r.ages.IsEligible(p.BirthYear) {
		return nil, nil
	}
	return &Match{
		Player:      *p,
		Fuzzy:       true,
		OldClub:     entry.Player.Club,
		CurrentClub: p.Club,
	}, nil
}
