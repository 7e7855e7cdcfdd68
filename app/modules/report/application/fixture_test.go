package reportservice

import (
	"testing"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rankingservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application"
	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/stretchr/testify/require"
)

func testAges() rosterdomain.AgeClassTable {
	return rosterdomain.NewAgeClassTable(map[int]int{2011: 15, 2012: 15, 2013: 13, 2014: 13, 2015: 11}, 2013)
}

func intPtr(v int) *int { return &v }

func player(id, first, last string, region, birthYear int, gender rosterdomain.Gender, rating *int) rosterdomain.PlayerRecord {
	return rosterdomain.PlayerRecord{
		ID:         id,
		FirstName:  first,
		LastName:   last,
		Club:       "TTC Alpha",
		Gender:     gender,
		District:   "Ulm",
		BirthYear:  birthYear,
		AgeClass:   testAges().AgeClassFor(birthYear),
		Region:     region,
		Rating:     rating,
		ClubNumber: "1001",
		Federation: rosterdomain.Federation,
	}
}

type fixture struct {
	acc     *rankingservice.Accumulator
	players []rosterdomain.PlayerRecord
}

// newFixture credits two region 1 players; region 2 has one player who is
// too old and one without results.
func newFixture(t *testing.T) fixture {
	t.Helper()
	players := []rosterdomain.PlayerRecord{
		player("NU1", "Max", "Muster", 1, 2013, rosterdomain.GenderBoys, intPtr(1200)),
		player("NU2", "Lena", "Berg", 1, 2014, rosterdomain.GenderGirls, nil),
		player("NU3", "Otto", "Alt", 2, 2008, rosterdomain.GenderBoys, nil),
		player("NU4", "Tim", "Klein", 2, 2012, rosterdomain.GenderBoys, nil),
	}
	acc := rankingservice.NewAccumulator(testAges(), []rankingdomain.Tournament{
		{Name: "Top 24", ID: 100, Points: 10},
		{Name: "Bezirksrangliste", ID: 200, Points: 5},
	}, []int{1, 2})

	credit := func(p rosterdomain.PlayerRecord, tournament, competition string, placement int) {
		_, err := acc.Add(p, tournament, competition, placement)
		require.NoError(t, err)
	}
	credit(players[0], "Top 24", "Jungen 13", 2)
	credit(players[0], "Bezirksrangliste", "Jungen 13", 1)
	credit(players[1], "Top 24", "Mädchen 13", 1)
	credit(players[2], "Top 24", "Jungen 15", 4)

	acc.AddUnmatched(rankingdomain.ResultFragment{
		FirstName: "Erik", LastName: "Fremd", Club: "SV Irgendwo", ClubNumber: "7777",
		Tournament: "Top 24", Competition: "Jungen 13", Placement: 3,
	}, identityservice.ClassClubOutOfScope)
	acc.AddUnmatched(rankingdomain.ResultFragment{
		FirstName: "otto", LastName: "ALT", Club: "TTC Beta",
		Tournament: "Top 24", Competition: "Jungen 15", Placement: 5,
	}, identityservice.ClassUnmatchedInScope)
	acc.AddUnmatched(rankingdomain.ResultFragment{
		FirstName: "Nie", LastName: "Mand", Club: "TTC Alpha",
		Tournament: "Bezirksrangliste", Competition: "Jungen 13", Placement: 2,
	}, identityservice.ClassUnmatchedInScope)

	return fixture{acc: acc, players: players}
}
