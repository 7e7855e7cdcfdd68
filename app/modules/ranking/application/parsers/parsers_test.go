package parsers

import (
	"testing"

	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const resultsPage = `<html><body>
<table class="result-set">
  <tr><th>Platz</th><th>Name</th><th>Verein</th></tr>
  <tr><td>1 </td>
      <td>
        Muster, Max
      </td>
      <td>
        TTC Alpha (1234)
      </td></tr>
  <tr><td>2 </td><td>Weber, Mark</td><td>SV Beta 1920 e.V. (2345)</td></tr>
  <tr><td>3 </td><td>Ohne Komma</td><td>TTC Gamma (3456)</td></tr>
  <tr><td>x</td><td>Kurz, Lena</td><td>TTC Delta (4567)</td></tr>
  <tr><td>4 </td><td>D´Elia, Luca</td><td>TSV Epsilon</td></tr>
</table>
</body></html>`

func TestParseResultsPage(t *testing.T) {
	fragments, err := ParseResultsPage([]byte(resultsPage), "Top 24", "Jungen 13")
	require.NoError(t, err)
	require.Len(t, fragments, 3)

	assert.Equal(t, rankingdomain.ResultFragment{
		FirstName: "Max", LastName: "Muster", Club: "TTC Alpha", ClubNumber: "1234",
		Tournament: "Top 24", Competition: "Jungen 13", Placement: 1,
	}, fragments[0])
	assert.Equal(t, "SV Beta 1920 e.V.", fragments[1].Club)
	assert.Equal(t, "2345", fragments[1].ClubNumber)
	assert.Equal(t, "D´Elia", fragments[2].LastName)
	assert.Equal(t, "TSV Epsilon", fragments[2].Club)
	assert.Empty(t, fragments[2].ClubNumber)
	assert.Equal(t, 4, fragments[2].Placement)
}

const competitionIndex = `<html><body><table>
<tr><td><b>Jungen 13 Einzel</b></td><td> ja</td><td><a href="/turnier?federation=TTBW&amp;competition=712">Teilnehmer</a></td></tr>
<tr><td><b>Mädchen 15 Einzel</b></td><td> ja</td><td><a href="/turnier?competition=705">Teilnehmer</a></td></tr>
<tr><td><b>Jungen 15 Doppel</b></td><td> ja</td><td><a href="/turnier?competition=720">Teilnehmer</a></td></tr>
<tr><td><b>Jungen 11 Einzel</b></td><td> nein</td><td><a href="/turnier?competition=730">Teilnehmer</a></td></tr>
<tr><td><b>Jungen 19 Einzel</b></td><td> ja</td><td><a href="/turnier?competition=740">Ergebnisse</a></td></tr>
</table></body></html>`

func TestParseCompetitionIndex(t *testing.T) {
	competitions, err := ParseCompetitionIndex([]byte(competitionIndex))
	require.NoError(t, err)
	assert.Equal(t, []rankingdomain.Competition{
		{ID: 705, Name: "Mädchen 15"},
		{ID: 712, Name: "Jungen 13"},
	}, competitions)
}

func TestParseParticipants(t *testing.T) {
	xmlDoc := `<?xml version="1.0" encoding="UTF-8"?>
<tournament>
  <competition>
    <players>
      <player><person licence-nr="123456" lastname="Weiß" club-name="TTC Alpha" sex="1" firstname="Jürgen" birthyear="2012" club-nr="1234"/></player>
      <player><person licence-nr="" lastname="Ohne" club-name="TTC Alpha" firstname="Lizenz" club-nr="1234"/></player>
      <player><person licence-nr="654321" lastname="Muster" club-name="TTC Beta" firstname="Max" club-nr="2345"/></player>
    </players>
  </competition>
</tournament>`

	index, err := ParseParticipants([]byte(xmlDoc))
	require.NoError(t, err)
	assert.Len(t, index, 2)

	id, ok := index.Lookup(rankingdomain.ResultFragment{FirstName: "Jürgen", LastName: "Weiß", ClubNumber: "1234"})
	assert.True(t, ok)
	assert.Equal(t, "123456", id)
	assert.Equal(t, "654321", index["MaxMuster2345"])
}

func TestParseParticipants_Latin1(t *testing.T) {
	raw := `<?xml version="1.0" encoding="ISO-8859-1"?><persons><person licence-nr="1" lastname="Löwe" firstname="Paul" club-nr="9"/></persons>`
	encoded, err := charmap.ISO8859_1.NewEncoder().String(raw)
	require.NoError(t, err)

	index, err := ParseParticipants([]byte(encoded))
	require.NoError(t, err)
	assert.Equal(t, "1", index["PaulLoewe9"])
}

func TestParseParticipants_Malformed(t *testing.T) {
	_, err := ParseParticipants([]byte(`<persons><person licence-nr="1"`))
	assert.Error(t, err)
}

func TestParseResultsCSV(t *testing.T) {
	data := "\ufeffTournament;Competition;Position;Nachname;Vorname;Verein;VereinNr\n" +
		"Top 24;Jungen 13;1;Muster;Max;TTC Alpha;1234\n" +
		"Top 24;Jungen 13;2.;Weber;Mark;SV Beta;\n" +
		"Top 24;Jungen 13;;Kurz;Lena;TTC Delta;4567\n" +
		"Top 24;Jungen 13;5;;Anna;TTC Delta;4567\n"

	parsed, err := ParseResultsCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, parsed.Fragments, 2)
	assert.Equal(t, 2, parsed.Skipped)
	assert.Equal(t, 2, parsed.Fragments[1].Placement)
	assert.Equal(t, "Mark", parsed.Fragments[1].FirstName)
	assert.Empty(t, parsed.Fragments[1].ClubNumber)
}

func TestParseResultsCSV_MissingColumn(t *testing.T) {
	_, err := ParseResultsCSV([]byte("Tournament;Position\nTop;1\n"))
	assert.ErrorContains(t, err, "Competition")
}
