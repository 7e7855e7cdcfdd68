package reportservice

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rankingservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
)

func newCSVWriter(w io.Writer, delimiter rune) *csv.Writer {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	return cw
}

func ratingCell(rating *int) string {
	if rating == nil || *rating == 0 {
		return "?"
	}
	return strconv.Itoa(*rating)
}

// regionHeader lists the fixed columns followed by one column per tournament.
func regionHeader(acc *rankingservice.Accumulator) []string {
	header := []string{"Altersklasse", "Nachname", "Vorname", "Verein", "Jahrgang", "Bezirk"}
	for _, t := range acc.Tournaments() {
		header = append(header, t.Name)
	}
	return append(header, "QTTR")
}

// regionRows returns the rows of one region, competition by competition.
func regionRows(acc *rankingservice.Accumulator, region int) [][]string {
	var rows [][]string
	tournaments := acc.Tournaments()
	for _, competition := range acc.Competitions(region) {
		for _, s := range acc.RegionStandings(region, competition) {
			p := s.Player
			row := []string{competition, p.LastName, p.FirstName, p.Club, strconv.Itoa(p.BirthYear), p.District}
			for _, t := range tournaments {
				row = append(row, s.ResultCell(t.Name))
			}
			rows = append(rows, append(row, ratingCell(p.Rating)))
		}
	}
	return rows
}

// WriteRegion writes the ranking list of one region.
func WriteRegion(w io.Writer, delimiter rune, acc *rankingservice.Accumulator, region int) error {
	cw := newCSVWriter(w, delimiter)
	if err := cw.Write(regionHeader(acc)); err != nil {
		return err
	}
	if err := cw.WriteAll(regionRows(acc, region)); err != nil {
		return fmt.Errorf("failed to write region %d: %w", region, err)
	}
	return nil
}

func sortedRoster(players []rosterdomain.PlayerRecord) []rosterdomain.PlayerRecord {
	sorted := slices.Clone(players)
	slices.SortFunc(sorted, func(a, b rosterdomain.PlayerRecord) int {
		if a.Region != b.Region {
			return a.Region - b.Region
		}
		if c := strings.Compare(a.LastName, b.LastName); c != 0 {
			return c
		}
		if c := strings.Compare(a.FirstName, b.FirstName); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

// WriteAllPlayers lists every roster player with tournament count and points.
// Age classes of players too old for the season carry a "*".
func WriteAllPlayers(w io.Writer, delimiter rune, acc *rankingservice.Accumulator, players []rosterdomain.PlayerRecord, ages rosterdomain.AgeClassTable) error {
	cw := newCSVWriter(w, delimiter)
	if err := cw.Write([]string{
		"Region", "Altersklasse", "Nachname", "Vorname", "Verein", "Jahrgang", "Bezirk",
		"Geschlecht", "QTTR", "Tournament_Count", "Total_Points",
	}); err != nil {
		return err
	}
	for _, p := range sortedRoster(players) {
		ageClass := strconv.Itoa(p.AgeClass)
		if !ages.IsEligible(p.BirthYear) {
			ageClass += "*"
		}
		var count int
		var points float64
		if s, ok := acc.Standing(p.ID); ok {
			count, points = s.TournamentCount(), s.Points
		}
		if err := cw.Write([]string{
			strconv.Itoa(p.Region), ageClass, p.LastName, p.FirstName, p.Club,
			strconv.Itoa(p.BirthYear), p.District, string(p.Gender), ratingCell(p.Rating),
			strconv.Itoa(count), fmt.Sprintf("%.2f", points),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUnmatchedPlayers lists roster players without any credited result.
// It returns the number of rows written.
func WriteUnmatchedPlayers(w io.Writer, delimiter rune, acc *rankingservice.Accumulator, players []rosterdomain.PlayerRecord, ages rosterdomain.AgeClassTable) (int, error) {
	cw := newCSVWriter(w, delimiter)
	if err := cw.Write([]string{
		"Region", "Altersklasse", "Nachname", "Vorname", "Verein", "Jahrgang", "Bezirk",
		"Geschlecht", "QTTR", "Age_Eligible", "Reason",
	}); err != nil {
		return 0, err
	}
	written := 0
	for _, p := range sortedRoster(players) {
		if s, ok := acc.Standing(p.ID); ok && s.TournamentCount() > 0 {
			continue
		}
		eligible, reason := "Yes", "No tournament participation"
		if !ages.IsEligible(p.BirthYear) {
			eligible, reason = "No", "Too old for current age classes"
		}
		if err := cw.Write([]string{
			strconv.Itoa(p.Region), strconv.Itoa(p.AgeClass), p.LastName, p.FirstName, p.Club,
			strconv.Itoa(p.BirthYear), p.District, string(p.Gender), ratingCell(p.Rating),
			eligible, reason,
		}); err != nil {
			return written, err
		}
		written++
	}
	cw.Flush()
	return written, cw.Error()
}

// PossibleReasons explains why a result fragment found no roster player.
func PossibleReasons(u rankingservice.UnmatchedResult, players []rosterdomain.PlayerRecord, ages rosterdomain.AgeClassTable) []string {
	f := u.Fragment
	if u.Classification == identityservice.ClassClubOutOfScope {
		return []string{fmt.Sprintf("Club '%s' not in database - not part of considered regions", f.Club)}
	}

	for _, p := range sortedRoster(players) {
		if !strings.EqualFold(p.FirstName, f.FirstName) || !strings.EqualFold(p.LastName, f.LastName) {
			continue
		}
		var reasons []string
		if p.Club != f.Club {
			reasons = append(reasons, fmt.Sprintf("Club mismatch: DB has '%s' vs tournament '%s'", p.Club, f.Club))
		}
		if !ages.IsEligible(p.BirthYear) {
			reasons = append(reasons, "Player too old for current age classes")
		}
		return reasons
	}
	return []string{"Player not found in database"}
}

// WriteTournamentUnmatched lists the result fragments that found no player.
func WriteTournamentUnmatched(w io.Writer, delimiter rune, unmatched []rankingservice.UnmatchedResult, players []rosterdomain.PlayerRecord, ages rosterdomain.AgeClassTable) error {
	cw := newCSVWriter(w, delimiter)
	if err := cw.Write([]string{
		"Tournament", "Competition", "Position", "First_Name", "Last_Name",
		"Club", "Club_Number", "Possible_Reasons",
	}); err != nil {
		return err
	}
	for _, u := range unmatched {
		reasons := "Unknown"
		if r := PossibleReasons(u, players, ages); len(r) > 0 {
			reasons = strings.Join(r, "; ")
		}
		f := u.Fragment
		if err := cw.Write([]string{
			f.Tournament, f.Competition, strconv.Itoa(f.Placement), f.FirstName, f.LastName,
			f.Club, f.ClubNumber, reasons,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFuzzyMatches lists the audited non-exact resolutions.
func WriteFuzzyMatches(w io.Writer, delimiter rune, matches []rosterdomain.FuzzyMatch) error {
	cw := newCSVWriter(w, delimiter)
	if err := cw.Write([]string{
		"Tournament", "Tournament_First_Name", "Tournament_Last_Name", "Tournament_Club",
		"DB_First_Name", "DB_Last_Name", "DB_Club", "Old_Club", "Current_Club", "Match_Type",
	}); err != nil {
		return err
	}
	for _, m := range matches {
		if err := cw.Write([]string{
			m.Tournament, m.TournamentFirst, m.TournamentLast, m.TournamentClub,
			m.DBFirst, m.DBLast, m.DBClub, m.OldClub, m.CurrentClub, m.MatchType(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHistory exports history snapshots in the order given.
func WriteHistory(w io.Writer, delimiter rune, entries []rosterdomain.HistoryEntry) error {
	cw := newCSVWriter(w, delimiter)
	if err := cw.Write([]string{
		"internal_id", "first_name", "last_name", "club", "gender", "district",
		"birth_year", "age_class", "region", "qttr", "club_number", "federation",
		"change_type", "previous_club", "previous_district", "changed_at",
	}); err != nil {
		return err
	}
	for _, e := range entries {
		p := e.Player
		rating := ""
		if p.Rating != nil {
			rating = strconv.Itoa(*p.Rating)
		}
		if err := cw.Write([]string{
			p.ID, p.FirstName, p.LastName, p.Club, string(p.Gender), p.District,
			strconv.Itoa(p.BirthYear), strconv.Itoa(p.AgeClass), strconv.Itoa(p.Region), rating,
			p.ClubNumber, p.Federation, string(e.ChangeType), e.PreviousClub, e.PreviousDistrict,
			e.ChangedAt.Format(time.DateTime),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStatistics writes the ranking summary as metric/value pairs.
func WriteStatistics(w io.Writer, delimiter rune, stats rankingservice.Statistics, unmatched, skipped int) error {
	cw := newCSVWriter(w, delimiter)
	rows := [][]string{
		{"Metric", "Value"},
		{"Total_Players", strconv.Itoa(stats.TotalPlayers)},
		{"Total_Points", fmt.Sprintf("%.2f", stats.TotalPoints)},
		{"Average_Points", fmt.Sprintf("%.2f", stats.AveragePoints)},
		{"Unmatched_Results", strconv.Itoa(unmatched)},
		{"Skipped_Results", strconv.Itoa(skipped)},
	}
	for _, region := range sortedKeys(stats.ByRegion) {
		rows = append(rows, []string{fmt.Sprintf("Region_%d", region), strconv.Itoa(stats.ByRegion[region])})
	}
	for _, class := range sortedKeys(stats.ByAgeClass) {
		rows = append(rows, []string{fmt.Sprintf("Age_Class_%d", class), strconv.Itoa(stats.ByAgeClass[class])})
	}
	for _, gender := range sortedKeys(stats.ByGender) {
		rows = append(rows, []string{"Gender_" + string(gender), strconv.Itoa(stats.ByGender[gender])})
	}
	return cw.WriteAll(rows)
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
