package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	identityservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/identity/application"
	rankingservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/application"
	rankingdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/ranking/domain"
	rosterservice "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/application"
	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printImportResult(w io.Writer, r *rosterservice.ImportResult) {
	fmt.Fprintf(w, "rows: %d  inserted: %d  updated: %d  unchanged: %d  skipped: %d\n",
		r.Rows, r.Inserted, r.Updated, r.Unchanged, r.SkippedTotal())

	reasons := make([]string, 0, len(r.Skipped))
	for reason := range r.Skipped {
		reasons = append(reasons, string(reason))
	}
	slices.Sort(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  skipped %s: %d\n", reason, r.Skipped[rosterservice.SkipReason(reason)])
	}
	if r.UnknownDistricts > 0 {
		fmt.Fprintf(w, "unknown districts: %d\n", r.UnknownDistricts)
	}
	if r.DuplicatesRemoved > 0 {
		fmt.Fprintf(w, "duplicate history entries removed: %d\n", r.DuplicatesRemoved)
	}
}

func printOutcome(w io.Writer, o identityservice.Outcome) {
	if !o.Matched() {
		fmt.Fprintf(w, "no match (%s)\n", o.Classification)
		return
	}
	fuzzy := ""
	if o.Fuzzy {
		fuzzy = ", fuzzy"
	}
	p := o.Player
	fmt.Fprintf(w, "%s %s %s (%s), %s, born %d, region %d [%s%s]\n",
		p.ID, p.FirstName, p.LastName, p.Club, p.CompetitionKey(), p.BirthYear, p.Region, o.Strategy, fuzzy)
}

func printSummary(w io.Writer, s rankingservice.Summary) {
	fmt.Fprintf(w, "results: %d  matched: %d  unmatched: %d  not credited: %d\n",
		s.Fragments, s.Matched, s.Unmatched, s.Skipped)
}

func printStandings(w io.Writer, standings []rankingdomain.Standing) {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tName\tClub\tCompetition\tRegion\tTournaments\tPoints")
	for i, s := range standings {
		fmt.Fprintf(tw, "%d\t%s %s\t%s\t%s\t%d\t%d\t%.2f\n",
			i+1, s.Player.FirstName, s.Player.LastName, s.Player.Club,
			s.Player.CompetitionKey(), s.Player.Region, s.TournamentCount(), s.Points)
	}
	tw.Flush()
}

func printHistory(w io.Writer, entries []rosterdomain.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no history entries")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "Changed\tType\tID\tName\tClub\tDistrict\tPrevious")
	for _, e := range entries {
		var previous []string
		if e.PreviousClub != "" {
			previous = append(previous, "club: "+e.PreviousClub)
		}
		if e.PreviousDistrict != "" {
			previous = append(previous, "district: "+e.PreviousDistrict)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%s\t%s\n",
			e.ChangedAt.Format(time.DateTime), e.ChangeType, e.Player.ID,
			e.Player.FirstName, e.Player.LastName, e.Player.Club, e.Player.District,
			strings.Join(previous, ", "))
	}
	tw.Flush()
}

func printHistoryStats(w io.Writer, s *rosterdb.HistoryStats) {
	fmt.Fprintf(w, "history records: %d\n", s.TotalRecords)
	types := make([]string, 0, len(s.ChangesByType))
	for t := range s.ChangesByType {
		types = append(types, t)
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %s: %d\n", t, s.ChangesByType[t])
	}
	fmt.Fprintf(w, "changes in the last 30 days: %d\n", s.RecentActivity)
	printCounts(w, "most active clubs", s.MostActiveClubs)
	printCounts(w, "most active districts", s.MostActiveDistricts)
}

func printCounts(w io.Writer, title string, counts []rosterdb.NameCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintln(w, title+":")
	for _, c := range counts {
		fmt.Fprintf(w, "  %s: %d\n", c.Name, c.Count)
	}
}

func printStats(w io.Writer, s *rosterdb.Stats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "current players\t%d\n", s.CurrentPlayers)
	fmt.Fprintf(tw, "history records\t%d\n", s.HistoryRecords)
	fmt.Fprintf(tw, "fuzzy matches\t%d\n", s.FuzzyMatches)
	if s.OldestEligibleBirthYear != nil {
		fmt.Fprintf(tw, "oldest eligible birth year\t%d\n", *s.OldestEligibleBirthYear)
		fmt.Fprintf(tw, "eligible\t%d\n", s.Eligible)
		fmt.Fprintf(tw, "too old\t%d\n", s.TooOld)
	}
	tw.Flush()
}
