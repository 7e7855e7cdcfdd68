package rosterdomain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBirthYear(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "03.07.2012", want: 2012},
		{raw: "2011", want: 2011},
		{raw: " 2013 ", want: 2013},
		{raw: "", wantErr: true},
		{raw: "unknown", wantErr: true},
		{raw: "12.05.", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseBirthYear(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidBirthDate) {
				t.Errorf("ParseBirthYear(%q) error = %v, want ErrInvalidBirthDate", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseBirthYear(%q) = (%d, %v), want %d", tt.raw, got, err, tt.want)
		}
	}
}

func TestGenderFromSalutation(t *testing.T) {
	if GenderFromSalutation("Herr") != GenderBoys {
		t.Errorf("Herr should map to %s", GenderBoys)
	}
	if GenderFromSalutation("Frau") != GenderGirls {
		t.Errorf("Frau should map to %s", GenderGirls)
	}
	if GenderFromSalutation("") != GenderGirls {
		t.Errorf("missing salutation should map to %s", GenderGirls)
	}
}

func TestPlayerRecordChanges(t *testing.T) {
	rating := 1450
	base := PlayerRecord{
		ID: "NU100", FirstName: "Lena", LastName: "Koch", Club: "TTC Ulm",
		Gender: GenderGirls, District: "Ulm", BirthYear: 2012, AgeClass: 13, Region: 2,
	}

	if got := base.Changes(base); len(got) != 0 {
		t.Fatalf("identical records reported changes: %v", got)
	}

	next := base
	next.Club = "SV Donau"
	next.Rating = &rating
	if diff := cmp.Diff([]string{"club", "rating"}, base.Changes(next)); diff != "" {
		t.Fatalf("Changes mismatch (-want +got):\n%s", diff)
	}

	same := rating
	withRating := base
	withRating.Rating = &rating
	other := base
	other.Rating = &same
	if got := withRating.Changes(other); len(got) != 0 {
		t.Fatalf("equal ratings behind different pointers reported changes: %v", got)
	}
}

func TestFuzzyMatchType(t *testing.T) {
	tests := []struct {
		match FuzzyMatch
		want  string
	}{
		{FuzzyMatch{TournamentFirst: "Mark", DBFirst: "Marc", TournamentLast: "Miller", DBLast: "Miller"}, "First Name Variant"},
		{FuzzyMatch{TournamentFirst: "Anna", DBFirst: "Anna", TournamentLast: "Kleiss", DBLast: "Kleiß"}, "Last Name Variant"},
		{FuzzyMatch{TournamentFirst: "Anna", DBFirst: "Anna", TournamentLast: "Koch", DBLast: "Koch"}, "Name Variant"},
	}
	for _, tt := range tests {
		if got := tt.match.MatchType(); got != tt.want {
			t.Errorf("MatchType() = %q, want %q", got, tt.want)
		}
	}
}

func TestCompetitionKey(t *testing.T) {
	p := PlayerRecord{Gender: GenderBoys, AgeClass: 15}
	if got := p.CompetitionKey(); got != "Jungen 15" {
		t.Fatalf("CompetitionKey() = %q", got)
	}
}
