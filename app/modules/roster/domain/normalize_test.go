package rosterdomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase and trim", input: "  Smith ", want: "smith"},
		{name: "inner whitespace", input: "Anna   Lena", want: "anna lena"},
		{name: "umlauts", input: "Jörg Müller-Bäß", want: "joerg mueller-baess"},
		{name: "uppercase umlaut", input: "Öztürk", want: "oeztuerk"},
		{name: "acute accent apostrophe", input: "D´Elia", want: "delia"},
		{name: "question mark apostrophe", input: "D?Elia", want: "delia"},
		{name: "straight apostrophe", input: "D'Elia", want: "delia"},
		{name: "plain", input: "Delia", want: "delia"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeUmlautRoundTrip(t *testing.T) {
	if Normalize("Löwe") != Normalize("Loewe") {
		t.Fatalf("expected Löwe and Loewe to normalize equally")
	}
	if Normalize("Löwe") == Normalize("Lowe") {
		t.Fatalf("expected Löwe and Lowe to stay distinct")
	}
}

func TestVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "alias pair", input: "Mark", want: []string{"mark", "marc"}},
		{name: "alias pair reverse", input: " Marc ", want: []string{"marc", "mark"}},
		{name: "apostrophe group", input: "D´Elia", want: []string{"d´elia", "d?elia", "d'elia", "delia"}},
		{name: "umlaut alias", input: "Löwe", want: []string{"löwe", "loewe"}},
		{name: "sharp s", input: "Kleiß", want: []string{"kleiß", "kleiss", "kleis"}},
		{name: "normalized only", input: "Müller", want: []string{"müller", "mueller"}},
		{name: "no alias", input: "Michael", want: []string{"michael"}},
		{name: "mike is not michael", input: "Mike", want: []string{"mike"}},
		{name: "empty", input: "", want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Variants(tt.input)); diff != "" {
				t.Fatalf("Variants(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestAliasesExcludesInput(t *testing.T) {
	for _, alias := range Aliases("Luis") {
		if alias == "luis" {
			t.Fatalf("Aliases must not contain the input itself")
		}
	}
	if got := Aliases("Nobody"); len(got) != 0 {
		t.Fatalf("expected no aliases, got %v", got)
	}
}
