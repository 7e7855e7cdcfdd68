package rosterdomain

import "testing"

func TestDistrictTableLookup(t *testing.T) {
	table := NewDistrictTable([]District{
		{Name: "Stuttgart", Region: 5, ShortName: "ST"},
		{Name: "Hochschwarzwald", Region: 1, ShortName: "HS"},
		{Name: "Ulm", Region: 2, ShortName: "UL"},
		{Name: "Donau", Region: 3, ShortName: "DO"},
	})

	tests := []struct {
		input       string
		wantRegion  int
		wantMatched bool
	}{
		{input: "stuttgart", wantRegion: 5, wantMatched: true},
		{input: "Bezirk Ulm", wantRegion: 2, wantMatched: true},
		{input: "Donau-Iller", wantRegion: 3, wantMatched: true},
		{input: "Bodensee", wantRegion: 1, wantMatched: false},
		{input: "", wantRegion: 1, wantMatched: false},
	}

	for _, tt := range tests {
		d, matched := table.Lookup(tt.input)
		if d.Region != tt.wantRegion || matched != tt.wantMatched {
			t.Errorf("Lookup(%q) = (%d, %v), want (%d, %v)", tt.input, d.Region, matched, tt.wantRegion, tt.wantMatched)
		}
	}
}

func TestDistrictTableEmpty(t *testing.T) {
	d, matched := NewDistrictTable(nil).Lookup("Ulm")
	if matched || d.Region != DefaultRegion {
		t.Fatalf("empty table should fall back to DefaultRegion, got %+v", d)
	}
}
