package rosterdomain

import "testing"

func seasonTable() AgeClassTable {
	return NewAgeClassTable(map[int]int{
		2006: 19, 2007: 19, 2008: 19, 2009: 19,
		2010: 15, 2011: 15, 2012: 13, 2013: 13, 2014: 11,
	}, 2014)
}

func TestOldestEligibleBirthYear(t *testing.T) {
	year, ok := seasonTable().OldestEligibleBirthYear()
	if !ok || year != 2006 {
		t.Fatalf("got (%d, %v), want (2006, true)", year, ok)
	}

	if _, ok := NewAgeClassTable(nil, 2014).OldestEligibleBirthYear(); ok {
		t.Fatalf("expected no oldest year for an empty table")
	}
}

func TestIsEligible(t *testing.T) {
	table := seasonTable()
	cases := map[int]bool{
		2005: false,
		2006: true,
		2014: true,
		2016: true,
	}
	for year, want := range cases {
		if got := table.IsEligible(year); got != want {
			t.Errorf("IsEligible(%d) = %v, want %v", year, got, want)
		}
	}

	if !NewAgeClassTable(map[int]int{}, 0).IsEligible(1950) {
		t.Errorf("empty table must admit everyone")
	}
}

func TestAgeClassFor(t *testing.T) {
	table := seasonTable()
	if got := table.AgeClassFor(2012); got != 13 {
		t.Errorf("AgeClassFor(2012) = %d, want 13", got)
	}
	if got := table.AgeClassFor(2016); got != 11 {
		t.Errorf("AgeClassFor(2016) = %d, want default birth year class 11", got)
	}
	if got := NewAgeClassTable(map[int]int{2010: 15}, 2014).AgeClassFor(2016); got != DefaultAgeClass {
		t.Errorf("expected DefaultAgeClass when default year is unmapped, got %d", got)
	}
}

func TestNewAgeClassTableCopies(t *testing.T) {
	classes := map[int]int{2010: 15}
	table := NewAgeClassTable(classes, 2010)
	classes[2000] = 19

	if year, _ := table.OldestEligibleBirthYear(); year != 2010 {
		t.Fatalf("table picked up a later edit: oldest = %d", year)
	}
}
