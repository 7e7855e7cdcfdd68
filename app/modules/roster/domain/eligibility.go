package rosterdomain

// DefaultAgeClass is used when neither the birth year nor the default birth
// year has an entry in the table.
const DefaultAgeClass = 11

// AgeClassTable maps birth years to age classes for the current season.
// The table is swapped every season; rosters are never edited to age players out.
type AgeClassTable struct {
	Classes          map[int]int
	DefaultBirthYear int
}

// NewAgeClassTable copies classes so later config edits cannot leak in.
func NewAgeClassTable(classes map[int]int, defaultBirthYear int) AgeClassTable {
	copied := make(map[int]int, len(classes))
	for year, class := range classes {
		copied[year] = class
	}
	return AgeClassTable{Classes: copied, DefaultBirthYear: defaultBirthYear}
}

// OldestEligibleBirthYear returns the smallest configured birth year.
// ok is false for an empty table.
func (t AgeClassTable) OldestEligibleBirthYear() (year int, ok bool) {
	for y := range t.Classes {
		if !ok || y < year {
			year = y
			ok = true
		}
	}
	return year, ok
}

// IsEligible reports whether a player born in birthYear takes part in this
// season. An empty table admits everyone.
func (t AgeClassTable) IsEligible(birthYear int) bool {
	oldest, ok := t.OldestEligibleBirthYear()
	if !ok {
		return true
	}
	return birthYear >= oldest
}

// AgeClassFor returns the configured class for birthYear, falling back to the
// class of the default birth year and then to DefaultAgeClass.
func (t AgeClassTable) AgeClassFor(birthYear int) int {
	if class, ok := t.Classes[birthYear]; ok {
		return class
	}
	if class, ok := t.Classes[t.DefaultBirthYear]; ok {
		return class
	}
	return DefaultAgeClass
}
