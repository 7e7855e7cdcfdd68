package rosterdomain

import (
	"cmp"
	"slices"
	"strings"
)

// District is a configured district with its ranking region.
type District struct {
	Name      string
	Region    int
	ShortName string
}

// DefaultRegion is assigned when no district is configured at all.
const DefaultRegion = 1

// DistrictTable looks up regions by district name.
type DistrictTable struct {
	districts []District
}

// NewDistrictTable orders districts by region then name so lookups are stable.
func NewDistrictTable(districts []District) DistrictTable {
	sorted := slices.Clone(districts)
	slices.SortFunc(sorted, func(a, b District) int {
		if c := cmp.Compare(a.Region, b.Region); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return DistrictTable{districts: sorted}
}

// Districts returns the ordered districts.
func (t DistrictTable) Districts() []District {
	return slices.Clone(t.districts)
}

// Lookup resolves a district name from the roster export. It tries an exact
// case-insensitive match, then containment in either direction, then any
// word of the configured name. matched is false when the first district was
// used as a fallback.
func (t DistrictTable) Lookup(name string) (district District, matched bool) {
	if len(t.districts) == 0 {
		return District{Name: name, Region: DefaultRegion}, false
	}
	needle := strings.ToLower(strings.TrimSpace(name))

	for _, d := range t.districts {
		if strings.ToLower(d.Name) == needle {
			return d, true
		}
	}
	if needle != "" {
		for _, d := range t.districts {
			candidate := strings.ToLower(d.Name)
			if strings.Contains(needle, candidate) || strings.Contains(candidate, needle) {
				return d, true
			}
			for _, word := range strings.Fields(candidate) {
				if strings.Contains(needle, word) {
					return d, true
				}
			}
		}
	}
	return t.districts[0], false
}
