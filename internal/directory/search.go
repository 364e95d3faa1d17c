package directory

import (
	"slices"
	"strings"
)

// Filter narrows the facility directory. Empty fields match everything.
type Filter struct {
	Query     string
	State     string
	City      string
	WasteType string
}

// Empty reports whether the filter matches every facility.
func (f Filter) Empty() bool {
	return f.Query == "" && f.State == "" && f.City == "" && f.WasteType == ""
}

// Search returns the facilities matching f, preserving their order.
// Query matches name, address, city or description; all comparisons ignore case.
func Search(facilities []Facility, f Filter) []Facility {
	if f.Empty() {
		return facilities
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Facility, 0, len(facilities))

	for _, fac := range facilities {
		if f.State != "" && !strings.EqualFold(fac.State, f.State) {
			continue
		}

		if f.City != "" && !strings.EqualFold(fac.City, f.City) {
			continue
		}

		if f.WasteType != "" && !slices.ContainsFunc(fac.WasteTypes, func(t string) bool {
			return strings.EqualFold(t, f.WasteType)
		}) {
			continue
		}

		if query != "" && !matchesQuery(fac, query) {
			continue
		}

		out = append(out, fac)
	}

	return out
}

func matchesQuery(f Facility, query string) bool {
	for _, field := range []string{f.Name, f.Address, f.City, f.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}

	return false
}
