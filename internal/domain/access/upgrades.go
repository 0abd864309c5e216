package access

import (
	"sort"

	"deals-app/internal/domain/plans"
)

// SuggestUpgrades lists the active plans whose priority clears
// dealMinPriority, ordered by priority, then price, then key.
// The input catalog is left untouched.
func SuggestUpgrades(catalog plans.Catalog, dealMinPriority int) []plans.Plan {
	out := make([]plans.Plan, 0, len(catalog))
	for _, p := range catalog {
		if p.IsActive && p.Priority >= dealMinPriority {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.Key < b.Key
	})
	return out
}
