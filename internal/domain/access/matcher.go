package access

import (
	"strings"

	"deals-app/internal/domain/plans"
)

// matchRule is one step of the designation -> plan ladder.
// Rules run in order and the first rule with any candidate decides.
type matchRule func(designation, lowered string, p plans.Plan) bool

var matchRules = []matchRule{
	// 1. exact key
	func(d, _ string, p plans.Plan) bool {
		return d == p.Key
	},
	// 2. case-insensitive key or display name
	func(_, l string, p plans.Plan) bool {
		return l == strings.ToLower(p.Key) || l == strings.ToLower(p.DisplayName)
	},
	// 3. prefix ("platinum_plus" -> "platinum")
	func(_, l string, p plans.Plan) bool {
		k := strings.ToLower(p.Key)
		return k != "" && strings.HasPrefix(l, k)
	},
	// 4. substring ("vip_gold_member" -> "gold")
	func(_, l string, p plans.Plan) bool {
		k := strings.ToLower(p.Key)
		return k != "" && strings.Contains(l, k)
	},
}

// MatchPlan maps a free-form membership designation onto the best plan in
// catalog. It returns nil when no rule produces a candidate; callers treat
// that as the lowest possible access, not as a failure.
//
// Among candidates of the winning rule the longest key wins, then the lowest
// priority, then the lexicographically smallest key. Catalog order never
// influences the result.
func MatchPlan(designation string, catalog plans.Catalog) *plans.Plan {
	if designation == "" || len(catalog) == 0 {
		return nil
	}
	lowered := strings.ToLower(designation)

	for _, rule := range matchRules {
		var best *plans.Plan
		for i := range catalog {
			if !rule(designation, lowered, catalog[i]) {
				continue
			}
			if best == nil || betterCandidate(catalog[i], *best) {
				best = &catalog[i]
			}
		}
		if best != nil {
			p := *best
			return &p
		}
	}
	return nil
}

func betterCandidate(a, b plans.Plan) bool {
	if len(a.Key) != len(b.Key) {
		return len(a.Key) > len(b.Key)
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Key < b.Key
}
