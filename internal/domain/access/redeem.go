package access

import (
	"fmt"
	"math"
	"strings"

	"deals-app/internal/domain/plans"
)

// NoPlanPriority is the effective priority of a designation that matched
// no plan. It sits below every real priority.
const NoPlanPriority = math.MinInt

// Result of one redemption check. Built fresh per call, never persisted.
type Result struct {
	Allowed        bool
	MatchedPlan    *plans.Plan
	UpgradeOptions []plans.Plan
}

// EffectivePriority is the priority the decision was taken with.
func (r Result) EffectivePriority() int {
	if r.MatchedPlan == nil {
		return NoPlanPriority
	}
	return r.MatchedPlan.Priority
}

// Unmatched reports whether the designation mapped to no plan.
func (r Result) Unmatched() bool { return r.MatchedPlan == nil }

// CanRedeem decides whether a member with this designation may redeem a deal
// whose minimum plan priority is dealMinPriority. On denial UpgradeOptions
// holds the plans that would clear the threshold, cheapest tier first.
//
// catalog must already be narrowed to the deal's audience.
func CanRedeem(designation string, catalog plans.Catalog, dealMinPriority int) (Result, error) {
	if strings.TrimSpace(designation) == "" {
		return Result{}, fmt.Errorf("%w: empty membership designation", ErrInvalidInput)
	}
	if dealMinPriority < 0 {
		return Result{}, fmt.Errorf("%w: negative deal threshold %d", ErrInvalidInput, dealMinPriority)
	}

	res := Result{MatchedPlan: MatchPlan(designation, catalog)}
	res.Allowed = res.EffectivePriority() >= dealMinPriority
	if !res.Allowed {
		res.UpgradeOptions = SuggestUpgrades(catalog, dealMinPriority)
	}
	return res, nil
}
