package plans

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Plan audiences (single source of truth)
const (
	TypeUser     = "user"
	TypeMerchant = "merchant"
)

var (
	ErrDuplicateKey         = errors.New("plans: duplicate plan key")
	ErrEmptyKey             = errors.New("plans: empty plan key")
	ErrDegeneratePriorities = errors.New("plans: all plan priorities are equal")
	ErrInvalidPlan          = errors.New("plans: invalid plan")
	ErrUnknownType          = errors.New("plans: unknown plan type")
)

var validate = validator.New()

// Catalog is a snapshot of plan records read in one go.
// Treat it as immutable while resolving.
type Catalog []Plan

// OfType returns the plans of one audience, preserving order.
func (c Catalog) OfType(planType string) Catalog {
	out := make(Catalog, 0, len(c))
	for _, p := range c {
		if p.Type == planType {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the plan with exactly this key, or nil.
func (c Catalog) Find(key string) *Plan {
	for i := range c {
		if c[i].Key == key {
			p := c[i]
			return &p
		}
	}
	return nil
}

// Validate checks the configuration invariants a resolution relies on.
// A degenerate catalog still resolves; callers decide how loud to be.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for _, p := range c {
		if strings.TrimSpace(p.Key) == "" {
			return ErrEmptyKey
		}
		if _, dup := seen[p.Type+"/"+p.Key]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, p.Key)
		}
		seen[p.Type+"/"+p.Key] = struct{}{}
	}

	if len(c) > 1 {
		first := c[0].Priority
		degenerate := true
		for _, p := range c[1:] {
			if p.Priority != first {
				degenerate = false
				break
			}
		}
		if degenerate {
			return fmt.Errorf("%w (priority=%d across %d plans)", ErrDegeneratePriorities, first, len(c))
		}
	}
	return nil
}

// ValidatePlan runs the struct rules on a single plan record.
func ValidatePlan(p *Plan) error {
	if p == nil {
		return fmt.Errorf("%w: nil plan", ErrInvalidPlan)
	}
	if err := ValidateType(p.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return nil
}

// NormalizeKey lowercases and trims a key, and turns inner spaces and
// dashes into underscores ("Platinum Plus" -> "platinum_plus").
func NormalizeKey(s string) string {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	return k
}

// IsValidType reports whether t names a known audience.
func IsValidType(t string) bool {
	switch t {
	case TypeUser, TypeMerchant:
		return true
	}
	return false
}

// ValidateType returns ErrUnknownType unless t names a known audience.
func ValidateType(t string) error {
	if !IsValidType(t) {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return nil
}
