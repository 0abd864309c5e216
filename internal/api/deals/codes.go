package deals

import (
	"strings"

	"github.com/google/uuid"
)

// NewRedemptionCode returns the code a member shows at the merchant.
func NewRedemptionCode() string {
	return strings.ToUpper(uuid.NewString())
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
