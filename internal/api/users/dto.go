package users

type PlanDTO struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Priority int     `json:"priority"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type MeResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	MembershipType string `json:"membership_type"`

	// Plan is the catalog plan the designation resolves to, nil when unmapped.
	Plan *PlanDTO `json:"plan"`
}
