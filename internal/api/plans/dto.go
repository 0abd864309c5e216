package plans

// ---------- requests

type CreatePlanRequest struct {
	Key         string  `json:"key" binding:"required"`
	DisplayName string  `json:"display_name" binding:"required"`
	Type        string  `json:"type"`
	Priority    int     `json:"priority"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency" binding:"required"`
	IsActive    *bool   `json:"is_active"`
}

type UpdatePlanRequest struct {
	DisplayName *string  `json:"display_name"`
	Priority    *int     `json:"priority"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	IsActive    *bool    `json:"is_active"`
}

// ---------- responses

type PlanDTO struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Priority int     `json:"priority"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	IsActive bool    `json:"is_active"`
}

type SyncResult struct {
	Synced  int            `json:"synced"`
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Skipped map[string]int `json:"skipped"`
}
