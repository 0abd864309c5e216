package admin

import (
	"net/http"
	"sort"

	"deals-app/internal/domain/access"
	"deals-app/internal/domain/deals"
	"deals-app/internal/domain/plans"
	"deals-app/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminUser struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	MembershipType string  `json:"membership_type"`
	PlanKey        *string `json:"plan_key,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers        int64            `json:"total_users"`
	TotalRedemptions  int64            `json:"total_redemptions"`
	MerchantsByStatus map[string]int64 `json:"merchants_by_status"`
	DealsByStatus     map[string]int64 `json:"deals_by_status"`
	UsersPerPlan      map[string]int64 `json:"users_per_plan"`
	CatalogWarning    *string          `json:"catalog_warning,omitempty"`
}

type UnmappedDesignation struct {
	MembershipType string `json:"membership_type"`
	Users          int64  `json:"users"`
}

type DesignationReport struct {
	Mapped   map[string]int64      `json:"mapped"`
	Unmapped []UnmappedDesignation `json:"unmapped"`
}

const noPlanLabel = "No Plan"

type Handler struct {
	repo    Repository
	catalog cache.CatalogSource
	logger  *zap.Logger
}

func NewHandler(repo Repository, catalog cache.CatalogSource, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, catalog: catalog, logger: logger}
}

// ------------------------------
// GET /admin/dashboard
// ------------------------------
func (h *Handler) AdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	var stats AdminStats
	var err error
	if stats.TotalUsers, err = h.repo.CountUsers(ctx); err != nil {
		h.fail(c, "Failed to count users", err)
		return
	}
	if stats.TotalRedemptions, err = h.repo.CountRedemptions(ctx); err != nil {
		h.fail(c, "Failed to count redemptions", err)
		return
	}

	merchants, err := h.repo.MerchantsByStatus(ctx)
	if err != nil {
		h.fail(c, "Failed to count merchants", err)
		return
	}
	stats.MerchantsByStatus = statusMap(merchants)

	dealCounts, err := h.repo.DealsByStatus(ctx)
	if err != nil {
		h.fail(c, "Failed to count deals", err)
		return
	}
	stats.DealsByStatus = statusMap(dealCounts)

	report, catalog, err := h.designationReport(c)
	if err != nil {
		h.fail(c, "Failed to load designations", err)
		return
	}
	stats.UsersPerPlan = report.Mapped
	for _, u := range report.Unmapped {
		stats.UsersPerPlan[noPlanLabel] += u.Users
	}
	if verr := catalog.Validate(); verr != nil {
		msg := verr.Error()
		stats.CatalogWarning = &msg
	}

	c.JSON(http.StatusOK, stats)
}

// ------------------------------
// GET /admin/designations
// ------------------------------
func (h *Handler) ListDesignations(c *gin.Context) {
	report, _, err := h.designationReport(c)
	if err != nil {
		h.fail(c, "Failed to load designations", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// designationReport resolves each stored designation once against the
// current user catalog.
func (h *Handler) designationReport(c *gin.Context) (DesignationReport, plans.Catalog, error) {
	ctx := c.Request.Context()

	catalog, err := h.catalog.Snapshot(ctx, plans.TypeUser)
	if err != nil {
		return DesignationReport{}, nil, err
	}
	rows, err := h.repo.Designations(ctx)
	if err != nil {
		return DesignationReport{}, nil, err
	}

	report := DesignationReport{
		Mapped:   map[string]int64{},
		Unmapped: []UnmappedDesignation{},
	}
	for _, row := range rows {
		if p := access.MatchPlan(row.MembershipType, catalog); p != nil {
			report.Mapped[p.Key] += row.Count
			continue
		}
		report.Unmapped = append(report.Unmapped, UnmappedDesignation{
			MembershipType: row.MembershipType,
			Users:          row.Count,
		})
	}
	sort.SliceStable(report.Unmapped, func(i, j int) bool {
		if report.Unmapped[i].Users != report.Unmapped[j].Users {
			return report.Unmapped[i].Users > report.Unmapped[j].Users
		}
		return report.Unmapped[i].MembershipType < report.Unmapped[j].MembershipType
	})
	return report, catalog, nil
}

// ------------------------------
// GET /admin/users
// ------------------------------
func (h *Handler) ListAllUsers(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.repo.ListUsers(ctx)
	if err != nil {
		h.fail(c, "Failed to load users", err)
		return
	}
	catalog, err := h.catalog.Snapshot(ctx, plans.TypeUser)
	if err != nil {
		h.fail(c, "Failed to load plans", err)
		return
	}

	out := make([]AdminUser, 0, len(list))
	for _, u := range list {
		var planKey *string
		if p := access.MatchPlan(u.MembershipType, catalog); p != nil {
			key := p.Key
			planKey = &key
		}
		out = append(out, AdminUser{
			ID:             u.ID,
			Name:           u.Name,
			Email:          u.Email,
			Role:           u.Role,
			MembershipType: u.MembershipType,
			PlanKey:        planKey,
			CreatedAt:      u.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	c.JSON(http.StatusOK, out)
}

// ------------------------------
// GET /admin/merchants?status=pending
// ------------------------------
func (h *Handler) ListMerchants(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", deals.MerchantPending, deals.MerchantApproved, deals.MerchantRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown merchant status"})
		return
	}
	list, err := h.repo.ListMerchants(c.Request.Context(), status)
	if err != nil {
		h.fail(c, "Failed to load merchants", err)
		return
	}
	if list == nil {
		list = []deals.Merchant{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func statusMap(rows []StatusCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out
}
