package routes

import (
	adminapi "deals-app/internal/api/admin"
	authapi "deals-app/internal/api/auth"
	billingapi "deals-app/internal/api/billing"
	dealsapi "deals-app/internal/api/deals"
	plansapi "deals-app/internal/api/plans"
	stripewebhooks "deals-app/internal/api/stripewebhook"
	usersapi "deals-app/internal/api/users"
	"deals-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers wired in main.
type Handlers struct {
	Auth    *authapi.Handler
	Users   *usersapi.Handler
	Plans   *plansapi.Handler
	Deals   *dealsapi.Handler
	Admin   *adminapi.Handler
	Billing *billingapi.Handler
	Webhook *stripewebhooks.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	// Signed payload: must reach the handler byte for byte.
	r.POST("/webhook", h.Webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ✅ Apply input sanitization to public routes only
	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)
	public.GET("/plans", h.Plans.ListPlans)
	public.GET("/deals", h.Deals.ListDeals)
	public.GET("/deals/:id", h.Deals.GetDeal)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", h.Users.GetCurrentUser)
	auth.POST("/change-password", h.Auth.ChangePassword)

	auth.POST("/deals/:id/redeem", h.Deals.RedeemDeal)
	auth.GET("/redemptions", h.Deals.ListMyRedemptions)
	auth.POST("/upgrade-checkout", h.Billing.CreateUpgradeCheckout)
	auth.GET("/payments", h.Billing.GetPaymentHistory)

	auth.POST("/merchants", middleware.SanitizeAndCleanInputMiddleware(), h.Deals.ApplyMerchant)
	auth.GET("/merchants/me", h.Deals.GetMyMerchant)

	// Approved merchants
	merchant := auth.Group("/")
	merchant.Use(middleware.RequireApprovedMerchant(h.Deals.ApprovedMerchantID))
	merchant.POST("/deals", middleware.SanitizeAndCleanInputMiddleware(), h.Deals.CreateDeal)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", h.Admin.AdminDashboard)
	admin.GET("/users", h.Admin.ListAllUsers)
	admin.GET("/designations", h.Admin.ListDesignations)
	admin.GET("/merchants", h.Admin.ListMerchants)
	admin.POST("/merchants/:id/approve", h.Deals.ApproveMerchant)
	admin.POST("/merchants/:id/reject", h.Deals.RejectMerchant)
	admin.POST("/deals/:id/approve", h.Deals.ApproveDeal)
	admin.POST("/deals/:id/reject", h.Deals.RejectDeal)

	admin.POST("/plans", h.Plans.CreatePlan)
	admin.PUT("/plans/:type/:key", h.Plans.UpdatePlan)
	admin.POST("/sync-plans", h.Plans.SyncPlansFromStripe)
}
