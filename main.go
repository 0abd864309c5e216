package main

import (
	"context"
	"time"

	"deals-app/config"
	"deals-app/database"
	adminapi "deals-app/internal/api/admin"
	authapi "deals-app/internal/api/auth"
	billingapi "deals-app/internal/api/billing"
	dealsapi "deals-app/internal/api/deals"
	plansapi "deals-app/internal/api/plans"
	stripewebhooks "deals-app/internal/api/stripewebhook"
	usersapi "deals-app/internal/api/users"
	routes "deals-app/internal/app/http"
	"deals-app/internal/infra/cache"
	"deals-app/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()

	logger, err := logging.New(config.LOG_LEVEL)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	database.InitDB(config.DB_URL, logger)

	planRepo := plansapi.NewRepository(database.DB)
	catalog, invalidator := catalogSource(planRepo, logger)

	authRepo := authapi.NewRepository(database.DB)
	plansHandler := plansapi.NewHandler(planRepo, invalidator, logger, config.STRIPE_SECRET_KEY, config.STRIPE_PRODUCT_ID)
	billingHandler := billingapi.NewHandler(billingapi.NewRepository(database.DB), planRepo, config.STRIPE_SECRET_KEY, config.APP_URL, logger)
	handlers := routes.Handlers{
		Auth:    authapi.NewHandler(authRepo, logger),
		Users:   usersapi.NewHandler(authRepo, catalog, logger),
		Plans:   plansHandler,
		Deals:   dealsapi.NewHandler(dealsapi.NewRepository(database.DB), catalog, logger),
		Admin:   adminapi.NewHandler(adminapi.NewRepository(database.DB), catalog, logger),
		Billing: billingHandler,
		Webhook: stripewebhooks.NewHandler(plansHandler, billingHandler, config.STRIPE_SECRET_KEY, config.STRIPE_WEBHOOK_SECRET, logger),
	}

	r := gin.Default()

	// ✅ Add CORS middleware BEFORE registering routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, handlers)

	logger.Info("🚀 Listening", zap.String("port", config.PORT))
	if err := r.Run(":" + config.PORT); err != nil {
		logger.Fatal("❌ Server stopped", zap.Error(err))
	}
}

// catalogSource puts the redis snapshot cache in front of the plan table
// when REDIS_ADDR is set and reachable.
func catalogSource(repo plansapi.Repository, logger *zap.Logger) (cache.CatalogSource, cache.CatalogInvalidator) {
	if config.REDIS_ADDR == "" {
		logger.Info("Plan catalog served from database (REDIS_ADDR not set)")
		return repo, cache.NopInvalidator{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	store, err := cache.NewRedisStore(ctx, config.REDIS_ADDR)
	if err != nil {
		logger.Warn("⚠️ Redis unavailable, plan catalog served from database", zap.Error(err))
		return repo, cache.NopInvalidator{}
	}

	cached := cache.NewCachedCatalog(repo, store, config.CATALOG_CACHE_TTL, logger)
	logger.Info("✅ Plan catalog cache enabled", zap.String("addr", config.REDIS_ADDR), zap.Duration("ttl", config.CATALOG_CACHE_TTL))
	return cached, cached
}
