package routes

import (
	"rewardhub/internal/adapters/http/handlers"
	"rewardhub/internal/adapters/http/middleware"
	"rewardhub/internal/adapters/persistence/repositories"
	"rewardhub/internal/config"
	"rewardhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.CronService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	tierRepo := repositories.NewTierRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	commissionRepo := repositories.NewCommissionRepository(db)
	qualificationRepo := repositories.NewQualificationRepository(db)
	allocationRepo := repositories.NewAllocationRepository(db)
	assetRepo := repositories.NewAssetRepository(db)

	// Initialize services
	clock := services.NewRealClock()
	statsService := services.NewStatsService(userRepo, orderRepo, qualificationRepo, clock)
	tierService := services.NewTierService(qualificationRepo, tierRepo, commissionRepo, statsService, clock)
	commissionService := services.NewCommissionService(
		commissionRepo,
		orderRepo,
		qualificationRepo,
		userRepo,
		userRepo, // upline resolution lives on the user repository
		statsService,
		tierService,
		clock,
	)
	assetService := services.NewAssetService(allocationRepo, assetRepo, userRepo, statsService, clock)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, tierService, clock, cfg)
	userService := services.NewUserService(userRepo, statsService)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	tierHandler := handlers.NewTierHandler(tierService, tierRepo)
	commissionHandler := handlers.NewCommissionHandler(commissionService)
	assetHandler := handlers.NewAssetHandler(assetService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, tierHandler,
		commissionHandler, assetHandler, dashboardHandler, cfg)

	// The cron service shares the wired services with the HTTP layer
	return services.NewCronService(tierService, assetService, commissionService, refreshTokenRepo)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tierHandler *handlers.TierHandler,
	commissionHandler *handlers.CommissionHandler,
	assetHandler *handlers.AssetHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public + protected)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Tier ladder is public master data
	router.Get("/tiers", middleware.MasterDataCache(), tierHandler.ListTiers)

	// Member routes (authenticated)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	tierRoutes := router.Group("/tiers")
	tierRoutes.Use(middleware.AuthMiddleware(cfg))
	setupTierRoutes(tierRoutes, tierHandler)

	purchaseRoutes := router.Group("/purchases")
	purchaseRoutes.Use(middleware.AuthMiddleware(cfg))
	purchaseRoutes.Post("/", commissionHandler.CreatePurchase)

	commissionRoutes := router.Group("/commissions")
	commissionRoutes.Use(middleware.AuthMiddleware(cfg))
	commissionRoutes.Get("/my", middleware.NoCacheHeaders(), commissionHandler.MyCommissions)

	assetRoutes := router.Group("/assets")
	assetRoutes.Use(middleware.AuthMiddleware(cfg))
	setupAssetRoutes(assetRoutes, assetHandler)

	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Get("/", middleware.NoCacheHeaders(), dashboardHandler.MemberDashboard)

	// Admin routes
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, userHandler, tierHandler, commissionHandler, assetHandler, dashboardHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate-limited against brute force
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures member self-service routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/profile", handler.GetProfile)
	router.Put("/profile", handler.UpdateProfile)
	router.Post("/change-password", middleware.StrictRateLimiter(), handler.ChangePassword)
	router.Get("/network", middleware.NoCacheHeaders(), handler.MyNetwork)
}

// setupTierRoutes configures member tier routes
func setupTierRoutes(router fiber.Router, handler *handlers.TierHandler) {
	router.Get("/my-status", middleware.NoCacheHeaders(), handler.MyStatus)
	router.Post("/evaluate", handler.Evaluate)
}

// setupAssetRoutes configures member asset routes
func setupAssetRoutes(router fiber.Router, handler *handlers.AssetHandler) {
	router.Get("/my-allocations", middleware.NoCacheHeaders(), handler.MyAllocations)
	router.Get("/allocations/:id/risk", handler.RiskReport)
	router.Get("/allocations/:id/buyback-quote", handler.BuybackQuote)
	router.Post("/allocations/:id/buyback", middleware.StrictRateLimiter(), handler.RequestBuyback)
}

// setupAdminRoutes configures admin-only routes
func setupAdminRoutes(
	router fiber.Router,
	userHandler *handlers.UserHandler,
	tierHandler *handlers.TierHandler,
	commissionHandler *handlers.CommissionHandler,
	assetHandler *handlers.AssetHandler,
	dashboardHandler *handlers.DashboardHandler,
) {
	// User management
	router.Get("/users", userHandler.ListUsers)
	router.Put("/users/:id", userHandler.UpdateUser)
	router.Delete("/users/:id", userHandler.DeleteUser)

	// Tier master data and sweep
	router.Put("/tiers/:id", tierHandler.UpdateTier)
	router.Post("/tiers/run-sweep", tierHandler.RunSweep)

	// Commission payout
	router.Patch("/commissions/:id/pay", commissionHandler.MarkPaid)
	router.Post("/commissions/run-team-volume", commissionHandler.RunTeamVolumeBonuses)

	// Asset inventory and maintenance
	router.Post("/assets/allocate", assetHandler.Allocate)
	router.Post("/assets/run-maintenance", assetHandler.RunMaintenance)
	router.Post("/assets/allocations/:id/evaluate", assetHandler.EvaluateAllocation)
	router.Post("/assets/allocations/:id/recover", assetHandler.Recover)

	// Dashboard
	router.Get("/dashboard", dashboardHandler.AdminDashboard)
}
