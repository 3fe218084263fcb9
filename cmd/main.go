package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"github.com/hibiken/asynq"

	"kiranamart/internal/analytics"
	"kiranamart/internal/billing"
	"kiranamart/internal/caching"
	"kiranamart/internal/common"
	"kiranamart/internal/config"
	"kiranamart/internal/handlers"
	"kiranamart/internal/jobs"
	"kiranamart/internal/jobs/background"
	"kiranamart/internal/middleware"
	"kiranamart/internal/repositories"
	"kiranamart/internal/services"
	"kiranamart/pkg/database"
)

const version = "1.0.0"

func main() {
	// File-based config carries the tunables; secrets stay in the
	// environment.
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.toml"
	}
	cfg, err := config.LoadAppConfig(configFile)
	if err != nil {
		log.Printf("Config file %s not loaded (%v), using defaults", configFile, err)
		cfg = config.Default()
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Print("WARNING: JWT_SECRET not set, using a generated secret; sessions will not survive a restart")
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000" // Default MinIO endpoint
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// Create repositories
	shopRepo := repositories.NewShopRepo(pool)
	shopAdminRepo := repositories.NewShopAdminRepo(pool)
	superAdminRepo := repositories.NewSuperAdminRepo(pool)
	registrationRepo := repositories.NewRegistrationRepo(pool)
	itemRepo := repositories.NewItemRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	partyRepo := repositories.NewPartyRepo(pool)
	saleRepo := repositories.NewSaleRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.Queuing.RedisAddr, cfg.Queuing.RedisPassword, cfg.Queuing.RedisDB)

	// Task queue client
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Queuing.RedisAddr,
		Password: cfg.Queuing.RedisPassword,
		DB:       cfg.Queuing.RedisDB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	// Create services
	settlementSvc := services.NewSettlementService(saleRepo, itemRepo, customerRepo, billing.Options{})
	itemSvc := services.NewItemService(itemRepo, cacheSvc)
	customerSvc := services.NewCustomerService(customerRepo, paymentRepo, cacheSvc)
	partySvc := services.NewPartyService(partyRepo)
	registrationSvc := services.NewRegistrationService(registrationRepo, shopRepo, shopAdminRepo, cacheSvc,
		asynqClient, time.Duration(cfg.Billing.OTPTTLMinutes)*time.Minute)
	authSvc := services.NewAuthService(shopAdminRepo, superAdminRepo, customerRepo, shopRepo, jwtSecret)
	shopSvc := services.NewShopService(shopRepo, minioSvc)
	pdfSvc := services.NewPDFService(saleRepo, shopRepo, customerRepo, minioSvc)
	mailerSvc := services.NewSMTPMailer(cfg.Mailer, os.Getenv("SMTP_PASSWORD"))
	dashboardSvc := analytics.NewDashboardService(saleRepo, itemRepo, customerRepo, cacheSvc)

	// Task queue worker
	asynqServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Queuing.Concurrency,
		Queues:      cfg.Queuing.QueuePriorities,
	})
	mux := asynq.NewServeMux()
	emailHandlers := jobs.NewEmailHandlers(mailerSvc)
	archiveHandlers := jobs.NewArchiveHandlers(pdfSvc)
	lowStockSvc := jobs.NewLowStockAlertService(itemRepo, shopRepo)
	mux.HandleFunc(jobs.TypeOTPEmail, emailHandlers.OTPEmailHandler)
	mux.HandleFunc(jobs.TypeShopApprovedEmail, emailHandlers.ShopApprovedEmailHandler)
	mux.HandleFunc(jobs.TypeInvoiceArchivePDF, archiveHandlers.InvoiceArchivePDFHandler)
	mux.HandleFunc(jobs.TypeLowStockAlert, lowStockSvc.LowStockAlertHandler)
	go func() {
		if err := asynqServer.Run(mux); err != nil {
			log.Fatalf("Task worker failed: %v", err)
		}
	}()

	// Nightly low-stock scan
	scheduler := background.NewJobScheduler(shopRepo, asynqClient, cfg.Billing.LowStockHourOfDay)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}

	// Create handlers
	saleHandlers := handlers.NewSaleHandlers(settlementSvc, pdfSvc, asynqClient, cfg.Billing.ArchiveInvoicePDF)
	itemHandlers := handlers.NewItemHandlers(itemSvc)
	customerHandlers := handlers.NewCustomerHandlers(customerSvc, settlementSvc)
	partyHandlers := handlers.NewPartyHandlers(partySvc)
	authHandlers := handlers.NewAuthHandlers(registrationSvc, authSvc)
	shopHandlers := handlers.NewShopHandlers(shopSvc)
	portalHandlers := handlers.NewPortalHandlers(customerSvc, settlementSvc)
	dashboardHandlers := handlers.NewDashboardHandlers(dashboardSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, minioSvc)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.VersionHeader("v1"))

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	api := e.Group("/api")

	// Authentication routes (no token required)
	auth := api.Group("/auth")
	auth.POST("/register-shop", authHandlers.RegisterShop)
	auth.POST("/verify-otp", authHandlers.VerifyOTP)
	auth.POST("/login/shop-admin", authHandlers.LoginShopAdmin)
	auth.POST("/login/super-admin", authHandlers.LoginSuperAdmin)
	auth.POST("/login/customer", authHandlers.LoginCustomer)
	auth.POST("/logout", authHandlers.Logout)

	// Shop admin routes
	shop := api.Group("/shop")
	shop.Use(middleware.JWTMiddleware(jwtSecret))
	shop.Use(middleware.RequireRole(common.RoleShopAdmin))
	shop.Use(middleware.AuditRequest())

	shop.GET("/me", shopHandlers.GetMe)
	shop.POST("/logo", shopHandlers.UploadLogo)
	shop.DELETE("/logo", shopHandlers.RemoveLogo)
	shop.POST("/password", authHandlers.ChangePassword)

	shop.GET("/items", itemHandlers.ListItems)
	shop.POST("/items", itemHandlers.CreateItem)
	shop.GET("/items/low-stock", itemHandlers.ListLowStockItems)
	shop.GET("/items/:id", itemHandlers.GetItem)
	shop.PUT("/items/:id", itemHandlers.UpdateItem)
	shop.DELETE("/items/:id", itemHandlers.DeleteItem)

	shop.GET("/customers", customerHandlers.ListCustomers)
	shop.POST("/customers", customerHandlers.CreateCustomer)
	shop.GET("/customers/:id", customerHandlers.GetCustomer)
	shop.PUT("/customers/:id", customerHandlers.UpdateCustomer)
	shop.DELETE("/customers/:id", customerHandlers.DeleteCustomer)
	shop.POST("/customers/:id/payments", customerHandlers.RecordPayment)
	shop.GET("/customers/:id/payments", customerHandlers.ListPayments)
	shop.GET("/customers/:id/sales", customerHandlers.ListCustomerSales)

	shop.GET("/parties", partyHandlers.ListParties)
	shop.POST("/parties", partyHandlers.CreateParty)
	shop.GET("/parties/:id", partyHandlers.GetParty)
	shop.PUT("/parties/:id", partyHandlers.UpdateParty)
	shop.DELETE("/parties/:id", partyHandlers.DeleteParty)

	shop.POST("/sales", saleHandlers.CreateSale)
	shop.GET("/sales", saleHandlers.ListSales)
	shop.GET("/sales/:id", saleHandlers.GetSale)
	shop.GET("/sales/:id/pdf", saleHandlers.DownloadInvoicePDF)

	shop.GET("/dashboard/summary", dashboardHandlers.GetSummary)
	shop.GET("/dashboard/sales-trend", dashboardHandlers.GetSalesTrend)

	// Super admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.JWTMiddleware(jwtSecret))
	admin.Use(middleware.RequireRole(common.RoleSuperAdmin))
	admin.Use(middleware.AuditRequest())

	admin.GET("/pending-shops", authHandlers.ListPendingShops)
	admin.GET("/shops/:shop_id", authHandlers.GetShopDetail)
	admin.POST("/shops/:shop_id/approve", authHandlers.ApproveShop)
	admin.POST("/shops/:shop_id/reject", authHandlers.RejectShop)

	// Customer portal routes
	portal := api.Group("/customer")
	portal.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(jwtSecret),
		TokenLookup: "cookie:token,header:Authorization:Bearer ",
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}))
	portal.Use(middleware.PortalClaims())
	portal.Use(middleware.RequireRole(common.RoleCustomer))

	portal.GET("/me", portalHandlers.Me)
	portal.GET("/sales", portalHandlers.MySales)
	portal.GET("/payments", portalHandlers.MyPayments)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("KiranaMart v%s listening on port %s", version, port)
		if err := e.Start(fmt.Sprintf(":%s", port)); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()

	// Block until interrupted, then drain everything.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := scheduler.Stop(); err != nil {
		log.Printf("Scheduler shutdown: %v", err)
	}
	asynqServer.Shutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
}
