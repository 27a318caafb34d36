package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"corpgate/internal/caching"
	"corpgate/internal/config"
	"corpgate/internal/handlers"
	"corpgate/internal/jobs/background"
	"corpgate/internal/middleware"
	"corpgate/internal/repositories"
	"corpgate/internal/services"
	"corpgate/pkg/database"
)

const version = "1.0.0"

func main() {
	// Engine configuration
	cfg := config.DefaultEngineConfig()
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		loaded, err := config.LoadEngineConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config from %s: %v", configPath, err)
		}
		cfg = loaded
	}

	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewMinioStorageService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(context.Background(), cfg.Storage.CertificateBucket); err != nil {
		log.Printf("WARNING: could not ensure certificate bucket %s: %v", cfg.Storage.CertificateBucket, err)
	}

	// Create repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	countryRepo := repositories.NewCountryRepo(pool)
	branchRepo := repositories.NewBranchRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	licenseRepo := repositories.NewLicenseRepo(pool)

	// Create cache service and notifier
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	notifier := services.NewRedisNotifier(redisAddr, redisPassword, redisDB)

	// Create services
	tenantSvc := services.NewTenantService(tenantRepo)
	provisioningSvc := services.NewProvisioningService(countryRepo, branchRepo, userRepo, cacheSvc)
	licenseSvc := services.NewLicenseService(licenseRepo, tenantRepo, storageSvc, cacheSvc,
		cfg.Entitlement.GracePeriodDays, cfg.Storage.CertificateBucket)
	entitlementSvc := services.NewEntitlementService(tenantRepo, countryRepo, branchRepo, userRepo,
		licenseRepo, notifier, cacheSvc, cfg.Entitlement.CacheTTL())

	// Create handlers
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, version)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc)
	provisioningHandlers := handlers.NewProvisioningHandlers(provisioningSvc)
	licenseHandlers := handlers.NewLicenseHandlers(licenseSvc)
	entitlementHandlers := handlers.NewEntitlementHandlers(entitlementSvc)

	// Background sweep scheduler
	scheduler := background.NewJobScheduler(entitlementSvc, tenantRepo,
		cfg.Sweep.Interval(), cfg.Sweep.TenantTimeout(), cfg.Sweep.Concurrency, cfg.Sweep.TenantBatchSize)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)

	// API routes
	versionMiddleware := middleware.NewVersionMiddleware()
	v1 := versionMiddleware.VersionRoute(e, "v1")

	// Protected routes (require JWT from the external auth provider)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))
	protected.Use(middleware.RequireClaims())

	// Tenant routes
	protected.GET("/tenants", tenantHandlers.ListTenants)
	protected.POST("/tenants", tenantHandlers.CreateTenant)
	protected.GET("/tenants/:id", tenantHandlers.GetTenant)
	protected.GET("/tenants/code/:code", tenantHandlers.GetTenantByCode)
	protected.PUT("/tenants/:id", tenantHandlers.UpdateTenant)
	protected.POST("/tenants/:id/settings/complete", tenantHandlers.CompleteSettings)
	protected.DELETE("/tenants/:id", tenantHandlers.DeactivateTenant)

	// Provisioning routes
	protected.GET("/tenants/:id/countries", provisioningHandlers.ListCountries)
	protected.POST("/tenants/:id/countries", provisioningHandlers.CreateCountry)
	protected.DELETE("/tenants/:id/countries/:countryId", provisioningHandlers.DeleteCountry)
	protected.GET("/tenants/:id/branches", provisioningHandlers.ListBranches)
	protected.POST("/tenants/:id/branches", provisioningHandlers.CreateBranch)
	protected.DELETE("/tenants/:id/branches/:branchId", provisioningHandlers.DeleteBranch)
	protected.GET("/tenants/:id/users", provisioningHandlers.ListUsers)
	protected.POST("/tenants/:id/users", provisioningHandlers.CreateUser)
	protected.DELETE("/tenants/:id/users/:userId", provisioningHandlers.DeactivateUser)

	// License routes
	protected.GET("/tenants/:id/licenses", licenseHandlers.ListLicenses)
	protected.POST("/tenants/:id/licenses", licenseHandlers.IssueLicense)
	protected.GET("/tenants/:id/licenses/current", licenseHandlers.GetCurrentLicense)
	protected.POST("/tenants/:id/licenses/:licenseId/revoke", licenseHandlers.RevokeLicense)

	// Entitlement routes
	protected.GET("/tenants/:id/entitlement", entitlementHandlers.GetEntitlement)
	protected.POST("/tenants/:id/entitlement/refresh", entitlementHandlers.RefreshEntitlement)
	protected.GET("/tenants/:id/setup-status", entitlementHandlers.GetSetupStatus)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Corpgate entitlement engine v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
