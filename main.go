// Package main provides the main entry point for the InfluencerAI campaign orchestration system
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wolfsbane9513/influencer-ai/app/handlers"
	"github.com/wolfsbane9513/influencer-ai/app/middleware"
	"github.com/wolfsbane9513/influencer-ai/app/orchestrator"
	"github.com/wolfsbane9513/influencer-ai/app/router"
	"github.com/wolfsbane9513/influencer-ai/app/scheduler"
	"github.com/wolfsbane9513/influencer-ai/app/services"
	businessflow "github.com/wolfsbane9513/influencer-ai/business_flow"
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/repository"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting InfluencerAI application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// migrateSchema applies the schema for all campaign domain models
func migrateSchema(db *gorm.DB) error {
	// Enum types referenced by the models; AutoMigrate does not create them
	enums := []struct{ name, values string }{
		{"campaign_stage", "'starting','discovery','negotiating','contracting','completed','failed','cancelled'"},
		{"negotiation_phase", "'pending','calling','monitoring','accepted','declined','needs_followup','timed_out','error'"},
		{"contract_tier", "'micro','standard','premium'"},
	}
	for _, e := range enums {
		stmt := fmt.Sprintf(
			"DO $$ BEGIN CREATE TYPE %s AS ENUM (%s); EXCEPTION WHEN duplicate_object THEN NULL; END $$;",
			e.name, e.values)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create enum type %s: %w", e.name, err)
		}
	}

	if err := db.AutoMigrate(
		&models.Creator{},
		&models.Campaign{},
		&models.Negotiation{},
		&models.Contract{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := migrateSchema(db); err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	campaignRepo := repository.NewCampaignRepository(db)
	creatorRepo := repository.NewCreatorRepository(db)
	negotiationRepo := repository.NewNegotiationRepository(db)
	contractRepo := repository.NewContractRepository(db)

	// Seed the creator roster on first boot
	if err := ensureCreatorRoster(creatorRepo); err != nil {
		return nil, err
	}

	// Initialize services
	voiceService := services.NewVoiceServiceFromConfig(&cfg.Voice)
	embeddingService := services.NewEmbeddingService(&cfg.Embedding, &cfg.Cache, rc)
	emailService := services.NewEmailServiceFromConfig(&cfg.Email)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Log that services are initialized
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize the campaign orchestrator
	campaignOrchestrator := orchestrator.NewCampaignOrchestrator(
		cfg,
		campaignRepo,
		creatorRepo,
		negotiationRepo,
		contractRepo,
		voiceService,
		embeddingService,
		emailService,
		rc,
	)

	// Initialize flows
	campaignFlow := businessflow.NewCampaignFlow(
		campaignRepo,
		creatorRepo,
		negotiationRepo,
		contractRepo,
		campaignOrchestrator,
		db,
		rc,
		cfg,
	)

	// Initialize handlers
	campaignHandler := handlers.NewCampaignHandler(campaignFlow)
	creatorHandler := handlers.NewCreatorHandler(campaignFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		campaignHandler,
		creatorHandler,
		authMiddleware,
	)

	// Start the campaign janitor: it reaps campaigns left non-terminal by a
	// previous process (no live workflow past the campaign deadline).
	janitor := scheduler.NewCampaignJanitor(
		campaignRepo,
		campaignOrchestrator,
		time.Minute,
		cfg.Orchestrator.CampaignDeadline+15*time.Minute,
	)
	stopJanitor := janitor.Start(context.Background())
	stopFuncs = append(stopFuncs, stopJanitor)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureCreatorRoster seeds a starter roster when the creators table is empty
// so discovery has candidates to match against on a fresh deployment.
func ensureCreatorRoster(creatorRepo repository.CreatorRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := creatorRepo.Count(ctx, models.CreatorFilter{})
	if err != nil {
		return fmt.Errorf("failed to count creators: %w", err)
	}
	if count > 0 {
		return nil
	}

	roster := models.DefaultCreatorRoster()
	if err := creatorRepo.SaveBatch(ctx, roster); err != nil {
		return fmt.Errorf("failed to seed creator roster: %w", err)
	}

	log.Printf("Seeded creator roster with %d creators", len(roster))
	return nil
}
