package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"factura-scanner.backend/internal/config"
	"factura-scanner.backend/internal/domain/gateways"
	domainrepos "factura-scanner.backend/internal/domain/repositories"
	"factura-scanner.backend/internal/infrastructure/dedup"
	"factura-scanner.backend/internal/infrastructure/jobs"
	"factura-scanner.backend/internal/infrastructure/kapso"
	"factura-scanner.backend/internal/infrastructure/ocr"
	"factura-scanner.backend/internal/infrastructure/repositories"
	"factura-scanner.backend/internal/infrastructure/sheets"
	"factura-scanner.backend/internal/interfaces/http/handlers"
	"factura-scanner.backend/internal/interfaces/http/middleware"
	"factura-scanner.backend/internal/usecases"
	"factura-scanner.backend/pkg/background"
	"factura-scanner.backend/pkg/logger"
	pkgredis "factura-scanner.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Webhook dedup: Redis when configured, otherwise a node-local bounded set.
	var dedupStore domainrepos.WebhookDedupStore
	if cfg.Redis.URL != "" {
		redisClient, err := pkgredis.NewClient(cfg.Redis.URL, cfg.Redis.Password)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redisClient.Close()
		dedupStore = dedup.NewRedisStore(redisClient)
		log.Println("✅ Redis webhook dedup store")
	} else {
		dedupStore = dedup.NewMemoryStore()
		log.Println("ℹ️ In-memory webhook dedup store (single instance only)")
	}

	userRepo := repositories.NewUserRepository(db)
	docRepo := repositories.NewDocumentRepository(db)

	kapsoClient := kapso.NewClient(cfg.Kapso.APIKey, cfg.Kapso.PhoneNumberID,
		kapso.WithBaseURL(cfg.Kapso.BaseURL))
	extractor := ocr.NewGeminiClient(cfg.OCR.APIKey, cfg.OCR.Model)

	// Sheet store: Google Drive/Sheets when OAuth is configured, otherwise
	// local xlsx workbooks.
	var sheetStore gateways.SheetStore
	if cfg.HasGoogleOAuth() {
		sheetStore = sheets.NewGoogleStore(sheets.GoogleStoreConfig{
			ClientID:      cfg.Google.OAuthClientID,
			ClientSecret:  cfg.Google.OAuthClientSecret,
			RefreshToken:  cfg.Google.RefreshToken,
			DriveFolderID: cfg.Google.DriveFolderID,
		})
		log.Println("✅ Google Sheets store")
	} else {
		localStore, err := sheets.NewLocalStore(cfg.Google.LocalSheetDir)
		if err != nil {
			return fmt.Errorf("failed to initialize local sheet store: %w", err)
		}
		sheetStore = localStore
		log.Printf("ℹ️ Local xlsx sheet store at %s", cfg.Google.LocalSheetDir)
	}

	metrics := middleware.NewMetrics()

	registrationUsecase := usecases.NewRegistrationUsecase(userRepo, sheetStore)
	documentUsecase := usecases.NewDocumentUsecase(
		docRepo, userRepo, extractor, kapsoClient, sheetStore, background.NewGoRunner(),
	).WithOutcomeRecorder(metrics)
	webhookUsecase := usecases.NewWebhookUsecase(
		cfg.Webhook.Secret, dedupStore, registrationUsecase, documentUsecase, kapsoClient,
	)

	webhookHandler := handlers.NewWebhookHandler(webhookUsecase, metrics)
	healthHandler := handlers.NewHealthHandler(db)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweepJob := jobs.NewStaleDocumentSweep(docRepo, cfg.Sweep.Interval, cfg.Sweep.StuckAfter)
	go sweepJob.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(metrics.Middleware())

	registerRoutes(r, routeDeps{
		webhookHandler: webhookHandler,
		healthHandler:  healthHandler,
		metrics:        metrics,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		sweepJob.Stop()
		cancel()
	}()

	log.Printf("🚀 Factura Scanner starting on port %s", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
