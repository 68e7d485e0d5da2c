package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/rentora/backend/internal/application/billing"
	apprental "github.com/rentora/backend/internal/application/rental"
	"github.com/rentora/backend/internal/infrastructure/audit"
	"github.com/rentora/backend/internal/infrastructure/config"
	"github.com/rentora/backend/internal/infrastructure/logger"
	"github.com/rentora/backend/internal/infrastructure/persistence"
	"github.com/rentora/backend/internal/interfaces/http/handler"
	"github.com/rentora/backend/internal/interfaces/http/middleware"
	"github.com/rentora/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Rentora Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	ownerRepo := persistence.NewGormOwnerRepository(db.DB)
	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	// Transaction scopes give services transactional repository sets
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)
	rentalScope := persistence.NewGormRentalTransactionScope(db.DB)

	// Audit trail writes asynchronously; Wait flushes it on shutdown
	auditLogger := audit.NewGormAuditLogger(db.DB, log)
	defer auditLogger.Wait()

	// Initialize application services
	invoiceService := appbilling.NewInvoiceService(billingScope, reservationRepo, invoiceRepo, auditLogger, log)
	batchService := appbilling.NewBatchService(billingScope, reservationRepo, auditLogger, log)
	reservationService := apprental.NewReservationService(rentalScope, reservationRepo, auditLogger, log)
	ownerService := apprental.NewOwnerService(ownerRepo)

	// Initialize handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, batchService, cfg.Batch.Timeout)
	reservationHandler := handler.NewReservationHandler(reservationService)
	ownerHandler := handler.NewOwnerHandler(ownerService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.ActingUser())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes
	r := router.NewRouter(engine)
	r.Register(invoiceHandler)
	r.Register(reservationHandler)
	r.Register(ownerHandler)
	r.Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
