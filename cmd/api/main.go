package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/bebel/pendencias/pkg/validator"

	"github.com/bebel/pendencias/internal/adapter/handler"
	"github.com/bebel/pendencias/internal/adapter/repository"
	"github.com/bebel/pendencias/internal/infrastructure/cache"
	"github.com/bebel/pendencias/internal/infrastructure/database"
	httpmw "github.com/bebel/pendencias/internal/infrastructure/http/middleware"
	"github.com/bebel/pendencias/internal/usecase/pendencia"
	"github.com/bebel/pendencias/internal/usecase/profissional"
	"github.com/bebel/pendencias/internal/usecase/system"
	"github.com/bebel/pendencias/pkg/config"
)

// @title           Bebel Pendências API
// @version         1.0
// @description     Pendências Kanban board backend: list, update and create pendências, list professionals, diagnostics.
// @BasePath        /api

// listCache is satisfied by both cache stores
type listCache interface {
	pendencia.Cache
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(httpmw.RequestID())
	e.Use(httpmw.AccessLog(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Schema is managed by sql-migrate; apply on boot only when enabled.
	if cfg.Database.AutoMigrate {
		log.Println("🔄 Applying sql-migrate migrations...")
		n, err := database.Migrate(db)
		if err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		log.Printf("✅ Applied %d migrations", n)
	} else {
		log.Println("🔄 Skipping migrations; set DB_AUTO_MIGRATE=true to apply them on boot")
	}

	// Initialize list cache
	var listStore listCache
	if cfg.Cache.RedisURL != "" {
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		listStore = redisStore
	} else {
		log.Println("⚠️  REDIS_URL not set, using in-memory list cache")
		listStore = cache.NewMemoryStore()
	}
	defer listStore.Close()

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	pendenciaRepo := repository.NewPendenciaRepository(db)
	profissionalRepo := repository.NewProfissionalRepository(db)
	schemaRepo := repository.NewSchemaRepository(db)

	// Initialize services
	log.Println("✨ Initializing services...")
	pendenciaService := pendencia.NewPendenciaService(pendenciaRepo, profissionalRepo, listStore, pendencia.Config{
		DefaultConversaID: cfg.Cache.DefaultConversaID,
		ListLimit:         cfg.Cache.ListLimit,
		CacheTTL:          cfg.Cache.ListTTL,
	}, logger)
	profissionalService := profissional.NewProfissionalService(profissionalRepo, logger)
	systemService := system.NewSystemService(schemaRepo, pendenciaRepo, profissionalRepo, logger)

	// Initialize handlers
	pendenciaHandler := handler.NewPendenciaHandler(pendenciaService, logger)
	profissionalHandler := handler.NewProfissionalHandler(profissionalService, logger)
	systemHandler := handler.NewSystemHandler(systemService, logger)

	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, pendenciaHandler, profissionalHandler, systemHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/api/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
