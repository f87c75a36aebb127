package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aramille1/olislab-product-catalog/common/logger"
	"github.com/aramille1/olislab-product-catalog/common/middleware"
	"github.com/aramille1/olislab-product-catalog/controllers"
	"github.com/aramille1/olislab-product-catalog/repository"
	"github.com/aramille1/olislab-product-catalog/routes"
	"github.com/aramille1/olislab-product-catalog/services"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	logger.Initialize(cfg.Env)
	defer zap.L().Sync()

	// --- 1. Initialization ---

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zap.L().Warn("Failed to parse REDIS_URL, falling back to default", zap.Error(err))
		redisOpts = &redis.Options{Addr: "localhost:6379"}
	}
	rdb := redis.NewClient(redisOpts)

	// --- 2. Dependency Injection (wiring the layers together) ---

	source := repository.NewSource(cfg.CatalogSource, cfg.SourceTimeout)
	catalog := services.NewCatalogService(source)

	bagCtx, cancelBags := context.WithCancel(context.Background())
	defer cancelBags()
	bagRepo := repository.NewBagRepository(cfg.BagTTL)
	bagRepo.StartSweeper(bagCtx, time.Minute)

	validator := controllers.NewRequestValidator()
	cache := controllers.NewCacheManager(rdb)
	productController := controllers.NewProductController(catalog, cache, validator)
	bagController := controllers.NewBagController(bagRepo, validator)

	// Warm the catalog. A failed first load is not fatal: the service
	// comes up unavailable and a later refresh retries. WarmCatalog also
	// invalidates list pages cached by an earlier process.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), cfg.SourceTimeout)
	if err := productController.WarmCatalog(warmCtx); err != nil {
		zap.L().Warn("Initial catalog load failed", zap.Error(err))
	}
	cancelWarm()

	// --- 3. HTTP server & middleware ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zap.L()))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), controllers.DefaultContextTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// --- 4. Route registration ---

	routes.RegisterRoutes(r, productController, bagController)

	// --- 5. Graceful shutdown ---

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Catalog service starting",
			zap.String("port", cfg.Port),
			zap.String("catalog_source", cfg.CatalogSource),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down catalog service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := rdb.Close(); err != nil {
		zap.L().Error("Failed to close Redis", zap.Error(err))
	}

	zap.L().Info("Catalog service stopped gracefully")
}
