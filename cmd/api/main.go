package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/config"
	"github.com/GTDGit/gtd_catalog/internal/database"
	"github.com/GTDGit/gtd_catalog/internal/handler"
	"github.com/GTDGit/gtd_catalog/internal/middleware"
	"github.com/GTDGit/gtd_catalog/internal/repository"
	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/worker"
)

// main is the application entrypoint for the catalog API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting catalog api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Create tables
	if err := database.CreateTables(db.DB); err != nil {
		log.Error().Err(err).Msg("schema setup failed")
		fmt.Fprintf(os.Stderr, "schema setup failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("schema ready")

	// 3b. Connect to Redis when configured
	var productCache service.ProductCache
	if cfg.RedisEnabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		productCache = cache.NewProductCache(redisClient, cfg.Cache.ProductsTTL)
		log.Info().Dur("ttl", cfg.Cache.ProductsTTL).Msg("product cache enabled")
	} else {
		log.Info().Msg("REDIS_HOST not set - product cache disabled")
	}

	// 4. Initialize image store
	imageStore, err := newImageStore(cfg)
	if err != nil {
		log.Error().Err(err).Msg("image store initialization failed")
		fmt.Fprintf(os.Stderr, "image store initialization failed: %v\n", err)
		os.Exit(1)
	}

	// 5. Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	imageRepo := repository.NewImageRepository(db)

	// 6. Initialize services
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(productRepo, productCache)
	imageSvc := service.NewImageService(productRepo, imageRepo, imageStore, productCache, cfg.ImageStore.MaxBytes)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(db),
		Category: handler.NewCategoryHandler(categorySvc),
		Product:  handler.NewProductHandler(productSvc),
		Image:    handler.NewImageHandler(imageSvc),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	router.MaxMultipartMemory = cfg.ImageStore.MaxBytes
	setupRoutes(router, handlers)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	if productCache != nil && cfg.Worker.CacheWarmInterval > 0 {
		go worker.NewCacheWarmWorker(productSvc, cfg.Worker.CacheWarmInterval).Start(ctx)
	}

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Image    *handler.ImageHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/health", handlers.Health.GetHealth)

	router.POST("/categories", handlers.Category.CreateCategory)
	router.GET("/categories", handlers.Category.ListCategories)
	router.PUT("/categories/:id", handlers.Category.ReplaceCategory)

	router.POST("/products", handlers.Product.CreateProduct)
	router.GET("/products", handlers.Product.ListProducts)
	router.GET("/products/:id", handlers.Product.GetProduct)
	router.POST("/products/:id/prices", handlers.Product.AddPriceTiers)

	router.POST("/images", handlers.Image.UploadImage)
	router.GET("/images", handlers.Image.ListImages)
}

func newImageStore(cfg *config.Config) (service.ImageStore, error) {
	switch cfg.ImageStore.Backend {
	case config.ImageStoreS3:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := service.NewS3ImageStore(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("storing images in S3")
		return store, nil
	default:
		if err := os.MkdirAll(cfg.ImageStore.LocalDir, 0o755); err != nil {
			return nil, fmt.Errorf("create image dir: %w", err)
		}
		log.Info().Str("dir", cfg.ImageStore.LocalDir).Msg("storing images on local disk")
		return service.NewLocalImageStore(cfg.ImageStore.LocalDir), nil
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
