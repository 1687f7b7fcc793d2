package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ASHISH26940/manim-asset-gateway/pkg/config"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/db"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/gateway"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/generation"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/handlers"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/middleware"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/store"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/upstream"
	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetOutput(gin.DefaultWriter)
	log.SetLevel(log.InfoLevel)
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("Starting Manim Asset Gateway...")

	cfg := config.LoadConfig()

	if cfg.DatabaseURL != "" {
		if err := db.InitDB(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.CloseDB()
	}

	assetStore := store.New(cfg.StoreDir, "/videos", store.ParsePolicy(cfg.StorePolicy))
	if err := assetStore.EnsureDirectory(); err != nil {
		log.Fatalf("Failed to prepare asset store directory %s: %v", cfg.StoreDir, err)
	}

	upstreamClient, err := upstream.NewClient(upstream.Options{BaseURL: cfg.UpstreamBaseURL})
	if err != nil {
		log.Fatalf("Failed to initialize upstream client: %v", err)
	}

	generationClient, err := generation.NewClient(generation.Options{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.GenerateTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize generation client: %v", err)
	}

	fetchGateway := gateway.New(assetStore, upstreamClient)
	apiHandlers := handlers.NewHandlers(cfg, fetchGateway, upstreamClient, generationClient)

	router := gin.Default()

	// Browser UI runs on another origin; Authorization must pass through
	// for the optional bearer-token guard.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", apiHandlers.HealthCheck)
	// Kept path and response shapes of the original proxy route.
	router.POST("/download-video", apiHandlers.DownloadVideo)
	// Downloaded assets are served straight from the store directory, so
	// the public URLs returned by /download-video resolve on this server.
	router.Static("/videos", assetStore.Dir())

	apiRoutes := router.Group("/api")
	apiRoutes.Use(middleware.AuthMiddleware(cfg.JwtSecret))
	{
		apiRoutes.POST("/generate", apiHandlers.Generate)
		apiRoutes.GET("/code/latest", apiHandlers.LatestCode)
		apiRoutes.GET("/videos", apiHandlers.ListVideos)
		apiRoutes.GET("/videos/:className/exists", apiHandlers.CheckVideoExists)
		apiRoutes.GET("/videos/:className/original", apiHandlers.OriginalVideoURL)
		apiRoutes.GET("/generations", apiHandlers.RecentGenerations)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Server listening on %s:%s (upstream %s)", cfg.Host, cfg.Port, cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Generation requests in flight can be minutes from finishing; five
	// seconds only drains the cheap endpoints, matching the upstream's own
	// fire-and-forget behavior for abandoned calls.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited gracefully.")
}
