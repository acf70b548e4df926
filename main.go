package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CrowderSoup/gamific/database"
	"github.com/CrowderSoup/gamific/handlers"
	"github.com/CrowderSoup/gamific/services"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables from .env file
	if err := services.LoadEnv(".env"); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	configPath := os.Getenv("GAMIFIC_CONFIG")
	if configPath == "" {
		configPath = "gamific.yaml"
	}
	cfg, err := services.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	store, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Revoked tokens live in Redis when it is configured
	var revoked services.RevocationStore
	if cfg.RedisURL != "" {
		redisStore, err := services.NewRedisRevocationStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}
		defer redisStore.Close()
		revoked = redisStore
		log.Printf("Using Redis for token revocation")
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run(ctx)

	// Initialize services
	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTIssuer, revoked)
	boardService := services.NewBoardService(store, hub)

	r := handlers.NewRouter(authService, boardService, hub, store, cfg.CORSOrigins)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(handlers.LoggingMiddleware(r)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
