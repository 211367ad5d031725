package main

import (
	"context"
	"crypto/cipher"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solace-backend/internal/api"
	"solace-backend/internal/config"
	"solace-backend/internal/crypto"
	"solace-backend/internal/handlers"
	"solace-backend/internal/llm"
	"solace-backend/internal/services"
	"solace-backend/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.Println("Starting Solace Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Unable to create database connection pool: %v", err)
	}
	defer dbpool.Close()

	// Ping DB to verify connection
	if err := dbpool.Ping(dbCtx); err != nil {
		log.Fatalf("FATAL: Unable to ping database: %v", err)
	}
	log.Println("Database connection pool established and pinged successfully.")

	// --- Optional At-Rest Encryption ---
	var aead cipher.AEAD
	if len(cfg.EncryptionKey) > 0 {
		aead, err = crypto.NewAESGCM(cfg.EncryptionKey)
		if err != nil {
			log.Fatalf("FATAL: Failed to create AES-GCM cipher: %v", err)
		}
		log.Println("AES-GCM cipher initialized; message content will be encrypted at rest.")
	} else {
		log.Println("No encryption key configured; message content stored as plaintext.")
	}

	// 3. Initialize Dependencies (Store, Providers, Services, Handlers)
	pgStore := postgres.NewPostgresStore(dbpool, aead)
	log.Println("Postgres store initialized.")

	// --- Build the Provider Fallback Chain ---
	var entries []llm.Entry
	if cfg.OpenAI.Enabled {
		provider := llm.NewOpenAIProvider(llm.ProviderConfig{
			Name:       "openai",
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.Model,
			Timeout:    cfg.OpenAI.Timeout,
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
		entries = append(entries, llm.Entry{
			Provider:   provider,
			Priority:   cfg.OpenAI.Priority,
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
	}
	if cfg.Anthropic.Enabled {
		provider := llm.NewAnthropicProvider(llm.ProviderConfig{
			Name:       "anthropic",
			APIKey:     cfg.Anthropic.APIKey,
			BaseURL:    cfg.Anthropic.BaseURL,
			Model:      cfg.Anthropic.Model,
			Timeout:    cfg.Anthropic.Timeout,
			MaxRetries: cfg.Anthropic.MaxRetries,
		})
		entries = append(entries, llm.Entry{
			Provider:   provider,
			Priority:   cfg.Anthropic.Priority,
			MaxRetries: cfg.Anthropic.MaxRetries,
		})
	}
	orchestrator := llm.NewOrchestrator(entries, cfg.RateLimitDelay)
	log.Printf("Orchestrator initialized with %d provider(s).", len(entries))

	// --- Initialize Services ---
	authService := services.NewAuthService(pgStore, cfg)
	log.Println("AuthService initialized.")
	chatService := services.NewChatService(pgStore, orchestrator, cfg.HistoryWindow)
	log.Println("ChatService initialized.")

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	log.Println("AuthHandler initialized.")
	chatHandler := handlers.NewChatHandlers(chatService)
	log.Println("ChatHandler initialized.")

	// 4. Setup Router & Inject Dependencies
	routerDeps := api.RouterDependencies{
		AuthHandler: authHandler,
		ChatHandler: chatHandler,
		Config:      cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// Run server in a goroutine so it doesn't block
	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	// Wait for interrupt signal
	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	// Create a deadline context for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
		log.Fatal("Forcing shutdown due to error.")
	}

	log.Println("Server shutdown complete.")
}
