package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// ProviderSettings holds one AI provider's configuration. A provider is
// enabled by the presence of its API key; priority decides fallback order
// (lower value is tried first).
type ProviderSettings struct {
	Enabled    bool
	APIKey     string
	BaseURL    string
	Model      string
	Priority   int
	Timeout    time.Duration
	MaxRetries int
}

// Config holds application configuration values loaded from environment variables.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	HTTPPort        string
	TokenExpiration time.Duration
	EncryptionKey   []byte // optional; 32 raw bytes enables content encryption at rest

	HistoryWindow  int           // turns of context handed to the orchestrator
	RateLimitDelay time.Duration // pause before retrying a throttled provider

	OpenAI    ProviderSettings
	Anthropic ProviderSettings
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.")
		// Don't fail if .env is not present, might be in production
	}

	port := getEnv("HTTP_PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "default-super-secret-key") // CHANGE THIS IN PRODUCTION!
	dbURL := getEnv("DATABASE_URL", "")                           // No default, should fail if not set
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set.")
	}

	tokenExpHours := getEnvInt("JWT_EXPIRATION_HOURS", 24)

	// Encryption key is optional: when unset, message content is stored in
	// plaintext. When set it MUST be 64 hex characters (32 bytes).
	var encryptionKey []byte
	if keyHex := getEnv("ENCRYPTION_KEY", ""); keyHex != "" {
		keyBytes, err := hex.DecodeString(keyHex)
		if err != nil {
			log.Fatalf("FATAL: Failed to decode ENCRYPTION_KEY from hex: %v", err)
		}
		if len(keyBytes) != 32 {
			log.Fatalf("FATAL: ENCRYPTION_KEY must be 32 bytes (64 hex characters) long, got %d bytes", len(keyBytes))
		}
		encryptionKey = keyBytes
	}

	cfg := &Config{
		HTTPPort:        port,
		JWTSecret:       jwtSecret,
		DatabaseURL:     dbURL,
		TokenExpiration: time.Hour * time.Duration(tokenExpHours),
		EncryptionKey:   encryptionKey,
		HistoryWindow:   getEnvInt("HISTORY_WINDOW", 10),
		RateLimitDelay:  time.Duration(getEnvInt("RATE_LIMIT_DELAY_MS", 500)) * time.Millisecond,
		OpenAI:          loadProvider("OPENAI", 1, "gpt-4o-mini"),
		Anthropic:       loadProvider("ANTHROPIC", 2, "claude-3-5-haiku-latest"),
	}

	if !cfg.OpenAI.Enabled && !cfg.Anthropic.Enabled {
		return nil, fmt.Errorf("no AI provider configured: set OPENAI_API_KEY and/or ANTHROPIC_API_KEY")
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, TokenExp=%s, Encryption=%t, Providers=[openai:%t anthropic:%t]",
		cfg.HTTPPort, cfg.TokenExpiration, cfg.EncryptionKey != nil, cfg.OpenAI.Enabled, cfg.Anthropic.Enabled)

	return cfg, nil
}

// loadProvider reads one provider's settings from its env prefix. The API key
// never gets a default: credentials come only from the environment.
func loadProvider(prefix string, defaultPriority int, defaultModel string) ProviderSettings {
	apiKey := getEnv(prefix+"_API_KEY", "")
	return ProviderSettings{
		Enabled:    apiKey != "",
		APIKey:     apiKey,
		BaseURL:    getEnv(prefix+"_BASE_URL", ""),
		Model:      getEnv(prefix+"_MODEL", defaultModel),
		Priority:   getEnvInt(prefix+"_PRIORITY", defaultPriority),
		Timeout:    time.Duration(getEnvInt(prefix+"_TIMEOUT_MS", 30000)) * time.Millisecond,
		MaxRetries: getEnvInt(prefix+"_MAX_RETRIES", 1),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable, falling back (with a
// warning) on missing or unparsable values.
func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warnf("Invalid %s '%s', using default %d. Error: %v", key, value, fallback, err)
		return fallback
	}
	return n
}
