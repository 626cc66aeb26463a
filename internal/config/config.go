package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string
	GroqAPIKey   string

	// Data paths
	ProfileFilePath string
	DatabasePath    string

	// Server
	ListenAddr string

	// Risk pipeline: alternatives are requested only when the risk score
	// reaches this value. See DESIGN.md for why the default is 1.0.
	AlternativesThreshold float64
}

const (
	defaultProfileFile   = "data/user_profiles.json"
	defaultDatabasePath  = "data/nutriwise.db"
	defaultListenAddr    = ":8080"
	defaultAltsThreshold = 1.0
)

// DataDir returns the directory holding the SQLite database and other
// on-disk state.
func (c *Config) DataDir() string {
	return filepath.Dir(c.DatabasePath)
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	// A local .env file is optional.
	_ = godotenv.Load()

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	groqAPIKey := os.Getenv("GROQ_API_KEY")
	if groqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	profileFile := os.Getenv("NUTRIWISE_PROFILE_FILE")
	if profileFile == "" {
		profileFile = defaultProfileFile
	}

	dbPath := os.Getenv("NUTRIWISE_DB_PATH")
	if dbPath == "" {
		dbPath = defaultDatabasePath
	}

	listenAddr := os.Getenv("NUTRIWISE_LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	threshold := defaultAltsThreshold
	if raw := os.Getenv("RISK_ALTERNATIVES_THRESHOLD"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RISK_ALTERNATIVES_THRESHOLD %q: %w", raw, err)
		}
		if parsed < 0 || parsed > 1 {
			return nil, fmt.Errorf("RISK_ALTERNATIVES_THRESHOLD must be in [0,1], got %v", parsed)
		}
		threshold = parsed
	}

	return &Config{
		GeminiAPIKey:          geminiAPIKey,
		GroqAPIKey:            groqAPIKey,
		ProfileFilePath:       profileFile,
		DatabasePath:          dbPath,
		ListenAddr:            listenAddr,
		AlternativesThreshold: threshold,
	}, nil
}
