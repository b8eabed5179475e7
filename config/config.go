package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"nuggies/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	AdminDiscordID int64 // Only this user may trigger the role binding setup messages

	// Database configuration
	DatabaseURL  string
	DatabaseName string
	DBMaxConns   int32

	// Upstream services
	GeminiAPIKey    string
	GeminiModel     string
	TenorAPIKey     string
	UpstreamTimeout time.Duration

	// Bot configuration
	ClaimTimezone       string // IANA zone that defines the daily claim calendar day
	MaxConcurrentTasks  int64
	ConstantinopleImage string

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Location resolves ClaimTimezone, falling back to Europe/Berlin.
func (c *Config) Location() (*time.Location, error) {
	name := c.ClaimTimezone
	if name == "" {
		name = DefaultClaimTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid CLAIM_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

const (
	DefaultClaimTimezone  = "Europe/Berlin"
	DefaultGeminiModel    = "gemini-1.5-flash"
	DefaultAdminDiscordID = 241614046913101825
)

// load loads configuration from environment variables, after an optional .env file
func load() (*Config, error) {
	// A missing .env is normal in containers
	_ = godotenv.Load()

	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		AdminDiscordID: DefaultAdminDiscordID,

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),
		DBMaxConns:   10,

		// Upstream
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnvWithDefault("GEMINI_MODEL", DefaultGeminiModel),
		TenorAPIKey:     os.Getenv("TENOR_API_KEY"),
		UpstreamTimeout: 20 * time.Second,

		// Bot settings with defaults
		ClaimTimezone:       getEnvWithDefault("CLAIM_TIMEZONE", DefaultClaimTimezone),
		MaxConcurrentTasks:  32,
		ConstantinopleImage: getEnvWithDefault("CONSTANTINOPLE_IMAGE", "constantinople.png"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if adminID := os.Getenv("ADMIN_DISCORD_ID"); adminID != "" {
		parsed, err := strconv.ParseInt(strings.TrimSpace(adminID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_DISCORD_ID must be numeric: %w", err)
		}
		config.AdminDiscordID = parsed
	}
	if maxConns := os.Getenv("DB_MAX_CONNS"); maxConns != "" {
		if parsed, err := strconv.ParseInt(maxConns, 10, 32); err == nil && parsed > 0 {
			config.DBMaxConns = int32(parsed)
		}
	}
	if maxTasks := os.Getenv("MAX_CONCURRENT_TASKS"); maxTasks != "" {
		if parsed, err := strconv.ParseInt(maxTasks, 10, 64); err == nil && parsed > 0 {
			config.MaxConcurrentTasks = parsed
		}
	}
	if timeout := os.Getenv("UPSTREAM_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be a duration: %w", err)
		}
		config.UpstreamTimeout = parsed
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if _, err := config.Location(); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		DiscordToken:        "test-token",
		AdminDiscordID:      DefaultAdminDiscordID,
		DBMaxConns:          4,
		GeminiModel:         DefaultGeminiModel,
		UpstreamTimeout:     time.Second,
		ClaimTimezone:       DefaultClaimTimezone,
		MaxConcurrentTasks:  8,
		ConstantinopleImage: "constantinople.png",
		LogLevel:            "debug",
	}
}
