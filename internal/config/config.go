package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Limits   Limits
	Seed     SeedConfig
	LogLevel string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds database configuration. An empty URL runs the
// service without persistence.
type DatabaseConfig struct {
	URL string
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// SeedConfig is the learner created on first start with a database
type SeedConfig struct {
	Email    string
	Password string
}

// Limits bounds learner input
type Limits struct {
	RSAMaxPrime int64
	MaxBlocks   int
	// MaxTrialN bounds n for φ(n) and primality checks.
	MaxTrialN int64
}

// Load reads .env when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("HTTP_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", "change-me"),
			ExpiresIn: getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),
		},
		Limits: Limits{
			RSAMaxPrime: getEnvInt64("RSA_MAX_PRIME", 1_000_000),
			MaxBlocks:   getEnvInt("MAX_BLOCKS", 64),
			MaxTrialN:   getEnvInt64("MAX_TRIAL_N", 1_000_000_000_000),
		},
		Seed: SeedConfig{
			Email:    getEnv("DEFAULT_LEARNER_EMAIL", "instructor@cryptolab.local"),
			Password: getEnv("DEFAULT_LEARNER_PASSWORD", "1234"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Persistent reports whether a database is configured.
func (c *Config) Persistent() bool { return c.Database.URL != "" }

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + strconv.Itoa(c.Server.Port) }

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// String returns a string representation of the config
func (c *Config) String() string {
	db := "disabled"
	if c.Persistent() {
		db = "postgres (***)"
	}
	return fmt.Sprintf(`
HTTP Port: %d
Database: %s
JWT Secret: ***
JWT Expires In: %s
RSA Max Prime: %d
Max Blocks: %d
Max Trial N: %d
Default Learner: %s (password ***)
Log Level: %s`,
		c.Server.Port, db, c.JWT.ExpiresIn, c.Limits.RSAMaxPrime, c.Limits.MaxBlocks, c.Limits.MaxTrialN, c.Seed.Email, c.LogLevel,
	)
}
