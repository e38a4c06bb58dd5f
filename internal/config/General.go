package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment
// variables. These are populated at startup by the LoadConfig function.
var (
	// GraphQLEndpoint is the vault indexer GraphQL API the datafetcher queries.
	GraphQLEndpoint string

	// WebPort is the port the HTTP API listens on.
	WebPort string

	// CacheTTLSeconds is how long analytics responses stay cached before expiry.
	CacheTTLSeconds int

	// DBHost, DBPort, DBUser, DBPassword, DBName, DBSSLMode configure the
	// Postgres connection used for analysis snapshots.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. The GraphQL endpoint and database settings are
// required; the web port and cache TTL have defaults.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	GraphQLEndpoint, err = getEnv("VAE_GRAPHQL_ENDPOINT")
	if err != nil {
		return err
	}

	WebPort = getEnvWithDefault("VAE_WEB_PORT", "8080")

	CacheTTLSeconds, err = getEnvAsIntWithDefault("VAE_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return err
	}

	DBHost, err = getEnv("DB_HOST")
	if err != nil {
		return err
	}
	DBPort, err = getEnvAsIntWithDefault("DB_PORT", 5432)
	if err != nil {
		return err
	}
	DBUser, err = getEnv("DB_USER")
	if err != nil {
		return err
	}
	DBPassword, err = getEnv("DB_PASSWORD")
	if err != nil {
		return err
	}
	DBName, err = getEnv("DB_NAME")
	if err != nil {
		return err
	}
	DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	log.Debug().
		Str("GraphQLEndpoint", GraphQLEndpoint).
		Str("WebPort", WebPort).
		Int("CacheTTLSeconds", CacheTTLSeconds).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvWithDefault retrieves a string environment variable or the default.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an environment variable as an int, the
// default when unset. Returns error when set but invalid.
func getEnvAsIntWithDefault(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}
