package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the recommendation service.
// It is built once at startup and passed into components explicitly, so
// every component stays testable with a fixture configuration.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP API server.
// - HealthPort: The port for the monitoring server (healthz, metrics).
// - APIKey: The Geoapify API key (required).
// - GoogleAPIKey: The optional Google Places key enabling enrichment.
// - RateLimit: Requests per second allowed against the places provider.
// - SearchRadius: The default nearby-search radius in meters.
// - CachePath: The file path of the response cache database.
// - CacheTTL: How long a cached provider response stays fresh.
// - Database: Configuration settings for the PostgreSQL search log.
type Config struct {
	Env          string         // Env is the current environment: local, development, production.
	Port         int            // Port is the HTTP API server port.
	HealthPort   int            // HealthPort is the monitoring server port.
	APIKey       string         // The Geoapify API key for accessing the places provider.
	GoogleAPIKey string         // Optional Google Places API key for enrichment.
	RateLimit    int            // Provider requests per second.
	SearchRadius int            // Default nearby-search radius in meters.
	CachePath    string         // Path to the response cache database file.
	CacheTTL     time.Duration  // Freshness window for cached provider responses.
	Database     PostgresConfig // Database holds the postgres database configuration.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad loads the configuration from the environment (and an optional
// .env file) and returns a Config struct. It panics on unparsable values:
// a service with a broken configuration must not start.
func MustLoad() *Config {
	_ = godotenv.Load()

	port, err := strconv.Atoi(setDefaultEnv("BEACON_PORT", "8000"))
	if err != nil {
		panic("failed to parse port for API server from configuration")
	}

	healthPort, err := strconv.Atoi(setDefaultEnv("BEACON_HEALTH_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	rateLimit, err := strconv.Atoi(setDefaultEnv("BEACON_PROVIDER_RATE_LIMIT", "5"))
	if err != nil {
		panic("failed to parse provider rate limit from configuration, must be an integer")
	}

	radius, err := strconv.Atoi(setDefaultEnv("BEACON_SEARCH_RADIUS", "4000"))
	if err != nil {
		panic("failed to parse search radius from configuration, must be an integer")
	}

	cacheTTL, err := time.ParseDuration(setDefaultEnv("BEACON_CACHE_TTL", "1h"))
	if err != nil {
		panic("failed to parse cache TTL from configuration")
	}

	return &Config{
		Env:          setDefaultEnv("BEACON_ENV", "production"),
		Port:         port,
		HealthPort:   healthPort,
		APIKey:       os.Getenv("BEACON_GEOAPIFY_KEY"),
		GoogleAPIKey: os.Getenv("BEACON_GOOGLE_KEY"),
		RateLimit:    rateLimit,
		SearchRadius: radius,
		CachePath:    setDefaultEnv("BEACON_CACHE_PATH", ".cache/beacon.db"),
		CacheTTL:     cacheTTL,
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
