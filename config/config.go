package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Harvest  HarvestConfig
	Calendar CalendarConfig
	Sync     SyncConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN      string
	MaxConns int
	MinConns int
}

// RedisConfig is optional; an empty Addr disables the sync lock and the
// calendar view cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HarvestConfig struct {
	BaseURL   string
	AccountID string
	Token     string
}

type CalendarConfig struct {
	MonthsPast   int
	MonthsFuture int
}

type SyncConfig struct {
	TenantID   string
	TenantName string
	CronSpec   string
	Enabled    bool
}

type AppConfig struct {
	Environment string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Harvest: HarvestConfig{
			BaseURL:   getEnv("HARVEST_BASE_URL", "https://api.harvestapp.com/v2"),
			AccountID: getEnv("HARVEST_ACCOUNT_ID", ""),
			Token:     getEnv("HARVEST_TOKEN", ""),
		},
		Calendar: CalendarConfig{
			MonthsPast:   getEnvAsInt("CALENDAR_MONTHS_PAST", 6),
			MonthsFuture: getEnvAsInt("CALENDAR_MONTHS_FUTURE", 6),
		},
		Sync: SyncConfig{
			TenantID:   getEnv("TENANT_ID", "harvest-default-tenant"),
			TenantName: getEnv("TENANT_NAME", "Harvest Default Tenant"),
			CronSpec:   getEnv("SYNC_CRON", "0 0 3 * * *"),
			Enabled:    getEnvAsBool("SYNC_CRON_ENABLED", false),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Calendar.MonthsPast < 0 || c.Calendar.MonthsFuture < 0 {
		return fmt.Errorf("CALENDAR_MONTHS_PAST and CALENDAR_MONTHS_FUTURE must not be negative")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}
