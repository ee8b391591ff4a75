package config

import (
	"log"
	"os"
	"strconv"

	"github.com/Simplici0/preciario/internal/pricing"
)

const (
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultAppEnv        = "development"
	defaultMigrationsDir = "migrations"
	defaultCurrency      = "Bs"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	AppEnv        string
	MigrationsDir string
	Currency      string

	// Defaults seeds the pricing_defaults row the first time the database is
	// initialised; afterwards the row is edited from /admin/defaults.
	Defaults pricing.Defaults
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: could not read .env: %v", err)
	}

	cfg := Config{
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        envOr("DB_PATH", defaultDBPath),
		Port:          envOr("PORT", defaultPort),
		AppEnv:        envOr("APP_ENV", defaultAppEnv),
		MigrationsDir: envOr("MIGRATIONS_DIR", defaultMigrationsDir),
		Currency:      envOr("CURRENCY", defaultCurrency),
	}

	stock := pricing.DefaultPercentages()
	cfg.Defaults = pricing.Defaults{
		ProfitPercent:     envPercent("PROFIT_PERCENT", stock.ProfitPercent),
		InvoicePercent:    envPercent("INVOICE_PERCENT", stock.InvoicePercent),
		CommissionPercent: envPercent("COMMISSION_PERCENT", stock.CommissionPercent),
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the server runs in development mode, where pending
// migrations are applied on startup.
func (c Config) IsDev() bool {
	return c.AppEnv == defaultAppEnv
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envPercent(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 100 {
		log.Printf("warning: %s=%q is not a percentage between 0 and 100, using %v", key, raw, fallback)
		return fallback
	}
	return v
}
