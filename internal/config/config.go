package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"invoicer/internal/logger"
	"invoicer/internal/model"
	"invoicer/internal/service"

	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
)

const DefaultEnvFile = "configs/.env"

type Config struct {
	// HTTP
	Port        string
	CORSOrigins []string
	WSJWTSecret string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string
	SeedDemo   bool

	// Invoicing
	StorageDir          string
	InvoicePrefix       string
	InvoiceStart        int64
	InvoicePad          int
	DueDays             int
	DefaultTaxRate      float64
	DefaultCurrency     string
	DefaultPaymentTerms string
	RenderConcurrency   int64
	EmbedLogo           bool

	Issuer model.IssuerProfile

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads envFile when it exists, then builds the configuration from the
// process environment. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var errs []string
	config := &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		WSJWTSecret: getEnv("WS_JWT_SECRET", ""),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "memory")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "invoicer"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "storage/invoicer.db"),
		SeedDemo:   getEnvBool("SEED_DEMO_DATA", true, &errs),

		StorageDir:          getEnv("STORAGE_DIR", "storage/invoices"),
		InvoicePrefix:       getEnv("INVOICE_PREFIX", "INV-"),
		InvoiceStart:        int64(getEnvInt("INVOICE_START", 10001, &errs)),
		InvoicePad:          getEnvInt("INVOICE_PAD", 5, &errs),
		DueDays:             getEnvInt("DUE_DAYS", 30, &errs),
		DefaultTaxRate:      getEnvFloat("DEFAULT_TAX_RATE", 10, &errs),
		DefaultCurrency:     strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		DefaultPaymentTerms: getEnv("DEFAULT_PAYMENT_TERMS", "Payment due within 30 days"),
		RenderConcurrency:   int64(getEnvInt("RENDER_CONCURRENCY", 4, &errs)),
		EmbedLogo:           getEnvBool("EMBED_LOGO", true, &errs),

		Issuer: model.IssuerProfile{
			ID:       1,
			Company:  getEnv("ISSUER_COMPANY", "Kimai Time Tracking"),
			Address:  getEnv("ISSUER_ADDRESS", "123 Kimai Street, Kimai City, 10001"),
			Phone:    getEnv("ISSUER_PHONE", "(123) 456-7890"),
			Email:    getEnv("ISSUER_EMAIL", "info@kimai.org"),
			Website:  getEnv("ISSUER_WEBSITE", "www.kimai.org"),
			TaxID:    getEnv("ISSUER_TAX_ID", ""),
			LogoPath: getEnv("ISSUER_LOGO_PATH", ""),
		},

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be memory, sqlite or postgres, got %q", c.DBDriver)
	}
	if c.InvoiceStart < 0 {
		return fmt.Errorf("INVOICE_START must not be negative")
	}
	if c.InvoicePad < 0 {
		return fmt.Errorf("INVOICE_PAD must not be negative")
	}
	if c.DueDays < 0 {
		return fmt.Errorf("DUE_DAYS must not be negative")
	}
	if c.DefaultTaxRate < 0 {
		return fmt.Errorf("DEFAULT_TAX_RATE must not be negative")
	}
	if _, err := currency.ParseISO(c.DefaultCurrency); err != nil {
		return fmt.Errorf("DEFAULT_CURRENCY %q is not an ISO 4217 code", c.DefaultCurrency)
	}
	if c.RenderConcurrency < 1 {
		return fmt.Errorf("RENDER_CONCURRENCY must be at least 1")
	}
	if c.Issuer.Company == "" {
		return fmt.Errorf("ISSUER_COMPANY is required")
	}
	return nil
}

// PostgresDSN builds the connection string used when DB_DRIVER=postgres.
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// DSN returns the data source for the configured driver; empty for memory.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN()
	case "sqlite":
		return c.SQLitePath
	default:
		return ""
	}
}

// InvoiceDefaults returns the values applied when a request leaves them out.
func (c *Config) InvoiceDefaults() service.InvoiceDefaults {
	return service.InvoiceDefaults{
		TaxRate:      c.DefaultTaxRate,
		Currency:     c.DefaultCurrency,
		PaymentTerms: c.DefaultPaymentTerms,
		DueDays:      c.DueDays,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]string) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be an integer, got %q", key, raw))
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64, errs *[]string) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be a number, got %q", key, raw))
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool, errs *[]string) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be true or false, got %q", key, raw))
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
