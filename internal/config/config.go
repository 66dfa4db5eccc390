package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/validator"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	SMTP     SMTPConfig
	Redis    RedisConfig
	Payroll  PayrollConfig
	Leave    LeaveConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
	// AutoMigrate applies the embedded migrations on startup.
	AutoMigrate bool
}

// JWTConfig holds the verification key for tokens issued by the auth service.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Enabled reports whether outgoing mail is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type PayrollConfig struct {
	RatePolicy    string
	FixedEnhanced decimal.Decimal
	FixedNight    decimal.Decimal
	ExcludedStaff []string
}

type LeaveConfig struct {
	PolicyVersion int
}

type CronConfig struct {
	Enabled    bool
	AdminEmail string
}

// Load reads configuration from the environment. A .env file is optional.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "rota"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(maxConns),
		MinConns:    int32(minConns),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// SMTP configuration
	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", ""),
		FromName: getEnv("SMTP_FROM_NAME", "Rota Payroll"),
	}

	// Redis configuration
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	lockTTL, err := time.ParseDuration(getEnv("REDIS_LOCK_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_LOCK_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		LockTTL:  lockTTL,
	}

	// Payroll configuration
	fixedEnhanced, err := decimal.NewFromString(getEnv("PAYROLL_FIXED_ENHANCED_RATE", "14.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_FIXED_ENHANCED_RATE: %w", err)
	}
	fixedNight, err := decimal.NewFromString(getEnv("PAYROLL_FIXED_NIGHT_RATE", "15.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_FIXED_NIGHT_RATE: %w", err)
	}

	config.Payroll = PayrollConfig{
		RatePolicy:    getEnv("PAYROLL_RATE_POLICY", "substitute_standard"),
		FixedEnhanced: fixedEnhanced,
		FixedNight:    fixedNight,
		ExcludedStaff: getEnvSlice("PAYROLL_EXCLUDED_STAFF"),
	}

	// Leave configuration
	policyVersion, err := getEnvInt("LEAVE_POLICY_VERSION", 2)
	if err != nil {
		return nil, err
	}
	config.Leave = LeaveConfig{PolicyVersion: policyVersion}

	config.Cron = CronConfig{
		Enabled:    getEnvBool("CRON_ENABLED", true),
		AdminEmail: getEnv("ADMIN_EMAIL", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	switch c.Payroll.RatePolicy {
	case "substitute_standard", "fixed_defaults":
	default:
		return fmt.Errorf("PAYROLL_RATE_POLICY must be substitute_standard or fixed_defaults, got %q", c.Payroll.RatePolicy)
	}
	if c.Leave.PolicyVersion != 1 && c.Leave.PolicyVersion != 2 {
		return fmt.Errorf("LEAVE_POLICY_VERSION must be 1 or 2, got %d", c.Leave.PolicyVersion)
	}
	if c.SMTP.Enabled() && !validator.IsValidEmail(c.SMTP.From) {
		return fmt.Errorf("SMTP_FROM must be a valid address when SMTP_HOST is set")
	}
	if c.Cron.AdminEmail != "" && !validator.IsValidEmail(c.Cron.AdminEmail) {
		return fmt.Errorf("ADMIN_EMAIL is not a valid address: %q", c.Cron.AdminEmail)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
