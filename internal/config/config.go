// Package config loads and validates the LMS backend configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the LMS_ prefix (e.g., LMS_DATABASE_HOST
// overrides database.host in the YAML). The same binary runs with a config.yaml
// in local development and with pure environment variables in containers.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Tenancy   TenancyConfig   `mapstructure:"tenancy"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// Environment is "development" or "production". Gin runs in release mode
	// and debug payloads are suppressed in production.
	Environment string `mapstructure:"environment"`
}

// IsProduction reports whether the server runs with production settings.
func (s *ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
}

// RedisConfig holds the optional Redis connection used for the tenant lookup
// cache and the distributed rate limiter.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds bearer token validation settings
type AuthConfig struct {
	// Issuer, when set, must match the "iss" claim of incoming tokens.
	Issuer string `mapstructure:"issuer"`
	// TokenHeader is the header carrying the bearer token.
	TokenHeader string `mapstructure:"token_header"`
}

// TenancyConfig holds tenant resolution and access guard settings
type TenancyConfig struct {
	// ReservedSubdomains never resolve to an organization.
	ReservedSubdomains []string `mapstructure:"reserved_subdomains"`
	// OrgQueryParam names the explicit organization query parameter.
	OrgQueryParam string `mapstructure:"org_query_param"`
	// OrganizationHeader lets multi-organization principals pick the active organization.
	OrganizationHeader string `mapstructure:"organization_header"`
	// DebugErrors adds diagnostic payloads to organization rejections.
	// Forced off in production.
	DebugErrors  bool               `mapstructure:"debug_errors"`
	Cache        TenantCacheConfig  `mapstructure:"cache"`
	Branding     BrandingConfig     `mapstructure:"branding"`
	QualityGuest QualityGuestConfig `mapstructure:"quality_guest"`
}

// TenantCacheConfig controls caching of domain lookups in Redis
type TenantCacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	TTL         time.Duration `mapstructure:"ttl"`
	NegativeTTL time.Duration `mapstructure:"negative_ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// BrandingConfig holds the platform branding used when an organization leaves a field empty
type BrandingConfig struct {
	Name           string `mapstructure:"name"`
	Logo           string `mapstructure:"logo"`
	Favicon        string `mapstructure:"favicon"`
	PrimaryColor   string `mapstructure:"primary_color"`
	SecondaryColor string `mapstructure:"secondary_color"`
	AccentColor    string `mapstructure:"accent_color"`
	FooterText     string `mapstructure:"footer_text"`
}

// QualityGuestConfig holds the route allowlist for quality guests
type QualityGuestConfig struct {
	AllowedRoutes []string `mapstructure:"allowed_routes"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
	TLS          TLSConfig          `mapstructure:"tls"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
	// Backend is "memory" (per-process token buckets) or "redis" (shared GCRA limiter).
	Backend string `mapstructure:"backend"`
}

// TLSConfig holds TLS/HTTPS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	ServiceName string        `mapstructure:"service_name"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// DefaultQualityGuestRoutes is the route allowlist applied when none is configured.
var DefaultQualityGuestRoutes = []string{
	"/api/user",
	"/api/quality/dashboard/stats",
	"/api/quality/indicators",
	"/api/quality/indicators/*",
	"/api/quality/indicators/*/evidence",
	"/api/quality/reports/**",
}

// bindEnvVars explicitly binds environment variables to config keys.
// AutomaticEnv() alone does not reach nested structs during Unmarshal.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Server
		"server.host",
		"server.port",
		"server.base_url",
		"server.read_timeout",
		"server.write_timeout",
		"server.environment",

		// Database
		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.ssl_mode",
		"database.max_connections",
		"database.min_idle_connections",
		"database.auto_migrate",

		// Redis
		"redis.enabled",
		"redis.addr",
		"redis.password",
		"redis.db",

		// Auth
		"auth.issuer",
		"auth.token_header",

		// Tenancy
		"tenancy.reserved_subdomains",
		"tenancy.org_query_param",
		"tenancy.organization_header",
		"tenancy.debug_errors",
		"tenancy.cache.enabled",
		"tenancy.cache.ttl",
		"tenancy.cache.negative_ttl",
		"tenancy.cache.key_prefix",
		"tenancy.branding.name",
		"tenancy.branding.logo",
		"tenancy.branding.favicon",
		"tenancy.branding.primary_color",
		"tenancy.branding.secondary_color",
		"tenancy.branding.accent_color",
		"tenancy.branding.footer_text",
		"tenancy.quality_guest.allowed_routes",

		// Security
		"security.cors.allowed_origins",
		"security.cors.allowed_methods",
		"security.rate_limiting.enabled",
		"security.rate_limiting.requests_per_minute",
		"security.rate_limiting.burst",
		"security.rate_limiting.backend",
		"security.tls.enabled",
		"security.tls.cert_file",
		"security.tls.key_file",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.service_name",
		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/lms")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("LMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Database.Password = expandEnv(cfg.Database.Password)
	cfg.Redis.Password = expandEnv(cfg.Redis.Password)

	if cfg.Server.IsProduction() {
		cfg.Tenancy.DebugErrors = false
	}
	if len(cfg.Tenancy.QualityGuest.AllowedRoutes) == 0 {
		cfg.Tenancy.QualityGuest.AllowedRoutes = append([]string(nil), DefaultQualityGuestRoutes...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "lms")
	v.SetDefault("database.user", "lms")
	v.SetDefault("database.ssl_mode", "require")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Auth defaults
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.token_header", "Authorization")

	// Tenancy defaults
	v.SetDefault("tenancy.reserved_subdomains", []string{"www", "admin"})
	v.SetDefault("tenancy.org_query_param", "org")
	v.SetDefault("tenancy.organization_header", "X-Organization-ID")
	v.SetDefault("tenancy.debug_errors", true)
	v.SetDefault("tenancy.cache.enabled", true)
	v.SetDefault("tenancy.cache.ttl", "5m")
	v.SetDefault("tenancy.cache.negative_ttl", "30s")
	v.SetDefault("tenancy.cache.key_prefix", "lms:tenant:")
	v.SetDefault("tenancy.branding.name", "LMS")
	v.SetDefault("tenancy.branding.primary_color", "#1f2937")
	v.SetDefault("tenancy.branding.secondary_color", "#4b5563")
	v.SetDefault("tenancy.branding.accent_color", "#2563eb")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.requests_per_minute", 120)
	v.SetDefault("security.rate_limiting.burst", 20)
	v.SetDefault("security.rate_limiting.backend", "memory")
	v.SetDefault("security.tls.enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.service_name", "lms-backend")
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
}

// expandEnv expands environment variables in the format ${VAR_NAME}
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	validEnvs := map[string]bool{"": true, "development": true, "production": true}
	if !validEnvs[strings.ToLower(c.Server.Environment)] {
		return fmt.Errorf("invalid server environment: %s (must be development or production)", c.Server.Environment)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}

	switch c.Security.RateLimiting.Backend {
	case "", "memory":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("security.rate_limiting.backend=redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("invalid rate limiting backend: %s (must be memory or redis)", c.Security.RateLimiting.Backend)
	}
	if c.Security.RateLimiting.Enabled && c.Security.RateLimiting.RequestsPerMinute < 1 {
		return fmt.Errorf("security.rate_limiting.requests_per_minute must be positive")
	}

	if c.Tenancy.Cache.Enabled && c.Tenancy.Cache.TTL < 0 {
		return fmt.Errorf("tenancy.cache.ttl must not be negative")
	}
	for _, route := range c.Tenancy.QualityGuest.AllowedRoutes {
		if !strings.HasPrefix(route, "/") {
			return fmt.Errorf("invalid quality guest route %q: must start with /", route)
		}
	}

	if c.Security.TLS.Enabled {
		if c.Security.TLS.CertFile == "" {
			return fmt.Errorf("security.tls.cert_file is required when TLS is enabled")
		}
		if c.Security.TLS.KeyFile == "" {
			return fmt.Errorf("security.tls.key_file is required when TLS is enabled")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetAddress returns the server address in host:port format
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
