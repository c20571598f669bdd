package config

import (
	"fmt"
	"net/netip"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logger   LoggerConfig   `yaml:"logger"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Payment  PaymentConfig  `yaml:"payment"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port int    `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	// TrustedProxies lists the addresses or CIDR ranges whose X-Forwarded-For
	// header is believed. Empty means the socket address is always used.
	TrustedProxies []string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES" env-separator:","`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `yaml:"host"              env:"DB_HOST"              env-default:"localhost"`
	Port            int    `yaml:"port"              env:"DB_PORT"              env-default:"5432"`
	User            string `yaml:"user"              env:"DB_USER"              env-default:"postgres"`
	Password        string `yaml:"password"          env:"DB_PASSWORD"`
	Database        string `yaml:"database"          env:"DB_NAME"              env-default:"storefront"`
	MaxConnections  int    `yaml:"max_connections"   env:"DB_MAX_CONNECTIONS"   env-default:"25"`
	MinConnections  int    `yaml:"min_connections"   env:"DB_MIN_CONNECTIONS"   env-default:"5"`
	MaxConnLifetime int    `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME" env-default:"300"` // seconds
	AutoMigrate     bool   `yaml:"auto_migrate"      env:"DB_AUTO_MIGRATE"      env-default:"false"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"` // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey    string        `yaml:"api_key"    env:"API_KEY"`
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTIssuer string        `yaml:"jwt_issuer" env:"JWT_ISSUER" env-default:"storefront"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"JWT_TOKEN_TTL" env-default:"1h"`
}

// RedisConfig holds the optional Redis connection used for checkout failure budgets.
// An empty address selects the in-memory limiter.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB" env-default:"0"`
}

// CheckoutConfig holds the business limits applied during order validation.
type CheckoutConfig struct {
	// DeliveryMethods are the methods the server-side validator accepts.
	DeliveryMethods []string `yaml:"delivery_methods" env:"CHECKOUT_DELIVERY_METHODS" env-default:"standard,express,collection"`
	// StorefrontDeliveryMethods are the methods the storefront UI offers.
	StorefrontDeliveryMethods []string      `yaml:"storefront_delivery_methods" env:"CHECKOUT_STOREFRONT_DELIVERY_METHODS" env-default:"courier_guy,pudo"`
	MaxOrderTotal             float64       `yaml:"max_order_total"             env:"CHECKOUT_MAX_ORDER_TOTAL"             env-default:"10000"`
	MinOrderTotal             float64       `yaml:"min_order_total"             env:"CHECKOUT_MIN_ORDER_TOTAL"             env-default:"0"`
	LargeQuantityThreshold    int           `yaml:"large_quantity_threshold"    env:"CHECKOUT_LARGE_QUANTITY_THRESHOLD"    env-default:"10"`
	FailureLimit              int           `yaml:"failure_limit"               env:"CHECKOUT_FAILURE_LIMIT"               env-default:"5"`
	AttemptLimit              int           `yaml:"attempt_limit"               env:"CHECKOUT_ATTEMPT_LIMIT"               env-default:"30"`
	FailureWindow             time.Duration `yaml:"failure_window"              env:"CHECKOUT_FAILURE_WINDOW"              env-default:"15m"`
}

// AlertsConfig holds the critical-alert side channel configuration.
type AlertsConfig struct {
	WebhookURL string        `yaml:"webhook_url" env:"ALERT_WEBHOOK_URL"`
	Timeout    time.Duration `yaml:"timeout"     env:"ALERT_TIMEOUT" env-default:"5s"`
}

// ArchiveConfig holds AWS S3 configuration for audit log archives.
type ArchiveConfig struct {
	S3Enabled bool   `yaml:"s3_enabled" env:"S3_ENABLED" env-default:"false"`
	Bucket    string `yaml:"bucket"     env:"S3_BUCKET"`
	Region    string `yaml:"region"     env:"S3_REGION" env-default:"us-east-1"`
	Prefix    string `yaml:"prefix"     env:"S3_PREFIX" env-default:"audit/"` // Path prefix within bucket
	LocalDir  string `yaml:"local_dir"  env:"ARCHIVE_LOCAL_DIR" env-default:"data/audit-archive"`
}

// PaymentConfig holds the bank details shown for manual EFT payments.
type PaymentConfig struct {
	BankName        string `yaml:"bank_name"        env:"PAYMENT_BANK_NAME"        env-default:"First National Bank"`
	AccountHolder   string `yaml:"account_holder"   env:"PAYMENT_ACCOUNT_HOLDER"   env-default:"Storefront (Pty) Ltd"`
	AccountNumber   string `yaml:"account_number"   env:"PAYMENT_ACCOUNT_NUMBER"`
	BranchCode      string `yaml:"branch_code"      env:"PAYMENT_BRANCH_CODE"      env-default:"250655"`
	ReferencePrefix string `yaml:"reference_prefix" env:"PAYMENT_REFERENCE_PREFIX" env-default:"ORD-"`
}

// Load loads configuration from environment variables, optionally layered
// over a YAML file named by CONFIG_PATH.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		return err
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if len(c.Checkout.DeliveryMethods) == 0 {
		return fmt.Errorf("at least one delivery method is required")
	}

	if c.Checkout.MaxOrderTotal <= 0 {
		return fmt.Errorf("max order total must be positive")
	}

	if c.Checkout.MinOrderTotal < 0 || c.Checkout.MinOrderTotal >= c.Checkout.MaxOrderTotal {
		return fmt.Errorf("min order total must be between 0 and max order total")
	}

	if c.Checkout.LargeQuantityThreshold < 1 {
		return fmt.Errorf("large quantity threshold must be at least 1")
	}

	if c.Archive.S3Enabled {
		if c.Archive.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.Archive.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// DeliveryMethodMismatch returns the delivery methods the storefront offers
// that the server-side validator would reject. The two lists are kept apart
// on purpose; callers report the difference instead of merging them.
func (c *CheckoutConfig) DeliveryMethodMismatch() []string {
	var mismatched []string
	for _, m := range c.StorefrontDeliveryMethods {
		if !slices.Contains(c.DeliveryMethods, m) {
			mismatched = append(mismatched, m)
		}
	}
	return mismatched
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is trusted as a
// single host.
func (c *ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
