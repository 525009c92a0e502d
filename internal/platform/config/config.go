package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultStorePath      = "data/storefront"
	defaultCatalogPath    = "catalog/products.yaml"
	defaultShippingFee    = 49
	defaultSessionCookie  = "trendora_cart"
	defaultSessionMaxAge  = 30 * 24 * time.Hour
	defaultTemplateGlob   = "web/templates/*.tmpl"
	defaultStaticDir      = "web/static"
	defaultEnvironment    = "local"
	defaultShutdownGrace  = 10 * time.Second
	defaultCatalogRefresh = 5 * time.Minute
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server      ServerConfig
	Store       StoreConfig
	Catalog     CatalogConfig
	Pricing     PricingConfig
	Web         WebConfig
	Environment string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig configures the embedded cart store.
type StoreConfig struct {
	Path     string
	InMemory bool
}

// CatalogConfig locates the product catalogue source.
type CatalogConfig struct {
	Path            string
	RefreshInterval time.Duration
}

// PricingConfig controls order summary calculation.
type PricingConfig struct {
	ShippingFee float64
}

// WebConfig groups presentation-layer settings.
type WebConfig struct {
	SessionCookieName string
	SessionSecret     string
	SessionMaxAge     time.Duration
	TemplateGlob      string
	StaticDir         string
	ReloadTemplates   bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	environment := strings.ToLower(stringWithDefault(lookup, "STOREFRONT_ENVIRONMENT", defaultEnvironment))

	cfg := Config{
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "STOREFRONT_SERVER_PORT", defaultPort),
			ReadTimeout:     durationWithDefault(lookup, "STOREFRONT_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "STOREFRONT_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "STOREFRONT_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "STOREFRONT_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownGrace),
		},
		Store: StoreConfig{
			Path:     stringWithDefault(lookup, "STOREFRONT_STORE_PATH", defaultStorePath),
			InMemory: boolWithDefault(lookup, "STOREFRONT_STORE_IN_MEMORY", false),
		},
		Catalog: CatalogConfig{
			Path:            stringWithDefault(lookup, "STOREFRONT_CATALOG_PATH", defaultCatalogPath),
			RefreshInterval: durationWithDefault(lookup, "STOREFRONT_CATALOG_REFRESH_INTERVAL", defaultCatalogRefresh),
		},
		Pricing: PricingConfig{
			ShippingFee: floatWithDefault(lookup, "STOREFRONT_PRICING_SHIPPING_FEE", defaultShippingFee),
		},
		Web: WebConfig{
			SessionCookieName: stringWithDefault(lookup, "STOREFRONT_WEB_SESSION_COOKIE", defaultSessionCookie),
			SessionSecret:     stringWithDefault(lookup, "STOREFRONT_WEB_SESSION_SECRET", ""),
			SessionMaxAge:     durationWithDefault(lookup, "STOREFRONT_WEB_SESSION_MAX_AGE", defaultSessionMaxAge),
			TemplateGlob:      stringWithDefault(lookup, "STOREFRONT_WEB_TEMPLATE_GLOB", defaultTemplateGlob),
			StaticDir:         stringWithDefault(lookup, "STOREFRONT_WEB_STATIC_DIR", defaultStaticDir),
			ReloadTemplates:   boolWithDefault(lookup, "STOREFRONT_WEB_RELOAD_TEMPLATES", environment == "local"),
		},
		Environment: environment,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if !cfg.Store.InMemory && strings.TrimSpace(cfg.Store.Path) == "" {
		missing = append(missing, "Store.Path")
	}
	if strings.TrimSpace(cfg.Catalog.Path) == "" {
		missing = append(missing, "Catalog.Path")
	}
	if cfg.Pricing.ShippingFee < 0 {
		missing = append(missing, "Pricing.ShippingFee")
	}
	if strings.TrimSpace(cfg.Web.SessionCookieName) == "" {
		missing = append(missing, "Web.SessionCookieName")
	}
	if cfg.Web.SessionMaxAge <= 0 {
		missing = append(missing, "Web.SessionMaxAge")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
