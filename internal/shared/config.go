package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"prod"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR"`

	Store    string `env:"STORE" envDefault:"mysql"` // mysql | memory
	MySQLDSN string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/realty?parseTime=true&charset=utf8mb4,utf8&loc=UTC"`

	RedisAddr       string `env:"REDIS_ADDR"` // empty disables the cache
	RedisPass       string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix     string `env:"REDIS_PREFIX" envDefault:"realty:"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"900"`

	TenantSource string `env:"TENANT_SOURCE" envDefault:"file"` // file | mysql
	TenantsFile  string `env:"TENANTS_FILE" envDefault:"config/tenants.yaml"`

	StrapiBase  string `env:"STRAPI_BASE_URL"`
	StrapiToken string `env:"STRAPI_TOKEN"`
	StrapiRPS   int    `env:"STRAPI_RPS" envDefault:"5"`
	Workers     int    `env:"IMPORT_WORKERS" envDefault:"4"`

	LeadRatePerMinute int           `env:"LEAD_RATE_PER_MINUTE" envDefault:"10"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

// Load reads an optional .env file and then the process environment, which
// wins over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

func (c Config) validate() error {
	var errs []error
	switch c.Store {
	case "mysql", "memory":
	default:
		errs = append(errs, fmt.Errorf("STORE must be mysql or memory, got %q", c.Store))
	}
	switch c.TenantSource {
	case "file", "mysql":
	default:
		errs = append(errs, fmt.Errorf("TENANT_SOURCE must be file or mysql, got %q", c.TenantSource))
	}
	if c.TenantSource == "mysql" && c.Store != "mysql" {
		errs = append(errs, errors.New("TENANT_SOURCE=mysql requires STORE=mysql"))
	}
	if c.LeadRatePerMinute < 0 {
		errs = append(errs, errors.New("LEAD_RATE_PER_MINUTE must not be negative (0 disables throttling)"))
	}
	return errors.Join(errs...)
}

// ImporterErrors reports settings the importer needs on top of the common ones.
func (c Config) ImporterErrors() error {
	var errs []error
	if c.Store != "mysql" {
		errs = append(errs, fmt.Errorf("importer writes to MySQL; STORE must be mysql, got %q", c.Store))
	}
	if c.StrapiBase == "" {
		errs = append(errs, errors.New("STRAPI_BASE_URL is required"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("IMPORT_WORKERS must be positive"))
	}
	return errors.Join(errs...)
}
