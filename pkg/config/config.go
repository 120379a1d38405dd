// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full process configuration. Every field maps to one env key.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	/* ---- database ---- */
	DatabaseURL      string        `env:"DATABASE_URL"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	DBIdleTimeout    time.Duration `env:"DB_IDLE_TIMEOUT" envDefault:"30s"`
	DBMaxLifetime    time.Duration `env:"DB_MAX_LIFETIME" envDefault:"30m"`
	DBMaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns   int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`

	/* ---- auth ---- */
	JWTSecret    string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTTTL       time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AuthRequired bool          `env:"AUTH_REQUIRED" envDefault:"false"`

	/* ---- http ---- */
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	/* ---- documents ---- */
	StorageDriver  string        `env:"STORAGE_DRIVER" envDefault:"local"`
	UploadDir      string        `env:"UPLOAD_DIR" envDefault:"./uploads"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	SignedURLTTL   time.Duration `env:"SIGNED_URL_TTL" envDefault:"15m"`

	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_KEY"`
	SupabaseBucket     string `env:"SUPABASE_BUCKET" envDefault:"case-documents"`

	S3Bucket string `env:"S3_BUCKET"`
	S3Region string `env:"S3_REGION"`
}

// Load reads .env when present, then parses the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case "local":
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("STORAGE_DRIVER=supabase requires SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("STORAGE_DRIVER=s3 requires S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want local, supabase or s3)", c.StorageDriver)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c Config) IsProduction() bool { return c.AppEnv == "production" }
