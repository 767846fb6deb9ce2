package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	StoragePath string `env:"STORAGE_PATH" envDefault:"./storage"`

	PrintfulAPIKey  string        `env:"PRINTFUL_API_KEY"`
	PrintfulBaseURL string        `env:"PRINTFUL_BASE_URL" envDefault:"https://api.printful.com"`
	PrintfulStoreID string        `env:"PRINTFUL_STORE_ID"`
	ProductID       int64         `env:"MOCKUP_PRODUCT_ID" envDefault:"257"`
	VariantIDs      []int64       `env:"MOCKUP_VARIANT_IDS" envDefault:"8852" envSeparator:","`
	OutputFormat    string        `env:"MOCKUP_OUTPUT_FORMAT" envDefault:"jpg"`
	IncludeExtras   bool          `env:"INCLUDE_EXTRA_MOCKUPS" envDefault:"false"`
	PollInterval    time.Duration `env:"MOCKUP_POLL_INTERVAL" envDefault:"5s"`
	MaxPollAttempts int           `env:"MOCKUP_MAX_POLL_ATTEMPTS" envDefault:"15"`
	RequestTimeout  time.Duration `env:"PRINTFUL_REQUEST_TIMEOUT" envDefault:"60s"`

	TemplateWidth   int     `env:"TEMPLATE_WIDTH" envDefault:"4800"`
	TemplateHeight  int     `env:"TEMPLATE_HEIGHT" envDefault:"5100"`
	Scheme          string  `env:"MOCKUP_SCHEME" envDefault:"direct"`
	MismatchPolicy  string  `env:"CANVAS_MISMATCH_POLICY" envDefault:"strict"`
	WriteBack       bool    `env:"CANVAS_WRITE_BACK" envDefault:"false"`
	FrontArea       string  `env:"FRONT_AREA" envDefault:"600,900,2400,4200"`
	BackArea        string  `env:"BACK_AREA" envDefault:"2400,900,4200,4200"`
	LeftSleeveArea  string  `env:"LEFT_SLEEVE_AREA" envDefault:"0,900,600,3300"`
	RightSleeveArea string  `env:"RIGHT_SLEEVE_AREA" envDefault:"4200,900,4800,3300"`
	SleeveWidth     int     `env:"SLEEVE_WIDTH"`
	SleeveFraction  float64 `env:"SLEEVE_FRACTION" envDefault:"0.125"`

	WorkerConcurrency int           `env:"WORKER_CONCURRENCY" envDefault:"2"`
	WorkerIdleDelay   time.Duration `env:"WORKER_IDLE_DELAY" envDefault:"2s"`
	VendorRatePerMin  int           `env:"PRINTFUL_RATE_PER_MINUTE" envDefault:"10"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	RateLimitPerMin  int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	MaxUploadBytes   int64         `env:"MAX_UPLOAD_BYTES" envDefault:"67108864"`
	DedupeWindow     time.Duration `env:"UPLOAD_DEDUPE_WINDOW" envDefault:"10m"`
	CORSOrigins      []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Scheme = strings.ToLower(strings.TrimSpace(cfg.Scheme))
	cfg.MismatchPolicy = strings.ToLower(strings.TrimSpace(cfg.MismatchPolicy))
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))

	if cfg.TemplateWidth <= 0 || cfg.TemplateHeight <= 0 {
		return nil, fmt.Errorf("TEMPLATE_WIDTH and TEMPLATE_HEIGHT must be positive")
	}
	switch cfg.Scheme {
	case "direct", "mirror":
	default:
		return nil, fmt.Errorf("MOCKUP_SCHEME must be direct or mirror, got %q", cfg.Scheme)
	}
	switch cfg.MismatchPolicy {
	case "strict", "resample":
	default:
		return nil, fmt.Errorf("CANVAS_MISMATCH_POLICY must be strict or resample, got %q", cfg.MismatchPolicy)
	}
	if cfg.MaxPollAttempts <= 0 {
		return nil, fmt.Errorf("MOCKUP_MAX_POLL_ATTEMPTS must be positive")
	}
	if len(cfg.VariantIDs) == 0 {
		return nil, fmt.Errorf("MOCKUP_VARIANT_IDS is required")
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 1
	}
	return &cfg, nil
}

// RequireDatabase reports a configuration error for binaries that cannot run without Postgres.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}
