package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full application configuration, loaded from AGROCLIMATE_*
// environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Analysis  AnalysisConfig
	RateLimit RateLimitConfig
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
}

// DatabaseConfig configures the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD" default:""`
	Database        string        `envconfig:"DB_NAME" default:"agroclimate"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// AnalysisConfig carries the tunable policy of the analytics engine. The
// weights and thresholds are calibration defaults, adjustable per deployment
// without code changes.
type AnalysisConfig struct {
	UpstreamTimeout       time.Duration `envconfig:"ANALYSIS_UPSTREAM_TIMEOUT" default:"5s"`
	SoundingUpstreamURL   string        `envconfig:"ANALYSIS_SOUNDING_UPSTREAM_URL" default:""`
	HeatSeriesDays        int           `envconfig:"ANALYSIS_HEAT_SERIES_DAYS" default:"90"`
	CacheTTL              time.Duration `envconfig:"ANALYSIS_CACHE_TTL" default:"15m"`
	MaxPressureGapHPa     float64       `envconfig:"ANALYSIS_MAX_PRESSURE_GAP_HPA" default:"100"`
	CAPEWeight            float64       `envconfig:"ANALYSIS_CAPE_WEIGHT" default:"0.5"`
	HelicityWeight        float64       `envconfig:"ANALYSIS_HELICITY_WEIGHT" default:"0.3"`
	HeatWeight            float64       `envconfig:"ANALYSIS_HEAT_WEIGHT" default:"0.2"`
	SignificanceLevel     float64       `envconfig:"ANALYSIS_SIGNIFICANCE_LEVEL" default:"0.05"`
	ChangePointSigma      float64       `envconfig:"ANALYSIS_CHANGE_POINT_SIGMA" default:"3.0"`
	HeatPercentileRank    float64       `envconfig:"ANALYSIS_HEAT_PERCENTILE" default:"0.95"`
	HeatwaveMinRunDays    int           `envconfig:"ANALYSIS_HEATWAVE_MIN_RUN" default:"3"`
	CAPENormalization     float64       `envconfig:"ANALYSIS_CAPE_NORMALIZATION" default:"4000"`
	HelicityNormalization float64       `envconfig:"ANALYSIS_HELICITY_NORMALIZATION" default:"400"`
}

// RateLimitConfig configures the fixed-window request limiter.
type RateLimitConfig struct {
	RequestsPerWindow int           `envconfig:"RATE_LIMIT_REQUESTS" default:"120"`
	Window            time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("agroclimate", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration invariants that envconfig defaults cannot
// express.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxOpenConns < c.Database.MaxIdleConns {
		return fmt.Errorf("db max open conns (%d) must be >= max idle conns (%d)",
			c.Database.MaxOpenConns, c.Database.MaxIdleConns)
	}
	if c.Analysis.HeatPercentileRank <= 0 || c.Analysis.HeatPercentileRank >= 1 {
		return fmt.Errorf("heat percentile rank must lie in (0,1), got %v", c.Analysis.HeatPercentileRank)
	}
	if c.Analysis.SignificanceLevel <= 0 || c.Analysis.SignificanceLevel >= 1 {
		return fmt.Errorf("significance level must lie in (0,1), got %v", c.Analysis.SignificanceLevel)
	}
	if c.Analysis.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %v", c.Analysis.UpstreamTimeout)
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("rate limit requests per window must be positive, got %d", c.RateLimit.RequestsPerWindow)
	}
	return nil
}
