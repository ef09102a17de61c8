package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, the HTTP server, the checker
// pipeline and the external sources it queries.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout bounds a single API request; a run over many domains needs a generous value
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// MaxRunDomains limits how many domains a single API run may contain
		MaxRunDomains int `env:"HTTP_MAX_RUN_DOMAINS" env-default:"500" yaml:"maxRunDomains"`
		// MaxStoredRuns bounds the in-memory run sessions; the oldest run is evicted first
		MaxStoredRuns int `env:"HTTP_MAX_STORED_RUNS" env-default:"50" yaml:"maxStoredRuns"`
		// CORSOrigin is the origin allowed to call the API from a browser
		CORSOrigin string `env:"HTTP_CORS_ORIGIN" env-default:"*" yaml:"corsOrigin"`
	} `yaml:"http"`

	// Checker controls the per-domain pipeline and the batch runner
	Checker struct {
		// Delay is slept after every lookup as a courtesy to the remote sites
		Delay time.Duration `env:"CHECKER_DELAY" env-default:"1s" yaml:"delay"`
		// Workers is the number of domains processed in parallel; 1 keeps the run strictly sequential
		Workers int `env:"CHECKER_WORKERS" env-default:"1" yaml:"workers"`
		// MaxDomains truncates the input list; 0 processes every domain
		MaxDomains int `env:"CHECKER_MAX_DOMAINS" env-default:"0" yaml:"maxDomains"`
		// MinMonthlyVisits is the traffic threshold for the hits report
		MinMonthlyVisits int64 `env:"CHECKER_MIN_MONTHLY_VISITS" env-default:"5000" yaml:"minMonthlyVisits"`
		// CheckpointEvery flushes reports after this many completed domains; 0 disables checkpoints
		CheckpointEvery int `env:"CHECKER_CHECKPOINT_EVERY" env-default:"25" yaml:"checkpointEvery"`
		// OutputDir is where report files are written
		OutputDir string `env:"CHECKER_OUTPUT_DIR" env-default:"." yaml:"outputDir"`
	} `yaml:"checker"`

	// Sources holds the endpoints and transport settings of the queried services
	Sources struct {
		RDAPBaseURL     string `env:"SOURCES_RDAP_BASE_URL" env-default:"https://rdap.org" yaml:"rdapBaseURL"`
		WhoisBaseURL    string `env:"SOURCES_WHOIS_BASE_URL" env-default:"https://who.is" yaml:"whoisBaseURL"`
		HypestatBaseURL string `env:"SOURCES_HYPESTAT_BASE_URL" env-default:"https://hypestat.com" yaml:"hypestatBaseURL"`
		StatshowBaseURL string `env:"SOURCES_STATSHOW_BASE_URL" env-default:"https://www.statshow.com" yaml:"statshowBaseURL"` //nolint: lll
		// UserAgent is sent with every outbound request
		UserAgent string `env:"SOURCES_USER_AGENT" env-default:"Mozilla/5.0 (compatible; DomainChecker/1.0; +https://example.com)" yaml:"userAgent"` //nolint: lll
		// LookupTimeout bounds registration lookups
		LookupTimeout time.Duration `env:"SOURCES_LOOKUP_TIMEOUT" env-default:"12s" yaml:"lookupTimeout"`
		// StatsTimeout bounds traffic and backlink page fetches
		StatsTimeout time.Duration `env:"SOURCES_STATS_TIMEOUT" env-default:"15s" yaml:"statsTimeout"`
	} `yaml:"sources"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// A missing file is not an error: defaults and environment variables are used instead.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from env: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
