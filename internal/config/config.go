package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned when the gateway credential env var is unset.
var ErrMissingAPIKey = errors.New("gateway API key not set")

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	RuntimeServer = "server"
	RuntimeEdge   = "edge"

	DriverNone     = ""
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
		// Runtime selects the adapter used by the default command.
		Runtime   string `yaml:"runtime"`
		QueueSize int    `yaml:"queueSize"`
	} `yaml:"server"`

	Gateway struct {
		Provider       string        `yaml:"provider"`
		BaseURL        string        `yaml:"baseURL"`
		Model          string        `yaml:"model"`
		APIKeyEnv      string        `yaml:"apiKeyEnv"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxRetries     int           `yaml:"maxRetries"`
		RetryBaseDelay time.Duration `yaml:"retryBaseDelay"`

		// APIKey is only ever populated from the environment.
		APIKey string `yaml:"-"`
	} `yaml:"gateway"`

	Database struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Auth struct {
		// APIKeys maps client name to key; empty disables auth.
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit RateLimit `yaml:"rateLimit"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// RateLimit configures the per-client token bucket. A zero capacity or
// refill rate disables limiting.
type RateLimit struct {
	Capacity   int `yaml:"capacity"`
	RefillRate int `yaml:"refillRate"` // tokens per second
	// IdleTTL evicts buckets unused for this long.
	IdleTTL time.Duration `yaml:"idleTTL"`
}

func (r RateLimit) Enabled() bool { return r.Capacity > 0 && r.RefillRate > 0 }

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 5000
	cfg.Server.Runtime = RuntimeServer
	cfg.Server.QueueSize = 64
	cfg.Gateway.Provider = ProviderGemini
	cfg.Gateway.Timeout = 60 * time.Second
	cfg.Gateway.RetryBaseDelay = 200 * time.Millisecond
	cfg.RateLimit.IdleTTL = 10 * time.Minute
	cfg.Database.SSLMode = "disable"
	cfg.Log.Level = "info"
	return &cfg
}

// Load baca file config.yaml, lalu ambil API key dari environment.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.Gateway.Provider = strings.ToLower(strings.TrimSpace(cfg.Gateway.Provider))
	if cfg.Gateway.APIKeyEnv == "" {
		cfg.Gateway.APIKeyEnv = defaultKeyEnv(cfg.Gateway.Provider)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Gateway.APIKey = strings.TrimSpace(os.Getenv(cfg.Gateway.APIKeyEnv))
	if cfg.Gateway.APIKey == "" {
		return nil, fmt.Errorf("%w: export %s", ErrMissingAPIKey, cfg.Gateway.APIKeyEnv)
	}
	return cfg, nil
}

func defaultKeyEnv(provider string) string {
	if provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// Validate checks enumerated settings and numeric ranges.
func (c *Config) Validate() error {
	switch c.Gateway.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown gateway provider %q", c.Gateway.Provider)
	}
	switch c.Server.Runtime {
	case RuntimeServer, RuntimeEdge:
	default:
		return fmt.Errorf("unknown runtime %q", c.Server.Runtime)
	}
	switch c.Database.Driver {
	case DriverNone, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.RateLimit.Capacity < 0 || c.RateLimit.RefillRate < 0 {
		return fmt.Errorf("rateLimit values must be >= 0")
	}
	if c.Gateway.MaxRetries < 0 {
		return fmt.Errorf("gateway.maxRetries must be >= 0")
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection URL.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

// MinioEnabled reports whether the briefing archive is configured.
func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.BucketName != ""
}
