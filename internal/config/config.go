package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	portalAuth "github.com/MrEthical07/portalAuth"
	"github.com/MrEthical07/portalAuth/httpapi"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PORTAL_"

// Persistence backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the portalctl configuration file.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Refresh     RefreshConfig     `yaml:"refresh"`
	Audit       AuditConfig       `yaml:"audit"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Log         LogConfig         `yaml:"log"`
	MockAPI     MockAPIConfig     `yaml:"mockapi"`
	Serve       ServeConfig       `yaml:"serve"`
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// PersistenceConfig selects where the session snapshot lives.
type PersistenceConfig struct {
	Backend     string        `yaml:"backend"`
	Namespace   string        `yaml:"namespace"`
	Dir         string        `yaml:"dir"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisPrefix string        `yaml:"redis_prefix"`
	RedisTTL    time.Duration `yaml:"redis_ttl"`
}

type RefreshConfig struct {
	Silent   bool          `yaml:"silent"`
	Lead     time.Duration `yaml:"lead"`
	Interval time.Duration `yaml:"interval"`
	MinDelay time.Duration `yaml:"min_delay"`
}

type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Latency bool `yaml:"latency"`
}

// LogConfig sets zerolog level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MockAPIConfig struct {
	Addr         string `yaml:"addr"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file or environment is set.
func Default() Config {
	store := portalAuth.DefaultConfig()
	api := httpapi.DefaultConfig()
	return Config{
		API: APIConfig{
			BaseURL:   api.BaseURL,
			Timeout:   api.Timeout,
			UserAgent: api.UserAgent,
		},
		Persistence: PersistenceConfig{
			Backend:     BackendFile,
			Namespace:   store.Persistence.Namespace,
			Dir:         defaultDir(),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "ps",
		},
		Refresh: RefreshConfig{
			Silent:   true,
			Lead:     store.Refresh.Lead,
			Interval: store.Refresh.Interval,
			MinDelay: store.Refresh.MinDelay,
		},
		Audit: AuditConfig{
			Enabled:    store.Audit.Enabled,
			BufferSize: store.Audit.BufferSize,
			DropIfFull: store.Audit.DropIfFull,
		},
		Metrics: MetricsConfig{
			Enabled: store.Metrics.Enabled,
			Latency: store.Metrics.EnableLatencyHistograms,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		MockAPI: MockAPIConfig{Addr: ":8000"},
		Serve:   ServeConfig{Addr: ":3000"},
	}
}

func defaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "portalctl"
	}
	return ".portalctl"
}

// Load builds the configuration in layers: defaults, then the YAML file at
// path, then variables from envFile, then PORTAL_* environment overrides. An
// empty path or a missing envFile is skipped. Variables already present in the
// process environment win over envFile.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	str("API_BASE_URL", &c.API.BaseURL)
	dur("API_TIMEOUT", &c.API.Timeout)
	str("API_USER_AGENT", &c.API.UserAgent)

	str("PERSISTENCE_BACKEND", &c.Persistence.Backend)
	str("PERSISTENCE_NAMESPACE", &c.Persistence.Namespace)
	str("PERSISTENCE_DIR", &c.Persistence.Dir)
	str("REDIS_ADDR", &c.Persistence.RedisAddr)
	str("REDIS_PREFIX", &c.Persistence.RedisPrefix)
	dur("REDIS_TTL", &c.Persistence.RedisTTL)

	boolean("REFRESH_SILENT", &c.Refresh.Silent)
	dur("REFRESH_LEAD", &c.Refresh.Lead)
	dur("REFRESH_INTERVAL", &c.Refresh.Interval)
	dur("REFRESH_MIN_DELAY", &c.Refresh.MinDelay)

	boolean("AUDIT_ENABLED", &c.Audit.Enabled)
	integer("AUDIT_BUFFER_SIZE", &c.Audit.BufferSize)
	boolean("AUDIT_DROP_IF_FULL", &c.Audit.DropIfFull)

	boolean("METRICS_ENABLED", &c.Metrics.Enabled)
	boolean("METRICS_LATENCY", &c.Metrics.Latency)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	str("MOCKAPI_ADDR", &c.MockAPI.Addr)
	boolean("MOCKAPI_COOKIE_SECURE", &c.MockAPI.CookieSecure)
	str("SERVE_ADDR", &c.Serve.Addr)

	return errors.Join(errs...)
}

// Validate checks the fields the binary owns and delegates the rest to the
// store configuration.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must be non-negative")
	}
	switch c.Persistence.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Persistence.Dir == "" {
			return errors.New("persistence.dir is required for the file backend")
		}
	case BackendRedis:
		if c.Persistence.RedisAddr == "" {
			return errors.New("persistence.redis_addr is required for the redis backend")
		}
		if c.Persistence.RedisTTL < 0 {
			return errors.New("persistence.redis_ttl must be non-negative")
		}
	default:
		return fmt.Errorf("persistence.backend %q is not one of memory, file, redis", c.Persistence.Backend)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format %q is not console or json", c.Log.Format)
	}
	store := c.Store()
	return store.Validate()
}

// Store maps the file sections onto the session store configuration.
func (c Config) Store() portalAuth.Config {
	cfg := portalAuth.DefaultConfig()
	cfg.Persistence.Namespace = c.Persistence.Namespace
	cfg.Refresh.Lead = c.Refresh.Lead
	cfg.Refresh.Interval = c.Refresh.Interval
	cfg.Refresh.MinDelay = c.Refresh.MinDelay
	cfg.Audit.Enabled = c.Audit.Enabled
	cfg.Audit.BufferSize = c.Audit.BufferSize
	cfg.Audit.DropIfFull = c.Audit.DropIfFull
	cfg.Metrics.Enabled = c.Metrics.Enabled
	cfg.Metrics.EnableLatencyHistograms = c.Metrics.Enabled && c.Metrics.Latency
	return cfg
}

// HTTP returns the client configuration for the auth backend.
func (c Config) HTTP() httpapi.Config {
	return httpapi.Config{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.Timeout,
		UserAgent: c.API.UserAgent,
	}
}
