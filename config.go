package portalAuth

import (
	"errors"
	"strings"
	"time"
)

// DefaultNamespace is the persistence key the session is stored under.
const DefaultNamespace = "user-storage"

// Config holds SessionStore tuning. Build it with [DefaultConfig] and override
// fields before passing it to [Builder.WithConfig].
type Config struct {
	Persistence PersistenceConfig
	Refresh     RefreshConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
PERSISTENCE CONFIG
====================================
*/

// PersistenceConfig controls how {user, token} survives restarts.
type PersistenceConfig struct {
	Namespace string
	// RestoreOnBuild loads the persisted snapshot during Build. Restore errors are
	// then returned from Build.
	RestoreOnBuild bool
	// WriteTimeout bounds each persister write. Zero means no bound.
	WriteTimeout time.Duration
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig drives the silent refresh scheduler.
type RefreshConfig struct {
	// Lead is how long before access token expiry the refresh fires.
	Lead time.Duration
	// Interval is used when the token expiry cannot be read.
	Interval time.Duration
	// MinDelay floors the computed delay so an expired token cannot spin the loop.
	MinDelay time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls counters and the latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Persistence: PersistenceConfig{
			Namespace:    DefaultNamespace,
			WriteTimeout: 5 * time.Second,
		},
		Refresh: RefreshConfig{
			Lead:     time.Minute,
			Interval: 10 * time.Minute,
			MinDelay: 5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	ns := strings.TrimSpace(c.Persistence.Namespace)
	if ns == "" {
		return errors.New("Persistence Namespace must not be empty")
	}
	if ns != c.Persistence.Namespace || strings.ContainsAny(ns, "/\\") {
		return errors.New("Persistence Namespace must not contain spaces or path separators")
	}
	if c.Persistence.WriteTimeout < 0 {
		return errors.New("Persistence WriteTimeout must be >= 0")
	}

	if c.Refresh.Lead < 0 {
		return errors.New("Refresh Lead must be >= 0")
	}
	if c.Refresh.Interval <= 0 {
		return errors.New("Refresh Interval must be > 0")
	}
	if c.Refresh.MinDelay <= 0 {
		return errors.New("Refresh MinDelay must be > 0")
	}
	if c.Refresh.MinDelay > c.Refresh.Interval {
		return errors.New("Refresh MinDelay must be <= Interval")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
