package portalAuth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Builder assembles a [SessionStore]. A Builder is single-use.
type Builder struct {
	config    Config
	api       AuthAPI
	persister Persister
	auditSink AuditSink
	logger    zerolog.Logger
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithAuthAPI sets the HTTP collaborator. Required.
func (b *Builder) WithAuthAPI(api AuthAPI) *Builder {
	b.api = api
	return b
}

// WithPersister sets the durable backend. Without one the session lives in
// memory only.
func (b *Builder) WithPersister(p Persister) *Builder {
	b.persister = p
	return b
}

// WithAuditSink sets the audit destination. Events flow only when Audit.Enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the store logger.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides time.Now for the refresh scheduler and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns a ready store. With
// Persistence.RestoreOnBuild set it also restores the persisted session.
func (b *Builder) Build(ctx context.Context) (*SessionStore, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.api == nil {
		return nil, errors.New("auth API required")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	s := &SessionStore{
		cfg:       cfg,
		api:       b.api,
		persister: b.persister,
		logger:    b.logger.With().Str("component", "session_store").Logger(),
		metrics:   NewMetrics(cfg.Metrics),
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		now:       now,
		subs:      make(map[uint64]func(State)),
	}

	if cfg.Persistence.RestoreOnBuild {
		if err := s.Restore(ctx); err != nil {
			s.audit.Close()
			return nil, err
		}
	}

	b.built = true
	return s, nil
}
