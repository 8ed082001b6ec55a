package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	portalAuth "github.com/MrEthical07/portalAuth"
	"github.com/MrEthical07/portalAuth/httpapi"
	"github.com/MrEthical07/portalAuth/internal/config"
	"github.com/MrEthical07/portalAuth/session"
)

// openPersister returns the configured backend and a func that releases it.
func openPersister(cfg config.PersistenceConfig) (portalAuth.Persister, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(), func() error { return nil }, nil
	case config.BackendFile:
		return session.NewFileStore(cfg.Dir), func() error { return nil }, nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return session.NewStore(rdb, cfg.RedisPrefix, cfg.RedisTTL), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown persistence backend %q", cfg.Backend)
	}
}

// sessionHandle bundles a store with the client it drives.
type sessionHandle struct {
	store  *portalAuth.SessionStore
	client *httpapi.Client
	close  func(context.Context) error
}

// openSession builds the HTTP client and the session store, restores the
// persisted snapshot, and points the client at the store for bearer tokens.
func (a *app) openSession(ctx context.Context, notify httpapi.Notifier) (*sessionHandle, error) {
	opts := []httpapi.Option{httpapi.WithLogger(a.logger)}
	if notify != nil {
		opts = append(opts, httpapi.WithNotifier(notify))
	}
	client, err := httpapi.New(a.cfg.HTTP(), opts...)
	if err != nil {
		return nil, err
	}

	persister, release, err := openPersister(a.cfg.Persistence)
	if err != nil {
		return nil, err
	}

	sink := portalAuth.AuditSink(nil)
	if a.cfg.Audit.Enabled {
		sink = portalAuth.NewLoggerSink(a.logger)
	}

	store, err := portalAuth.New().
		WithConfig(a.cfg.Store()).
		WithAuthAPI(client).
		WithPersister(persister).
		WithAuditSink(sink).
		WithLogger(a.logger).
		Build(ctx)
	if err != nil {
		_ = release()
		return nil, err
	}
	client.SetTokenSource(store)

	if err := store.Restore(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("persisted session ignored")
	}

	return &sessionHandle{
		store:  store,
		client: client,
		close: func(ctx context.Context) error {
			err := store.Close(ctx)
			if rerr := release(); err == nil {
				err = rerr
			}
			return err
		},
	}, nil
}
