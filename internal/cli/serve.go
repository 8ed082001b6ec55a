package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/portalAuth/gate"
	"github.com/MrEthical07/portalAuth/httpapi"
	"github.com/MrEthical07/portalAuth/internal/config"
	"github.com/MrEthical07/portalAuth/metrics/export/prometheus"
	"github.com/MrEthical07/portalAuth/role"
)

var demoSeeds = []seedAccount{
	{email: "admin@portal.test", password: "admin", role: role.Admin},
	{email: "studio@portal.test", password: "studio", role: role.Studio},
}

func newServeCmd(a *app) *cobra.Command {
	var (
		addr string
		dev  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the gated front-end",
		Long: `serve answers every portal route through the route gate: nothing renders
until the startup refresh settles, visitors without a session are sent to
/auth/login and users on another role's pages are sent to their home.

--dev starts an embedded Redis and an in-process mock backend seeded with
admin@portal.test/admin and studio@portal.test/studio.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Serve.Addr
			}

			if dev {
				stop, err := a.startDevStack()
				if err != nil {
					return err
				}
				defer stop()
			}

			notify := httpapi.NotifierFunc(func(msg string) {
				a.logger.Info().Str("message", msg).Msg("toast")
			})
			h, err := a.openSession(ctx, notify)
			if err != nil {
				return err
			}
			defer func() {
				if err := h.close(context.Background()); err != nil {
					a.logger.Warn().Err(err).Msg("close session store")
				}
			}()

			if err := h.client.Health(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("backend is not healthy")
			} else {
				a.logger.Info().Msg("backend is healthy")
			}

			g := gate.New(h.store, gate.WithLogger(a.logger.With().Str("component", "gate").Logger()))
			go g.Bootstrap(ctx)

			if a.cfg.Refresh.Silent {
				stop := h.store.StartSilentRefresh(ctx)
				defer stop()
			}

			v := &views{store: h.store, logger: a.logger}
			mux := http.NewServeMux()
			mux.HandleFunc("POST /auth/logout", v.logout)
			if a.cfg.Metrics.Enabled {
				mux.Handle("GET /metrics", prometheus.NewPrometheusExporter(h.store).Handler())
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           g.Middleware(v.handlers())(mux),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				a.logger.Info().Str("addr", addr).Msg("serving portal")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			a.logger.Info().Msg("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&dev, "dev", false, "run with embedded Redis and a seeded mock backend")
	return cmd
}

// startDevStack points the config at an embedded Redis and an in-process mock
// backend. The returned func stops both.
func (a *app) startDevStack() (func(), error) {
	mr, err := miniredis.Run()
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		mr.Close()
		return nil, err
	}
	backend, err := startMockAPI(a.logger.With().Str("component", "mockapi").Logger(), ln, false, demoSeeds)
	if err != nil {
		_ = ln.Close()
		mr.Close()
		return nil, err
	}

	a.cfg.Persistence.Backend = config.BackendRedis
	a.cfg.Persistence.RedisAddr = mr.Addr()
	a.cfg.API.BaseURL = "http://" + ln.Addr().String()
	a.logger.Info().
		Str("redis", mr.Addr()).
		Str("backend", a.cfg.API.BaseURL).
		Msg("development stack started")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = backend.Shutdown(ctx)
		mr.Close()
	}, nil
}
