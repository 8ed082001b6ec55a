package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/portalAuth/internal/mockapi"
	"github.com/MrEthical07/portalAuth/role"
)

const shutdownTimeout = 10 * time.Second

// seedAccount is an "email:password[:role]" flag value.
type seedAccount struct {
	email    string
	password string
	role     role.Role
}

func parseSeed(v string) (seedAccount, error) {
	parts := strings.SplitN(v, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return seedAccount{}, fmt.Errorf("seed %q: want email:password[:role]", v)
	}
	s := seedAccount{email: parts[0], password: parts[1], role: role.Studio}
	if len(parts) == 3 {
		r, err := role.Parse(parts[2])
		if err != nil {
			return seedAccount{}, fmt.Errorf("seed %q: %w", v, err)
		}
		s.role = r
	}
	return s, nil
}

// startMockAPI seeds and starts the development backend on ln. It returns the
// server so the caller can shut it down.
func startMockAPI(logger zerolog.Logger, ln net.Listener, cookieSecure bool, seeds []seedAccount) (*http.Server, error) {
	cfg, err := mockapi.DevConfig()
	if err != nil {
		return nil, err
	}
	cfg.CookieSecure = cookieSecure

	backend, err := mockapi.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	for _, s := range seeds {
		u, err := backend.CreateUser(s.email, s.password, "", s.role)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", s.email, err)
		}
		logger.Info().Str("email", u.Email).Str("role", u.Role.String()).Msg("seeded account")
	}

	srv := &http.Server{Handler: backend.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("mock backend stopped")
		}
	}()
	return srv, nil
}

func newMockAPICmd(a *app) *cobra.Command {
	var (
		addr  string
		seeds []string
	)
	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "Run the in-memory development auth backend",
		Long: `mockapi serves /api/v1/auth/{login,register,super-admin/register,refresh,logout,me}
and /health from memory. Accounts vanish on exit; --seed creates some at start.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.MockAPI.Addr
			}
			accounts := make([]seedAccount, 0, len(seeds))
			for _, v := range seeds {
				s, err := parseSeed(v)
				if err != nil {
					return err
				}
				accounts = append(accounts, s)
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			logger := a.logger.With().Str("component", "mockapi").Logger()
			srv, err := startMockAPI(logger, ln, a.cfg.MockAPI.CookieSecure, accounts)
			if err != nil {
				_ = ln.Close()
				return err
			}
			logger.Info().Str("addr", ln.Addr().String()).Msg("mock backend listening")

			<-cmd.Context().Done()
			logger.Info().Msg("shutdown signal received")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringArrayVar(&seeds, "seed", nil, "account to create at start, email:password[:role]")
	return cmd
}
