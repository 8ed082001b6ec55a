package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	portalAuth "github.com/MrEthical07/portalAuth"
	"github.com/MrEthical07/portalAuth/httpapi"
)

// withSession opens the session, runs fn, and always closes the store so the
// latest state is flushed to the persister.
func (a *app) withSession(ctx context.Context, fn func(*sessionHandle) error) error {
	notify := httpapi.NotifierFunc(func(msg string) {
		a.logger.Debug().Str("message", msg).Msg("backend error")
	})
	h, err := a.openSession(ctx, notify)
	if err != nil {
		return err
	}
	runErr := fn(h)
	if err := h.close(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warn().Err(err).Msg("close session store")
	}
	return runErr
}

func (a *app) report(op string, res portalAuth.Result[portalAuth.TokenPayload], state portalAuth.State) error {
	if !res.OK() {
		a.out.fail(fmt.Sprintf("%s failed: %s", op, res.Message()))
		return res.Err
	}
	a.out.ok(op + " succeeded")
	if state.Phase() == portalAuth.PhaseTokenAcquired {
		a.out.muted("token acquired, profile not loaded")
	}
	a.out.state(state)
	return nil
}

func newLoginCmd(a *app) *cobra.Command {
	var creds portalAuth.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(h *sessionHandle) error {
				res := h.store.Login(cmd.Context(), creds)
				return a.report("login", res, h.store.Snapshot())
			})
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var details portalAuth.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a studio account and persist the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(h *sessionHandle) error {
				res := h.store.Register(cmd.Context(), details)
				return a.report("register", res, h.store.Snapshot())
			})
		},
	}
	cmd.Flags().StringVar(&details.Email, "email", "", "account email")
	cmd.Flags().StringVar(&details.Password, "password", "", "account password")
	cmd.Flags().StringVar(&details.FullName, "full-name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the persisted session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(h *sessionHandle) error {
				if h.store.Phase() == portalAuth.PhaseAnonymous {
					a.out.muted("no session")
					return nil
				}
				res := h.store.Logout(cmd.Context())
				if !res.OK() {
					a.out.fail("logout failed: " + res.Message())
					return res.Err
				}
				a.out.ok("logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the persisted session, loading the profile if needed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(h *sessionHandle) error {
				if refresh || h.store.Phase() == portalAuth.PhaseTokenAcquired {
					res := h.store.FetchUser(cmd.Context())
					if !res.OK() && !errors.Is(res.Err, portalAuth.ErrUnauthorized) {
						a.out.fail("profile: " + res.Message())
					}
				}
				state := h.store.Snapshot()
				if state.Phase() == portalAuth.PhaseAnonymous {
					a.out.muted("not logged in")
					return nil
				}
				a.out.title("Session")
				a.out.state(state)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the backend")
	return cmd
}
