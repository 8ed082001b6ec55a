package flows

import (
	"context"

	"github.com/MrEthical07/portalAuth/session"
)

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Logout func(context.Context) error
	// Clear drops user and token together. It returns false when the response is
	// stale.
	Clear func() bool
	// Current returns the user being logged out, for audit attribution.
	Current func() *session.User

	Hooks       Hooks
	Outcome     Outcome
	StaleEvent  string
	StaleErr    error
	NotReadyErr error
}

// LogoutResult reports a failed or superseded logout.
type LogoutResult struct {
	Err   error
	Stale bool
}

// RunLogout ends the backend session, then clears local state.
func RunLogout(ctx context.Context, deps LogoutDeps) LogoutResult {
	hooks := deps.Hooks.withDefaults()
	if deps.Logout == nil || deps.Clear == nil {
		return LogoutResult{Err: deps.NotReadyErr}
	}
	var user *session.User
	if deps.Current != nil {
		user = deps.Current()
	}

	if err := deps.Logout(ctx); err != nil {
		hooks.MetricInc(deps.Outcome.FailureMetric)
		hooks.EmitAudit(ctx, deps.Outcome.FailureEvent, false, user, err, nil)
		return LogoutResult{Err: err}
	}

	if !deps.Clear() {
		hooks.EmitAudit(ctx, deps.StaleEvent, false, user, deps.StaleErr, func() map[string]string {
			return map[string]string{"step": "logout"}
		})
		return LogoutResult{Err: deps.StaleErr, Stale: true}
	}

	hooks.MetricInc(deps.Outcome.SuccessMetric)
	hooks.EmitAudit(ctx, deps.Outcome.SuccessEvent, true, user, nil, nil)
	return LogoutResult{}
}
