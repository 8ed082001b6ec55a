package flows

import (
	"context"

	"github.com/MrEthical07/portalAuth/session"
)

// FetchUserDeps captures profile fetch dependencies.
type FetchUserDeps struct {
	GetAboutMe func(context.Context) (*session.User, error)
	// ApplyUser stores the user. It returns false when the response is stale.
	ApplyUser func(*session.User) bool

	Hooks       Hooks
	Outcome     Outcome
	StaleEvent  string
	StaleErr    error
	NotReadyErr error
}

// FetchUserResult reports the fetched user, or why it was not stored.
type FetchUserResult struct {
	User  *session.User
	Err   error
	Stale bool
}

// RunFetchUser reads the profile and applies it unless a newer mutation won.
func RunFetchUser(ctx context.Context, deps FetchUserDeps) FetchUserResult {
	hooks := deps.Hooks.withDefaults()
	if deps.GetAboutMe == nil || deps.ApplyUser == nil {
		return FetchUserResult{Err: deps.NotReadyErr}
	}

	user, err := deps.GetAboutMe(ctx)
	if err == nil && user == nil {
		err = deps.NotReadyErr
	}
	if err != nil {
		hooks.MetricInc(deps.Outcome.FailureMetric)
		hooks.EmitAudit(ctx, deps.Outcome.FailureEvent, false, nil, err, nil)
		return FetchUserResult{Err: err}
	}

	if !deps.ApplyUser(user) {
		hooks.EmitAudit(ctx, deps.StaleEvent, false, user, deps.StaleErr, func() map[string]string {
			return map[string]string{"step": "profile"}
		})
		return FetchUserResult{User: user, Err: deps.StaleErr, Stale: true}
	}

	hooks.MetricInc(deps.Outcome.SuccessMetric)
	hooks.EmitAudit(ctx, deps.Outcome.SuccessEvent, true, user, nil, nil)
	return FetchUserResult{User: user}
}
