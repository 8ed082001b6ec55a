package flows

import (
	"context"

	"github.com/MrEthical07/portalAuth/session"
)

// Stage is the position a token-acquiring saga reached.
type Stage uint8

const (
	// StageNone means the flow did not run (misconfigured deps).
	StageNone Stage = iota
	// StageCredentialFailed means the credential call failed.
	StageCredentialFailed
	// StageTokenAcquired means a token was stored and the profile is pending or failed.
	StageTokenAcquired
	// StageComplete means both token and profile were stored.
	StageComplete
	// StageStale means a newer mutation superseded this one before it could apply.
	StageStale
)

func (s Stage) String() string {
	switch s {
	case StageCredentialFailed:
		return "credential_failed"
	case StageTokenAcquired:
		return "token_acquired"
	case StageComplete:
		return "complete"
	case StageStale:
		return "stale"
	default:
		return "none"
	}
}

// AcquireDeps captures the credential-then-profile saga dependencies.
type AcquireDeps struct {
	// Credential performs the first network call and returns the access token.
	Credential func(context.Context) (string, error)
	// ApplyToken stores the token. It returns false when the response is stale.
	ApplyToken func(token string) bool
	// FetchProfile performs the dependent profile step. For loading-mode operations
	// this is the chained FetchUser; for silent refresh it calls the API directly and
	// applies the user itself.
	FetchProfile func(context.Context) (*session.User, error)
	// OnCredentialFailure runs after a failed credential call. Refresh flows clear
	// the session here; login and register leave it nil.
	OnCredentialFailure func() bool

	Hooks         Hooks
	Outcome       Outcome
	PendingMetric int
	PendingEvent  string
	StaleEvent    string
	StaleErr      error
	NotReadyErr   error
}

// AcquireResult reports how far the saga got. Err reflects the credential call
// only; ProfileErr carries a failed second step.
type AcquireResult struct {
	Stage      Stage
	Token      string
	User       *session.User
	Err        error
	ProfileErr error
}

// RunAcquire executes the two-step saga. The result status reflects the first
// call: a profile failure after a stored token still reports success with
// Stage == StageTokenAcquired.
func RunAcquire(ctx context.Context, deps AcquireDeps) AcquireResult {
	hooks := deps.Hooks.withDefaults()
	if deps.Credential == nil || deps.ApplyToken == nil || deps.FetchProfile == nil {
		return AcquireResult{Stage: StageNone, Err: deps.NotReadyErr}
	}

	token, err := deps.Credential(ctx)
	if err != nil {
		if deps.OnCredentialFailure != nil && !deps.OnCredentialFailure() {
			hooks.EmitAudit(ctx, deps.StaleEvent, false, nil, deps.StaleErr, nil)
			return AcquireResult{Stage: StageStale, Err: err}
		}
		hooks.MetricInc(deps.Outcome.FailureMetric)
		hooks.EmitAudit(ctx, deps.Outcome.FailureEvent, false, nil, err, nil)
		return AcquireResult{Stage: StageCredentialFailed, Err: err}
	}

	if !deps.ApplyToken(token) {
		hooks.EmitAudit(ctx, deps.StaleEvent, false, nil, deps.StaleErr, func() map[string]string {
			return map[string]string{"step": "token"}
		})
		return AcquireResult{Stage: StageStale, Token: token, Err: deps.StaleErr}
	}
	hooks.MetricInc(deps.Outcome.SuccessMetric)

	user, profileErr := deps.FetchProfile(ctx)
	if profileErr != nil || user == nil {
		hooks.MetricInc(deps.PendingMetric)
		hooks.EmitAudit(ctx, deps.PendingEvent, false, nil, profileErr, nil)
		return AcquireResult{Stage: StageTokenAcquired, Token: token, ProfileErr: profileErr}
	}

	hooks.EmitAudit(ctx, deps.Outcome.SuccessEvent, true, user, nil, nil)
	return AcquireResult{Stage: StageComplete, Token: token, User: user}
}
