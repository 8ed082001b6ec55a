package portalAuth

import (
	"context"
	"time"

	"github.com/MrEthical07/portalAuth/internal/flows"
	"github.com/MrEthical07/portalAuth/session"
)

// acquireOp describes one token-acquiring compound operation.
type acquireOp struct {
	name     string
	loading  bool
	silent   bool
	clearErr bool

	// newIdentity drops the current user when the new token is stored.
	newIdentity bool
	outcome     flows.Outcome
}

var (
	opLogin = acquireOp{
		name:        "login",
		loading:     true,
		newIdentity: true,
		outcome: flows.Outcome{
			SuccessMetric: int(MetricLoginSuccess),
			FailureMetric: int(MetricLoginFailure),
			SuccessEvent:  EventLoginSuccess,
			FailureEvent:  EventLoginFailure,
		},
	}
	opRegister = acquireOp{
		name:        "register",
		loading:     true,
		newIdentity: true,
		outcome: flows.Outcome{
			SuccessMetric: int(MetricRegisterSuccess),
			FailureMetric: int(MetricRegisterFailure),
			SuccessEvent:  EventRegisterSuccess,
			FailureEvent:  EventRegisterFailure,
		},
	}
	opRefresh = acquireOp{
		name:     "refresh",
		loading:  true,
		clearErr: true,
		outcome: flows.Outcome{
			SuccessMetric: int(MetricRefreshSuccess),
			FailureMetric: int(MetricRefreshFailure),
			SuccessEvent:  EventRefreshSuccess,
			FailureEvent:  EventRefreshFailure,
		},
	}
	opSilentRefresh = acquireOp{
		name:     "refresh_silent",
		silent:   true,
		clearErr: true,
		outcome: flows.Outcome{
			SuccessMetric: int(MetricSilentRefreshSuccess),
			FailureMetric: int(MetricSilentRefreshFailure),
			SuccessEvent:  EventSilentRefreshSuccess,
			FailureEvent:  EventSilentRefreshFailure,
		},
	}
)

// Login authenticates with credentials, stores the token, then fetches the
// profile. The previous user is dropped as soon as the new token is stored. A
// failed login leaves any existing session untouched. The result
// reflects the credential call only; check [SessionStore.Phase] to tell a
// complete login from one whose profile fetch failed.
func (s *SessionStore) Login(ctx context.Context, creds Credentials) Result[TokenPayload] {
	return s.acquire(ctx, opLogin, func(ctx context.Context) Result[TokenPayload] {
		return s.api.Login(ctx, creds)
	})
}

// Register creates an account and signs in with the returned token, with the
// same shape as [SessionStore.Login].
func (s *SessionStore) Register(ctx context.Context, details Registration) Result[TokenPayload] {
	return s.acquire(ctx, opRegister, func(ctx context.Context) Result[TokenPayload] {
		return s.api.Register(ctx, details)
	})
}

// RefreshJWT is the bootstrap refresh. Loading is held for the whole compound
// operation. A failed refresh clears the session.
func (s *SessionStore) RefreshJWT(ctx context.Context) Result[TokenPayload] {
	return s.acquire(ctx, opRefresh, func(ctx context.Context) Result[TokenPayload] {
		return s.api.RefreshToken(ctx)
	})
}

// RefreshJWTNonLoad refreshes without ever touching the loading flag. On success
// it reads the profile directly instead of going through FetchUser.
func (s *SessionStore) RefreshJWTNonLoad(ctx context.Context) Result[TokenPayload] {
	return s.acquire(ctx, opSilentRefresh, func(ctx context.Context) Result[TokenPayload] {
		return s.api.RefreshToken(ctx)
	})
}

// FetchUser loads the current profile. Loading is reset on every path.
func (s *SessionStore) FetchUser(ctx context.Context) Result[User] {
	if err := s.ready(); err != nil {
		return Fail[User](err)
	}
	ticket, err := s.begin()
	if err != nil {
		return Fail[User](err)
	}
	defer s.observe(time.Now())

	res := s.fetchUser(ctx, ticket)
	if res.Err != nil {
		return Fail[User](res.Err)
	}
	return Ok(*res.User)
}

// Logout ends the session on the backend and, on success, clears user and token
// together.
func (s *SessionStore) Logout(ctx context.Context) Result[struct{}] {
	if err := s.ready(); err != nil {
		return Fail[struct{}](err)
	}
	ticket, err := s.begin()
	if err != nil {
		return Fail[struct{}](err)
	}
	s.beginLoading()
	defer s.endLoading()
	defer s.observe(time.Now())

	res := flows.RunLogout(ctx, flows.LogoutDeps{
		Logout: func(ctx context.Context) error {
			return resultErr(s.api.Logout(ctx))
		},
		Clear: func() bool {
			ok := s.apply(ctx, ticket, true, s.clearLocked)
			if ok {
				s.metrics.Inc(MetricSessionCleared)
			}
			return ok
		},
		Current: s.currentUser,
		Hooks:   s.flowHooks(),
		Outcome: flows.Outcome{
			SuccessMetric: int(MetricLogoutSuccess),
			FailureMetric: int(MetricLogoutFailure),
			SuccessEvent:  EventLogoutSuccess,
			FailureEvent:  EventLogoutFailure,
		},
		StaleEvent:  EventResponseStale,
		StaleErr:    ErrStaleResponse,
		NotReadyErr: ErrStoreNotReady,
	})
	if res.Err != nil {
		s.logger.Debug().Err(res.Err).Msg("logout failed")
		return Fail[struct{}](res.Err)
	}
	s.logger.Debug().Msg("logout complete")
	return Ok(struct{}{})
}

func (s *SessionStore) acquire(ctx context.Context, op acquireOp, call func(context.Context) Result[TokenPayload]) Result[TokenPayload] {
	if err := s.ready(); err != nil {
		return Fail[TokenPayload](err)
	}
	ticket, err := s.begin()
	if err != nil {
		return Fail[TokenPayload](err)
	}
	if op.loading {
		s.beginLoading()
		defer s.endLoading()
	}
	defer s.observe(time.Now())

	var payload TokenPayload
	deps := flows.AcquireDeps{
		Credential: func(ctx context.Context) (string, error) {
			r := call(ctx)
			if err := resultErr(r); err != nil {
				return "", err
			}
			if r.Data.AccessToken == "" {
				return "", ErrDecode
			}
			payload = r.Data
			return r.Data.AccessToken, nil
		},
		ApplyToken: func(token string) bool {
			return s.apply(ctx, ticket, true, func() {
				s.token = token
				if op.newIdentity {
					s.user = nil
				}
			})
		},
		Hooks:         s.flowHooks(),
		Outcome:       op.outcome,
		PendingMetric: int(MetricProfilePending),
		PendingEvent:  EventProfilePending,
		StaleEvent:    EventResponseStale,
		StaleErr:      ErrStaleResponse,
		NotReadyErr:   ErrStoreNotReady,
	}

	if op.silent {
		deps.FetchProfile = func(ctx context.Context) (*session.User, error) {
			r := s.api.GetAboutMe(ctx)
			if err := resultErr(r); err != nil {
				return nil, err
			}
			u := r.Data
			if !s.apply(ctx, ticket, true, func() { s.user = &u }) {
				return nil, ErrStaleResponse
			}
			return &u, nil
		}
	} else {
		deps.FetchProfile = func(ctx context.Context) (*session.User, error) {
			res := s.fetchUser(ctx, ticket)
			return res.User, res.Err
		}
	}

	if op.clearErr {
		deps.OnCredentialFailure = func() bool {
			ok := s.apply(ctx, ticket, true, s.clearLocked)
			if ok {
				s.metrics.Inc(MetricSessionCleared)
			}
			return ok
		}
	}

	res := flows.RunAcquire(ctx, deps)
	logEvt := s.logger.Debug().Str("op", op.name).Stringer("stage", res.Stage)
	switch res.Stage {
	case flows.StageComplete, flows.StageTokenAcquired:
		if res.ProfileErr != nil {
			logEvt = logEvt.AnErr("profile_error", res.ProfileErr)
		}
		logEvt.Msg("session operation succeeded")
		return Ok(payload)
	default:
		logEvt.Err(res.Err).Msg("session operation failed")
		return Fail[TokenPayload](res.Err)
	}
}

// fetchUser is the loading-mode profile step shared by FetchUser and the chained
// compound operations.
func (s *SessionStore) fetchUser(ctx context.Context, ticket uint64) flows.FetchUserResult {
	s.beginLoading()
	defer s.endLoading()

	return flows.RunFetchUser(ctx, flows.FetchUserDeps{
		GetAboutMe: func(ctx context.Context) (*session.User, error) {
			r := s.api.GetAboutMe(ctx)
			if err := resultErr(r); err != nil {
				return nil, err
			}
			u := r.Data
			return &u, nil
		},
		ApplyUser: func(u *session.User) bool {
			cp := *u
			return s.apply(ctx, ticket, true, func() { s.user = &cp })
		},
		Hooks: s.flowHooks(),
		Outcome: flows.Outcome{
			SuccessMetric: int(MetricProfileSuccess),
			FailureMetric: int(MetricProfileFailure),
			SuccessEvent:  EventProfileSuccess,
			FailureEvent:  EventProfileFailure,
		},
		StaleEvent:  EventResponseStale,
		StaleErr:    ErrStaleResponse,
		NotReadyErr: ErrEmptyProfile,
	})
}

func (s *SessionStore) currentUser() *session.User {
	u, ok := s.User()
	if !ok {
		return nil
	}
	return &u
}

func (s *SessionStore) observe(start time.Time) {
	s.metrics.Observe(MetricOperationLatency, time.Since(start))
}

func (s *SessionStore) flowHooks() flows.Hooks {
	return flows.Hooks{
		MetricInc: func(id int) { s.metrics.Inc(MetricID(id)) },
		EmitAudit: s.emitAudit,
	}
}
