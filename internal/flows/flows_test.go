package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/portalAuth/role"
	"github.com/MrEthical07/portalAuth/session"
)

var (
	errStale    = errors.New("stale")
	errNotReady = errors.New("not ready")
)

type recorder struct {
	metrics []int
	events  []string
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		MetricInc: func(id int) { r.metrics = append(r.metrics, id) },
		EmitAudit: func(_ context.Context, event string, _ bool, _ *session.User, _ error, _ func() map[string]string) {
			r.events = append(r.events, event)
		},
	}
}

func acquireDeps(rec *recorder) AcquireDeps {
	return AcquireDeps{
		Hooks:         rec.hooks(),
		Outcome:       Outcome{SuccessMetric: 1, FailureMetric: 2, SuccessEvent: "login.success", FailureEvent: "login.failure"},
		PendingMetric: 3,
		PendingEvent:  "profile.pending",
		StaleEvent:    "response.stale",
		StaleErr:      errStale,
		NotReadyErr:   errNotReady,
	}
}

func TestRunAcquireComplete(t *testing.T) {
	rec := &recorder{}
	deps := acquireDeps(rec)
	var stored string
	deps.Credential = func(context.Context) (string, error) { return "t1", nil }
	deps.ApplyToken = func(tok string) bool { stored = tok; return true }
	deps.FetchProfile = func(context.Context) (*session.User, error) {
		return &session.User{ID: "1", Role: role.Studio}, nil
	}

	res := RunAcquire(context.Background(), deps)
	if res.Stage != StageComplete || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if stored != "t1" || res.User.Role != role.Studio {
		t.Fatalf("token %q user %+v", stored, res.User)
	}
	if len(rec.events) != 1 || rec.events[0] != "login.success" {
		t.Fatalf("events %v", rec.events)
	}
}

func TestRunAcquireProfileFailureStopsAtTokenAcquired(t *testing.T) {
	rec := &recorder{}
	deps := acquireDeps(rec)
	profileErr := errors.New("me failed")
	deps.Credential = func(context.Context) (string, error) { return "t1", nil }
	deps.ApplyToken = func(string) bool { return true }
	deps.FetchProfile = func(context.Context) (*session.User, error) { return nil, profileErr }

	res := RunAcquire(context.Background(), deps)
	if res.Stage != StageTokenAcquired {
		t.Fatalf("expected token acquired, got %s", res.Stage)
	}
	if res.Err != nil {
		t.Fatalf("first-call status must be success, got %v", res.Err)
	}
	if !errors.Is(res.ProfileErr, profileErr) {
		t.Fatalf("expected profile error, got %v", res.ProfileErr)
	}
	if rec.events[len(rec.events)-1] != "profile.pending" {
		t.Fatalf("events %v", rec.events)
	}
}

func TestRunAcquireCredentialFailureSkipsProfile(t *testing.T) {
	rec := &recorder{}
	deps := acquireDeps(rec)
	credErr := errors.New("invalid credentials")
	deps.Credential = func(context.Context) (string, error) { return "", credErr }
	deps.ApplyToken = func(string) bool { t.Fatal("token must not be applied"); return false }
	deps.FetchProfile = func(context.Context) (*session.User, error) {
		t.Fatal("profile must not be fetched")
		return nil, nil
	}
	cleared := false
	deps.OnCredentialFailure = func() bool { cleared = true; return true }

	res := RunAcquire(context.Background(), deps)
	if res.Stage != StageCredentialFailed || !errors.Is(res.Err, credErr) {
		t.Fatalf("unexpected result %+v", res)
	}
	if !cleared {
		t.Fatal("expected failure hook to run")
	}
	if len(rec.metrics) != 1 || rec.metrics[0] != 2 {
		t.Fatalf("metrics %v", rec.metrics)
	}
}

func TestRunAcquireStaleToken(t *testing.T) {
	rec := &recorder{}
	deps := acquireDeps(rec)
	deps.Credential = func(context.Context) (string, error) { return "old", nil }
	deps.ApplyToken = func(string) bool { return false }
	deps.FetchProfile = func(context.Context) (*session.User, error) {
		t.Fatal("profile must not be fetched for stale token")
		return nil, nil
	}

	res := RunAcquire(context.Background(), deps)
	if res.Stage != StageStale || !errors.Is(res.Err, errStale) {
		t.Fatalf("unexpected result %+v", res)
	}
	if rec.events[0] != "response.stale" {
		t.Fatalf("events %v", rec.events)
	}
}

func TestRunAcquireNotReady(t *testing.T) {
	res := RunAcquire(context.Background(), AcquireDeps{NotReadyErr: errNotReady})
	if res.Stage != StageNone || !errors.Is(res.Err, errNotReady) {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRunFetchUser(t *testing.T) {
	rec := &recorder{}
	var applied *session.User
	deps := FetchUserDeps{
		GetAboutMe: func(context.Context) (*session.User, error) { return &session.User{ID: "7"}, nil },
		ApplyUser:  func(u *session.User) bool { applied = u; return true },
		Hooks:      rec.hooks(),
		Outcome:    Outcome{SuccessEvent: "profile.success", FailureEvent: "profile.failure"},
	}
	res := RunFetchUser(context.Background(), deps)
	if res.Err != nil || applied == nil || applied.ID != "7" {
		t.Fatalf("unexpected result %+v", res)
	}

	deps.GetAboutMe = func(context.Context) (*session.User, error) { return nil, nil }
	deps.NotReadyErr = errNotReady
	res = RunFetchUser(context.Background(), deps)
	if !errors.Is(res.Err, errNotReady) {
		t.Fatalf("nil user must be an error, got %v", res.Err)
	}
}

func TestRunLogout(t *testing.T) {
	rec := &recorder{}
	cleared := 0
	deps := LogoutDeps{
		Logout:  func(context.Context) error { return nil },
		Clear:   func() bool { cleared++; return true },
		Current: func() *session.User { return &session.User{ID: "1"} },
		Hooks:   rec.hooks(),
		Outcome: Outcome{SuccessEvent: "logout.success", FailureEvent: "logout.failure"},
	}
	if res := RunLogout(context.Background(), deps); res.Err != nil || cleared != 1 {
		t.Fatalf("unexpected result %+v cleared=%d", res, cleared)
	}

	deps.Logout = func(context.Context) error { return errors.New("offline") }
	if res := RunLogout(context.Background(), deps); res.Err == nil || cleared != 1 {
		t.Fatalf("failed logout must not clear, result %+v cleared=%d", res, cleared)
	}
}
