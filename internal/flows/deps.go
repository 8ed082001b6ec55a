package flows

import (
	"context"

	"github.com/MrEthical07/portalAuth/session"
)

// Hooks carries the observability callbacks every flow uses. Nil fields are
// replaced with no-ops.
type Hooks struct {
	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, user *session.User, err error, metadata func() map[string]string)
}

func (h Hooks) withDefaults() Hooks {
	if h.MetricInc == nil {
		h.MetricInc = func(int) {}
	}
	if h.EmitAudit == nil {
		h.EmitAudit = func(context.Context, string, bool, *session.User, error, func() map[string]string) {}
	}
	return h
}

// Outcome names the metric IDs and audit event names for one operation.
type Outcome struct {
	SuccessMetric int
	FailureMetric int
	SuccessEvent  string
	FailureEvent  string
}
