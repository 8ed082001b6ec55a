package portalAuth

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrEthical07/portalAuth/internal/audit"
)

// Audit event names.
const (
	EventLoginSuccess         = "login.success"
	EventLoginFailure         = "login.failure"
	EventRegisterSuccess      = "register.success"
	EventRegisterFailure      = "register.failure"
	EventRefreshSuccess       = "refresh.success"
	EventRefreshFailure       = "refresh.failure"
	EventSilentRefreshSuccess = "refresh.silent.success"
	EventSilentRefreshFailure = "refresh.silent.failure"
	EventProfileSuccess       = "profile.success"
	EventProfileFailure       = "profile.failure"
	EventProfilePending       = "profile.pending"
	EventLogoutSuccess        = "logout.success"
	EventLogoutFailure        = "logout.failure"
	EventResponseStale        = "response.stale"
)

type (
	// AuditEvent is one session operation outcome.
	AuditEvent = audit.Event
	// AuditSink receives emitted events on the dispatcher goroutine.
	AuditSink = audit.Sink
	// NoOpSink drops events.
	NoOpSink = audit.NoOpSink
	// ChannelSink buffers events into a channel.
	ChannelSink = audit.ChannelSink
	// JSONWriterSink writes newline-delimited JSON.
	JSONWriterSink = audit.JSONWriterSink
	// LoggerSink forwards events to zerolog.
	LoggerSink = audit.LoggerSink
)

var (
	NewChannelSink    = audit.NewChannelSink
	NewJSONWriterSink = audit.NewJSONWriterSink
	NewLoggerSink     = audit.NewLoggerSink
)

func (s *SessionStore) emitAudit(ctx context.Context, eventType string, success bool, user *User, err error, metadata func() map[string]string) {
	if s.audit == nil {
		return
	}
	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: s.now().UTC(),
		EventType: eventType,
		Success:   success,
	}
	if user != nil {
		event.UserID = user.ID
		event.Role = user.Role.String()
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}
	s.audit.Emit(ctx, event)
}

// AuditDropped returns the number of events dropped because the buffer was full.
func (s *SessionStore) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// AuditDroppedByType returns dropped event counts keyed by event name, such as
// [EventRefreshFailure].
func (s *SessionStore) AuditDroppedByType() map[string]uint64 {
	if s == nil {
		return map[string]uint64{}
	}
	return s.audit.DroppedByType()
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *audit.Dispatcher {
	return audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}
