package portalAuth

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/portalAuth/jwt"
)

// StartSilentRefresh runs RefreshJWTNonLoad in the background shortly before the
// access token expires. Opaque tokens are refreshed every Refresh.Interval. The
// loop idles while there is no token. It stops when ctx is done, when stop is
// called, or on Close.
func (s *SessionStore) StartSilentRefresh(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	var once sync.Once
	stop = func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		close(done)
		return stop
	}
	s.stops = append(s.stops, stop)
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.runSilentRefresh(ctx)
	}()
	return stop
}

func (s *SessionStore) runSilentRefresh(ctx context.Context) {
	timer := time.NewTimer(s.nextRefreshDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if s.Token() != "" {
			res := s.RefreshJWTNonLoad(ctx)
			if !res.OK() {
				s.logger.Warn().Err(res.Err).Msg("silent refresh failed")
			}
		}
		timer.Reset(s.nextRefreshDelay())
	}
}

// nextRefreshDelay schedules the refresh Lead before the token's exp claim.
func (s *SessionStore) nextRefreshDelay() time.Duration {
	rc := s.cfg.Refresh
	token := s.Token()
	if token == "" {
		return rc.Interval
	}
	exp, ok := jwt.PeekExpiry(token)
	if !ok {
		return rc.Interval
	}
	d := exp.Sub(s.now()) - rc.Lead
	if d < rc.MinDelay {
		d = rc.MinDelay
	}
	return d
}
