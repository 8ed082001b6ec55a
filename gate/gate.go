package gate

import (
	"context"
	"sync"
	"sync/atomic"

	portalAuth "github.com/MrEthical07/portalAuth"
	"github.com/rs/zerolog"
)

// Store is the part of the session store the gate reads.
// *portalAuth.SessionStore satisfies it.
type Store interface {
	RefreshJWT(ctx context.Context) portalAuth.Result[portalAuth.TokenPayload]
	Snapshot() portalAuth.State
	Subscribe(fn func(portalAuth.State)) (cancel func())
}

// Navigator receives redirect instructions. The gate never navigates itself.
type Navigator interface {
	Redirect(target string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(target string)

func (f NavigatorFunc) Redirect(target string) { f(target) }

// Phase is the gate lifecycle position.
type Phase uint8

const (
	// Bootstrapping renders nothing until the startup refresh settles.
	Bootstrapping Phase = iota
	// Ready evaluates routes normally.
	Ready
)

func (p Phase) String() string {
	if p == Ready {
		return "ready"
	}
	return "bootstrapping"
}

// Option configures a [Gate].
type Option func(*Gate)

// WithTable replaces [DefaultTable].
func WithTable(t *Table) Option {
	return func(g *Gate) {
		if t != nil {
			g.table = t
		}
	}
}

// WithNavigator sets the collaborator that receives redirects from [Gate.Navigate].
func WithNavigator(n Navigator) Option {
	return func(g *Gate) { g.nav = n }
}

// WithLogger sets the gate logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// Gate holds route evaluation until the session bootstrap has settled.
type Gate struct {
	store  Store
	table  *Table
	nav    Navigator
	logger zerolog.Logger

	once   sync.Once
	ready  chan struct{}
	phase  atomic.Uint32
	result portalAuth.Result[portalAuth.TokenPayload]
}

// New returns a gate in the [Bootstrapping] phase.
func New(store Store, opts ...Option) *Gate {
	g := &Gate{
		store:  store,
		table:  DefaultTable(),
		logger: zerolog.Nop(),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Bootstrap runs the store's RefreshJWT exactly once and moves the gate to
// [Ready] whatever the outcome: a failed refresh only means there is no
// session. Later calls wait for the first one and return its result.
func (g *Gate) Bootstrap(ctx context.Context) portalAuth.Result[portalAuth.TokenPayload] {
	g.once.Do(func() {
		defer close(g.ready)
		defer g.phase.Store(uint32(Ready))

		g.result = g.store.RefreshJWT(ctx)
		if g.result.OK() {
			g.logger.Info().Str("phase", g.store.Snapshot().Phase().String()).Msg("session bootstrap complete")
		} else {
			g.logger.Info().Str("reason", g.result.Message()).Msg("session bootstrap without session")
		}
	})
	<-g.ready
	return g.result
}

// Phase reports the current lifecycle phase.
func (g *Gate) Phase() Phase {
	return Phase(g.phase.Load())
}

// Ready is closed once bootstrap has settled.
func (g *Gate) Ready() <-chan struct{} {
	return g.ready
}

// Table returns the route table the gate evaluates.
func (g *Gate) Table() *Table {
	return g.table
}

// Evaluate decides path against the current session without blocking. It
// returns [Wait] while bootstrapping or while a loading operation is in flight.
func (g *Gate) Evaluate(path string) Decision {
	if g.Phase() != Ready {
		return Decision{Action: Wait}
	}
	state := g.store.Snapshot()
	if state.Loading {
		return Decision{Action: Wait}
	}
	return g.table.Decide(path, state)
}

// Navigate blocks until the gate is ready and no loading operation is in
// flight, then decides path and hands any redirect to the navigator.
func (g *Gate) Navigate(ctx context.Context, path string) (Decision, error) {
	state, err := g.settled(ctx)
	if err != nil {
		return Decision{Action: Wait}, err
	}
	d := g.table.Decide(path, state)
	g.logger.Debug().
		Str("path", path).
		Str("action", d.Action.String()).
		Str("target", d.Target).
		Str("role", state.Role().String()).
		Msg("route decision")
	if d.Action == Redirect && g.nav != nil {
		g.nav.Redirect(d.Target)
	}
	return d, nil
}

// settled waits for Ready and then for a snapshot with loading cleared.
func (g *Gate) settled(ctx context.Context) (portalAuth.State, error) {
	select {
	case <-g.ready:
	case <-ctx.Done():
		return portalAuth.State{}, ctx.Err()
	}

	state := g.store.Snapshot()
	if !state.Loading {
		return state, nil
	}

	changed := make(chan struct{}, 1)
	cancel := g.store.Subscribe(func(portalAuth.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for {
		state = g.store.Snapshot()
		if !state.Loading {
			return state, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return portalAuth.State{}, ctx.Err()
		}
	}
}
