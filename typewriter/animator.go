package typewriter

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrAlreadyStarted = errors.New("typewriter: animator already started")
	ErrClosed         = errors.New("typewriter: animator closed")
)

type Option func(*Animator)

func WithClock(clk clock.Clock) Option {
	return func(a *Animator) {
		a.clk = clk
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Animator) {
		a.logger = logger
	}
}

// WithTickHook registers fn to be called from the tick goroutine after every
// state change. fn must not call Close.
func WithTickHook(fn func(State)) Option {
	return func(a *Animator) {
		a.onTick = fn
	}
}

// Animator drives a Machine with a timer. There is at most one pending timer,
// and the tick goroutine is the only writer of the state.
type Animator struct {
	clk    clock.Clock
	logger *zap.SugaredLogger
	onTick func(State)

	mu      sync.Mutex
	machine *Machine
	state   State
	started bool
	closed  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config, opts ...Option) (*Animator, error) {
	m, err := NewMachine(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create animator")
	}
	a := &Animator{
		clk:     clock.New(),
		logger:  zap.NewNop().Sugar(),
		machine: m,
		state:   m.State(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Start arms the first timer and begins ticking until ctx is cancelled or
// Close is called.
func (a *Animator) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.started {
		return ErrAlreadyStarted
	}
	a.started = true

	ctx, a.cancel = context.WithCancel(ctx)
	timer := a.clk.Timer(a.state.Delay)

	a.wg.Add(1)
	go a.run(ctx, timer)
	a.logger.Debugw("typewriter started", "phrases", len(a.machine.phrases))
	return nil
}

func (a *Animator) run(ctx context.Context, timer *clock.Timer) {
	defer a.wg.Done()
	defer func() {
		timer.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		// both cases may have been ready
		if ctx.Err() != nil {
			return
		}

		a.mu.Lock()
		state := a.machine.Step()
		a.state = state
		a.mu.Unlock()

		timer = a.clk.Timer(state.Delay)
		if a.onTick != nil {
			a.onTick(state)
		}
	}
}

// Close stops the animator and waits for the tick goroutine to exit. Once it
// returns the state no longer changes. Calling Close more than once is safe.
func (a *Animator) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	cancel := a.cancel
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	a.wg.Wait()

	s := a.State()
	a.logger.Debugw("typewriter stopped", "index", s.Index, "text", s.Text)
	return nil
}

func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Text is the text currently on screen.
func (a *Animator) Text() string {
	return a.State().Text
}
