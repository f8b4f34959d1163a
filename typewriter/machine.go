// Package typewriter cycles through a list of phrases, typing and erasing
// them one rune at a time.
package typewriter

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNoPhrases    = errors.New("typewriter: phrase list is empty")
	ErrEmptyPhrase  = errors.New("typewriter: phrase is empty")
	ErrInvalidDelay = errors.New("typewriter: delay must not be negative")
	ErrSlowDeleting = errors.New("typewriter: deleting delay must be shorter than typing delay")
)

const (
	DefaultTypingDelay     = 120 * time.Millisecond
	DefaultDeletingDelay   = 50 * time.Millisecond
	DefaultPauseAtFullWord = 2000 * time.Millisecond
)

// Mode is whether the animator is adding or removing characters.
type Mode int

const (
	Typing Mode = iota
	Deleting
)

func (m Mode) String() string {
	switch m {
	case Typing:
		return "typing"
	case Deleting:
		return "deleting"
	default:
		return "unknown"
	}
}

// Config holds the phrases and the delays between ticks.
// PauseBeforeNext is the delay after a phrase has been fully erased; zero
// means TypingDelay.
type Config struct {
	Phrases         []string
	TypingDelay     time.Duration
	DeletingDelay   time.Duration
	PauseAtFullWord time.Duration
	PauseBeforeNext time.Duration
}

func DefaultConfig() Config {
	return Config{
		Phrases:         []string{"AI & ML Engineer", "Researcher", "Developer"},
		TypingDelay:     DefaultTypingDelay,
		DeletingDelay:   DefaultDeletingDelay,
		PauseAtFullWord: DefaultPauseAtFullWord,
	}
}

func (c Config) withDefaults() Config {
	if c.TypingDelay == 0 {
		c.TypingDelay = DefaultTypingDelay
	}
	if c.DeletingDelay == 0 {
		c.DeletingDelay = DefaultDeletingDelay
	}
	if c.PauseAtFullWord == 0 {
		c.PauseAtFullWord = DefaultPauseAtFullWord
	}
	if c.PauseBeforeNext == 0 {
		c.PauseBeforeNext = c.TypingDelay
	}
	return c
}

// Validate reports configuration errors. Zero delays are accepted and
// replaced by defaults when a Machine is built; erasing must still run
// faster than typing once they are.
func (c Config) Validate() error {
	if len(c.Phrases) == 0 {
		return ErrNoPhrases
	}
	for i, p := range c.Phrases {
		if p == "" {
			return errors.Wrapf(ErrEmptyPhrase, "phrase %d", i)
		}
	}
	delays := []struct {
		name string
		d    time.Duration
	}{
		{"typing", c.TypingDelay},
		{"deleting", c.DeletingDelay},
		{"pause at full word", c.PauseAtFullWord},
		{"pause before next", c.PauseBeforeNext},
	}
	for _, d := range delays {
		if d.d < 0 {
			return errors.Wrapf(ErrInvalidDelay, "%s delay %v", d.name, d.d)
		}
	}
	if eff := c.withDefaults(); eff.DeletingDelay >= eff.TypingDelay {
		return errors.Wrapf(ErrSlowDeleting, "deleting %v, typing %v", eff.DeletingDelay, eff.TypingDelay)
	}
	return nil
}

// State is a snapshot of the animator. Text is always a prefix of the
// phrase at Index, and Delay is the wait before the next tick.
type State struct {
	Index int
	Text  string
	Mode  Mode
	Delay time.Duration
}

// Machine is the step function of the animation, without any timers.
type Machine struct {
	cfg     Config
	phrases [][]rune

	index int
	n     int // runes of phrases[index] on screen
	mode  Mode
	delay time.Duration
}

func NewMachine(cfg Config) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	phrases := make([][]rune, len(cfg.Phrases))
	for i, p := range cfg.Phrases {
		phrases[i] = []rune(p)
	}
	return &Machine{
		cfg:     cfg,
		phrases: phrases,
		mode:    Typing,
		delay:   cfg.TypingDelay,
	}, nil
}

// Config returns the configuration with defaults applied.
func (m *Machine) Config() Config {
	return m.cfg
}

func (m *Machine) State() State {
	return State{
		Index: m.index,
		Text:  string(m.phrases[m.index][:m.n]),
		Mode:  m.mode,
		Delay: m.delay,
	}
}

// Step advances the animation by one tick and returns the new state.
//
// A tick that completes a phrase flips the mode to Deleting and sets the
// pause delay, so the full phrase stays on screen for one pause before the
// first rune is erased. A tick that erases the last rune moves on to the
// next phrase, wrapping around.
func (m *Machine) Step() State {
	phrase := m.phrases[m.index]

	switch m.mode {
	case Typing:
		m.n++
		if m.n == len(phrase) {
			m.mode = Deleting
			m.delay = m.cfg.PauseAtFullWord
		} else {
			m.delay = m.cfg.TypingDelay
		}
	case Deleting:
		m.n--
		if m.n == 0 {
			m.mode = Typing
			m.index = (m.index + 1) % len(m.phrases)
			m.delay = m.cfg.PauseBeforeNext
		} else {
			m.delay = m.cfg.DeletingDelay
		}
	}
	return m.State()
}

// Frames runs n steps and returns the state after each one.
func (m *Machine) Frames(n int) []State {
	if n < 0 {
		n = 0
	}
	frames := make([]State, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, m.Step())
	}
	return frames
}

// CycleLength is the number of ticks needed to type and erase every phrase
// once and come back to the first one.
func (m *Machine) CycleLength() int {
	n := 0
	for _, p := range m.phrases {
		n += 2 * len(p)
	}
	return n
}
