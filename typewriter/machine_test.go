package typewriter

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rolePhrases = []string{"AI & ML Engineer", "Researcher", "Developer"}

func newTestMachine(t *testing.T, phrases ...string) *Machine {
	t.Helper()
	cfg := DefaultConfig()
	if len(phrases) > 0 {
		cfg.Phrases = phrases
	}
	m, err := NewMachine(cfg)
	require.NoError(t, err)
	return m
}

func TestNewMachineRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"no phrases", Config{}, ErrNoPhrases},
		{"empty phrase", Config{Phrases: []string{"Go", ""}}, ErrEmptyPhrase},
		{"negative delay", Config{Phrases: []string{"Go"}, DeletingDelay: -time.Millisecond}, ErrInvalidDelay},
		{"deleting slower than typing", Config{Phrases: []string{"Go"}, TypingDelay: 40 * time.Millisecond, DeletingDelay: 90 * time.Millisecond}, ErrSlowDeleting},
		{"deleting as slow as typing", Config{Phrases: []string{"Go"}, TypingDelay: 80 * time.Millisecond, DeletingDelay: 80 * time.Millisecond}, ErrSlowDeleting},
		{"default deleting slower than typing", Config{Phrases: []string{"Go"}, TypingDelay: 30 * time.Millisecond}, ErrSlowDeleting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMachine(tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestInitialState(t *testing.T) {
	m := newTestMachine(t)
	s := m.State()
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, "", s.Text)
	assert.Equal(t, Typing, s.Mode)
	assert.Equal(t, DefaultTypingDelay, s.Delay)
}

func TestDefaultsFillZeroDelays(t *testing.T) {
	m, err := NewMachine(Config{Phrases: []string{"Go"}})
	require.NoError(t, err)
	cfg := m.Config()
	assert.Equal(t, DefaultTypingDelay, cfg.TypingDelay)
	assert.Equal(t, DefaultDeletingDelay, cfg.DeletingDelay)
	assert.Equal(t, DefaultPauseAtFullWord, cfg.PauseAtFullWord)
	assert.Equal(t, DefaultTypingDelay, cfg.PauseBeforeNext)
}

func TestTypingAddsOneRune(t *testing.T) {
	m := newTestMachine(t)
	for i := 0; i < 200; i++ {
		before := m.State()
		after := m.Step()
		phrase := rolePhrases[before.Index]

		switch before.Mode {
		case Typing:
			assert.Equal(t, len([]rune(before.Text))+1, len([]rune(after.Text)))
			assert.True(t, strings.HasPrefix(after.Text, before.Text))
			assert.True(t, strings.HasPrefix(phrase, after.Text))
		case Deleting:
			bt := []rune(before.Text)
			assert.Equal(t, string(bt[:len(bt)-1]), after.Text)
		}
	}
}

func TestPauseAtFullWord(t *testing.T) {
	m := newTestMachine(t, "Go")

	s := m.Step()
	assert.Equal(t, "G", s.Text)
	assert.Equal(t, Typing, s.Mode)
	assert.Equal(t, DefaultTypingDelay, s.Delay)

	s = m.Step()
	assert.Equal(t, "Go", s.Text)
	assert.Equal(t, Deleting, s.Mode)
	assert.Equal(t, DefaultPauseAtFullWord, s.Delay)

	s = m.Step()
	assert.Equal(t, "G", s.Text)
	assert.Equal(t, DefaultDeletingDelay, s.Delay)
}

func TestEmptyAdvancesIndex(t *testing.T) {
	m := newTestMachine(t, "ab", "c")

	for i := 0; i < 4; i++ {
		m.Step()
	}
	s := m.State()
	assert.Equal(t, "", s.Text)
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, Typing, s.Mode)
	assert.Equal(t, DefaultTypingDelay, s.Delay)

	m.Step() // "c"
	s = m.Step()
	assert.Equal(t, 0, s.Index, "index wraps")
}

func TestPauseBeforeNext(t *testing.T) {
	cfg := Config{Phrases: []string{"a"}, PauseBeforeNext: 700 * time.Millisecond}
	m, err := NewMachine(cfg)
	require.NoError(t, err)

	m.Step()
	s := m.Step()
	assert.Equal(t, "", s.Text)
	assert.Equal(t, 700*time.Millisecond, s.Delay)
}

func TestFullCycleVisitsEveryPhraseOnce(t *testing.T) {
	m := newTestMachine(t, rolePhrases...)

	var full []string
	for _, s := range m.Frames(m.CycleLength()) {
		if s.Text == rolePhrases[s.Index] {
			full = append(full, s.Text)
		}
	}
	assert.Equal(t, rolePhrases, full)

	s := m.State()
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, "", s.Text)
	assert.Equal(t, Typing, s.Mode)
}

func TestMultibytePhrase(t *testing.T) {
	m := newTestMachine(t, "héllo")
	frames := m.Frames(5)
	assert.Equal(t, "hé", frames[1].Text)
	assert.Equal(t, "héllo", frames[4].Text)
	assert.Equal(t, Deleting, frames[4].Mode)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "typing", Typing.String())
	assert.Equal(t, "deleting", Deleting.String())
	assert.Equal(t, "unknown", Mode(7).String())
}
