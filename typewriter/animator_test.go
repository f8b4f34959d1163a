package typewriter

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnimator(t *testing.T, phrases ...string) (*Animator, *clock.Mock, chan State) {
	t.Helper()
	mock := clock.NewMock()
	ticks := make(chan State, 64)
	a, err := New(Config{Phrases: phrases},
		WithClock(mock),
		WithTickHook(func(s State) { ticks <- s }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, mock, ticks
}

func nextTick(t *testing.T, ticks <-chan State) State {
	t.Helper()
	select {
	case s := <-ticks:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return State{}
	}
}

func TestNewFailsOnEmptyPhrases(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPhrases))
}

func TestAnimatorTicksOnDelay(t *testing.T) {
	a, mock, ticks := newTestAnimator(t, "Go", "Gin")
	require.NoError(t, a.Start(context.Background()))

	mock.Add(DefaultTypingDelay)
	s := nextTick(t, ticks)
	assert.Equal(t, "G", s.Text)
	assert.Equal(t, "G", a.Text())

	mock.Add(DefaultTypingDelay)
	s = nextTick(t, ticks)
	assert.Equal(t, "Go", s.Text)
	assert.Equal(t, Deleting, s.Mode)

	// nothing happens until the full pause has elapsed
	mock.Add(DefaultPauseAtFullWord - time.Millisecond)
	select {
	case s := <-ticks:
		t.Fatalf("unexpected tick %+v", s)
	case <-time.After(20 * time.Millisecond):
	}
	mock.Add(time.Millisecond)
	s = nextTick(t, ticks)
	assert.Equal(t, "G", s.Text)

	mock.Add(DefaultDeletingDelay)
	s = nextTick(t, ticks)
	assert.Equal(t, "", s.Text)
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, Typing, s.Mode)
}

func TestAnimatorStartTwice(t *testing.T) {
	a, _, _ := newTestAnimator(t, "Go")
	require.NoError(t, a.Start(context.Background()))
	assert.Equal(t, ErrAlreadyStarted, a.Start(context.Background()))
}

func TestAnimatorStartAfterClose(t *testing.T) {
	a, _, _ := newTestAnimator(t, "Go")
	require.NoError(t, a.Close())
	assert.Equal(t, ErrClosed, a.Start(context.Background()))
}

func TestAnimatorNoChangeAfterClose(t *testing.T) {
	a, mock, ticks := newTestAnimator(t, "Go")
	require.NoError(t, a.Start(context.Background()))

	mock.Add(DefaultTypingDelay)
	nextTick(t, ticks)
	before := a.State()

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	mock.Add(time.Minute)
	select {
	case s := <-ticks:
		t.Fatalf("tick after close: %+v", s)
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, before, a.State())
}

func TestAnimatorStopsWithContext(t *testing.T) {
	a, mock, ticks := newTestAnimator(t, "Go")
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Start(ctx))

	cancel()
	require.NoError(t, a.Close())

	mock.Add(time.Minute)
	assert.Len(t, ticks, 0)
	assert.Equal(t, "", a.Text())
}
