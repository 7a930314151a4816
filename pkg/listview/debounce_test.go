package listview

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type emissions struct {
	mu     sync.Mutex
	values []string
}

func (e *emissions) record(v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values = append(e.values, v)
}

func (e *emissions) get() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.values...)
}

func newTestDebouncer() (*Debouncer, *clockwork.FakeClock, *emissions) {
	clock := clockwork.NewFakeClock()
	em := &emissions{}
	return NewDebouncer(500*time.Millisecond, em.record, WithClock(clock)), clock, em
}

func TestDebouncerEmitsLastValueOnce(t *testing.T) {
	d, clock, em := newTestDebouncer()

	for _, v := range []string{"a", "al", "ali"} {
		d.Type(v)
		require.Equal(t, v, d.Value(), "value updates without delay")
		clock.Advance(200 * time.Millisecond)
	}
	require.Empty(t, em.get())

	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool { return len(em.get()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"ali"}, em.get())

	clock.Advance(time.Second)
	require.Never(t, func() bool { return len(em.get()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	require.False(t, d.Pending())
}

func TestDebouncerSeparateBursts(t *testing.T) {
	d, clock, em := newTestDebouncer()

	d.Type("a")
	clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { return len(em.get()) == 1 }, time.Second, 5*time.Millisecond)

	d.Type("b")
	clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { return len(em.get()) == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"a", "b"}, em.get())
}

func TestDebouncerSyncDoesNotEmit(t *testing.T) {
	d, clock, em := newTestDebouncer()

	d.Type("draft")
	d.Sync("")
	require.Equal(t, "", d.Value())
	clock.Advance(time.Second)
	require.Never(t, func() bool { return len(em.get()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestDebouncerCloseCancelsPending(t *testing.T) {
	d, clock, em := newTestDebouncer()

	d.Type("ali")
	d.Close()
	clock.Advance(time.Second)
	d.Type("bob")
	clock.Advance(time.Second)

	require.Never(t, func() bool { return len(em.get()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	require.Equal(t, "ali", d.Value())
}
