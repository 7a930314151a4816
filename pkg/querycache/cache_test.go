package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	calls atomic.Int32
	mu    sync.Mutex
	rows  []string
	err   error
	gate  chan struct{}
}

func (s *source) set(rows []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows, s.err = rows, err
}

func (s *source) fetch(ctx context.Context, key string) ([]string, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.rows...), nil
}

func TestGetCachesAfterFirstFetch(t *testing.T) {
	src := &source{rows: []string{"alice", "bob"}}
	c := New("employees", src.fetch)

	snap, err := c.Get(context.Background(), "t1/employees")
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, snap.Rows)

	_, err = c.Get(context.Background(), "t1/employees")
	require.NoError(t, err)
	require.EqualValues(t, 1, src.calls.Load())
}

func TestGetDeduplicatesConcurrentMisses(t *testing.T) {
	src := &source{rows: []string{"alice"}, gate: make(chan struct{})}
	c := New("employees", src.fetch)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := c.Get(context.Background(), "k")
			assert.NoError(t, err)
			assert.Equal(t, []string{"alice"}, snap.Rows)
		}()
	}
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	require.EqualValues(t, 1, src.calls.Load())
}

func TestOverlappingRevalidationsShareOneFetch(t *testing.T) {
	src := &source{rows: []string{"alice"}, gate: make(chan struct{})}
	c := New("employees", src.fetch)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := c.Revalidate(context.Background(), "t1/employees")
			assert.NoError(t, snap.Err)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.Get(context.Background(), "t1/employees")
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	require.EqualValues(t, 1, src.calls.Load())
}

func TestCancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	c := New("employees", func(ctx context.Context, key string) ([]string, error) {
		calls.Add(1)
		select {
		case <-gate:
			return []string{"alice"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := c.Get(leaderCtx, "t1/employees")
		leaderDone <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	followerDone := make(chan Snapshot[string], 1)
	go func() {
		snap, _ := c.Get(context.Background(), "t1/employees")
		followerDone <- snap
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-leaderDone, context.Canceled)

	close(gate)
	snap := <-followerDone
	require.NoError(t, snap.Err)
	require.Equal(t, []string{"alice"}, snap.Rows)
	require.EqualValues(t, 1, calls.Load())

	cached, ok := c.Peek("t1/employees")
	require.True(t, ok)
	require.Equal(t, []string{"alice"}, cached.Rows)
}

func TestGetErrorCarriesNoRows(t *testing.T) {
	src := &source{rows: []string{"alice"}}
	c := New("employees", src.fetch)
	_, err := c.Get(context.Background(), "k")
	require.NoError(t, err)

	boom := errors.New("db down")
	src.set(nil, boom)
	snap := c.Revalidate(context.Background(), "k")
	require.ErrorIs(t, snap.Err, boom)
	require.Nil(t, snap.Rows)

	_, ok := c.Peek("k")
	require.False(t, ok, "failed fetch must not leave stale rows behind")

	src.set([]string{"alice", "bob"}, nil)
	snap, err = c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Len(t, snap.Rows, 2)
}

func TestInvalidateRefetchesForSubscribers(t *testing.T) {
	src := &source{rows: []string{"alice"}}
	c := New("employees", src.fetch)
	_, err := c.Get(context.Background(), "k")
	require.NoError(t, err)

	got := make(chan Snapshot[string], 4)
	unsubscribe := c.Subscribe("k", func(s Snapshot[string]) { got <- s })
	other := make(chan Snapshot[string], 4)
	c.Subscribe("k", func(s Snapshot[string]) { other <- s })

	src.set([]string{"alice", "bob"}, nil)
	c.Invalidate("k")

	for _, ch := range []chan Snapshot[string]{got, other} {
		select {
		case s := <-ch:
			require.Equal(t, []string{"alice", "bob"}, s.Rows)
		case <-time.After(time.Second):
			t.Fatal("subscriber not notified")
		}
	}
	require.EqualValues(t, 1, c.Invalidations("k"))
	require.EqualValues(t, 2, src.calls.Load())

	unsubscribe()
	c.Invalidate("k")
	require.Eventually(t, func() bool { return src.calls.Load() == 3 }, time.Second, time.Millisecond)
	require.Never(t, func() bool { return len(got) > 0 }, 30*time.Millisecond, 5*time.Millisecond)
}

func TestInvalidateWithoutSubscribersIsLazy(t *testing.T) {
	src := &source{rows: []string{"alice"}}
	c := New("employees", src.fetch)
	_, err := c.Get(context.Background(), "k")
	require.NoError(t, err)

	c.Invalidate("k")
	_, ok := c.Peek("k")
	require.False(t, ok)
	require.EqualValues(t, 1, src.calls.Load())
}

func TestOnInvalidateHook(t *testing.T) {
	c := New("employees", (&source{}).fetch)
	var keys []string
	c.OnInvalidate(func(key string) { keys = append(keys, key) })

	c.Invalidate("a")
	c.invalidateFromRemote("b")
	require.Equal(t, []string{"a"}, keys)
	require.EqualValues(t, 1, c.Invalidations("b"))
}

func TestStartRefresh(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &source{rows: []string{"alice"}}
	c := New("employees", src.fetch, WithClock(clock))

	got := make(chan Snapshot[string], 4)
	c.Subscribe("k", func(s Snapshot[string]) { got <- s })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.StartRefresh(ctx, 10*time.Second)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	src.set([]string{"alice", "carol"}, nil)
	clock.Advance(10 * time.Second)

	select {
	case s := <-got:
		require.Equal(t, []string{"alice", "carol"}, s.Rows)
	case <-time.After(time.Second):
		t.Fatal("refresh did not notify")
	}
}

func TestKey(t *testing.T) {
	require.Equal(t, "tenant/employees", Key("tenant", "employees"))
}

func TestBridgeAppliesRemoteInvalidations(t *testing.T) {
	src := &source{rows: []string{"alice"}}
	c := New("employees", src.fetch)
	b := NewRedisBridge(nil, "", nil)
	b.targets[c.Name()] = c

	own, err := json.Marshal(invalidation{Origin: b.origin, Cache: "employees", Key: "k"})
	require.NoError(t, err)
	b.apply(string(own))
	require.Zero(t, c.Invalidations("k"))

	remote, err := json.Marshal(invalidation{Origin: "other", Cache: "employees", Key: "k"})
	require.NoError(t, err)
	b.apply(string(remote))
	require.EqualValues(t, 1, c.Invalidations("k"))

	b.apply("not json")
	b.apply(`{"origin":"other","cache":"unknown","key":"k"}`)
	require.EqualValues(t, 1, c.Invalidations("k"))
}
