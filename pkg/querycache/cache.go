// Package querycache is a keyed cache of row collections shared by every list
// reader of the same key. Rows are always replaced wholesale: a key is either
// fetched fresh or invalidated, never patched.
package querycache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRefreshInterval = 10 * time.Second
	DefaultFetchTimeout    = 30 * time.Second
)

// Fetcher loads the full collection for key.
type Fetcher[T any] func(ctx context.Context, key string) ([]T, error)

// Snapshot is what readers of a key observe. A failed fetch carries Err and
// no rows.
type Snapshot[T any] struct {
	Key       string
	Rows      []T
	Err       error
	FetchedAt time.Time
}

// Key joins parts into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

type Option func(*options)

type options struct {
	clock        clockwork.Clock
	logger       logrus.FieldLogger
	fetchTimeout time.Duration
}

func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.fetchTimeout = d }
}

type subscription[T any] struct {
	id uint64
	fn func(Snapshot[T])
}

// Cache holds one collection per key for a single row type.
type Cache[T any] struct {
	name  string
	fetch Fetcher[T]
	opts  options
	group singleflight.Group

	mu            sync.Mutex
	entries       map[string]Snapshot[T]
	generations   map[string]uint64
	subs          map[string][]subscription[T]
	nextSub       uint64
	invalidations map[string]uint64
	hooks         []func(key string)
}

func New[T any](name string, fetch Fetcher[T], opts ...Option) *Cache[T] {
	o := options{
		clock:        clockwork.NewRealClock(),
		logger:       logrus.StandardLogger(),
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		name:          name,
		fetch:         fetch,
		opts:          o,
		entries:       make(map[string]Snapshot[T]),
		generations:   make(map[string]uint64),
		subs:          make(map[string][]subscription[T]),
		invalidations: make(map[string]uint64),
	}
}

func (c *Cache[T]) Name() string { return c.name }

// Get returns the cached rows for key, fetching them on a miss. Concurrent
// misses for one key share a single fetch.
func (c *Cache[T]) Get(ctx context.Context, key string) (Snapshot[T], error) {
	c.mu.Lock()
	snap, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		getMetrics().lookups.WithLabelValues(c.name, "hit").Inc()
		return snap, nil
	}
	getMetrics().lookups.WithLabelValues(c.name, "miss").Inc()
	snap = c.load(ctx, key)
	return snap, snap.Err
}

// Peek returns the cached snapshot without fetching.
func (c *Cache[T]) Peek(key string) (Snapshot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.entries[key]
	return snap, ok
}

func (c *Cache[T]) load(ctx context.Context, key string) Snapshot[T] {
	c.mu.Lock()
	gen := c.generations[key]
	c.mu.Unlock()

	// Fetches are shared per generation so a load issued after an
	// invalidation never joins one that started before it. The shared fetch
	// outlives any single caller's cancellation.
	ch := c.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.fetchTimeout)
		defer cancel()
		started := c.opts.clock.Now()
		rows, err := c.fetch(fetchCtx, key)
		getMetrics().observeFetch(c.name, started, err)

		snap := Snapshot[T]{Key: key, FetchedAt: c.opts.clock.Now()}
		if err != nil {
			snap.Err = errors.Wrapf(err, "fetch %s", key)
			c.opts.logger.WithError(err).WithField("cache", c.name).WithField("key", key).Warn("querycache: fetch failed")
		} else {
			snap.Rows = rows
		}

		c.mu.Lock()
		if c.generations[key] == gen {
			if snap.Err == nil {
				c.entries[key] = snap
			} else {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
		return snap, nil
	})
	select {
	case res := <-ch:
		return res.Val.(Snapshot[T])
	case <-ctx.Done():
		return Snapshot[T]{Key: key, Err: ctx.Err()}
	}
}

// Revalidate fetches key again and notifies its subscribers with the result.
// A revalidation overlapping another fetch of the same key joins it.
func (c *Cache[T]) Revalidate(ctx context.Context, key string) Snapshot[T] {
	snap := c.load(ctx, key)
	c.notify(key, snap)
	return snap
}

// Invalidate drops key. Subscribers receive a fresh snapshot once the
// refetch completes.
func (c *Cache[T]) Invalidate(key string) {
	c.invalidate(key, "local")
	c.mu.Lock()
	hooks := append([]func(string){}, c.hooks...)
	c.mu.Unlock()
	for _, h := range hooks {
		h(key)
	}
}

func (c *Cache[T]) invalidateFromRemote(key string) {
	c.invalidate(key, "remote")
}

func (c *Cache[T]) invalidate(key, origin string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.generations[key]++
	c.invalidations[key]++
	subscribed := len(c.subs[key]) > 0
	c.mu.Unlock()

	getMetrics().invalidations.WithLabelValues(c.name, origin).Inc()
	c.opts.logger.WithField("cache", c.name).WithField("key", key).WithField("origin", origin).Debug("querycache: invalidated")
	if subscribed {
		go c.refetch(key)
	}
}

func (c *Cache[T]) refetch(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.fetchTimeout)
	defer cancel()
	c.notify(key, c.load(ctx, key))
}

// Invalidations is how many times key has been invalidated.
func (c *Cache[T]) Invalidations(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations[key]
}

// OnInvalidate registers fn to run after every local invalidation.
func (c *Cache[T]) OnInvalidate(fn func(key string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// Subscribe calls fn with every new snapshot of key until the returned
// function is called.
func (c *Cache[T]) Subscribe(key string, fn func(Snapshot[T])) func() {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs[key] = append(c.subs[key], subscription[T]{id: id, fn: fn})
	c.mu.Unlock()
	getMetrics().subscribers.WithLabelValues(c.name).Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			subs := c.subs[key]
			for i, s := range subs {
				if s.id == id {
					c.subs[key] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(c.subs[key]) == 0 {
				delete(c.subs, key)
			}
			c.mu.Unlock()
			getMetrics().subscribers.WithLabelValues(c.name).Dec()
		})
	}
}

func (c *Cache[T]) notify(key string, snap Snapshot[T]) {
	c.mu.Lock()
	subs := append([]subscription[T](nil), c.subs[key]...)
	c.mu.Unlock()
	for _, s := range subs {
		s.fn(snap)
	}
}

func (c *Cache[T]) subscribedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.subs))
	for k := range c.subs {
		keys = append(keys, k)
	}
	return keys
}

// StartRefresh revalidates every subscribed key each interval until ctx is
// done.
func (c *Cache[T]) StartRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := c.opts.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			for _, key := range c.subscribedKeys() {
				fetchCtx, cancel := context.WithTimeout(ctx, c.opts.fetchTimeout)
				c.Revalidate(fetchCtx, key)
				cancel()
			}
		}
	}
}
