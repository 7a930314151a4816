package querycache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultChannel = "hrdesk:querycache:invalidate"

// Target is a cache the bridge can propagate invalidations for.
type Target interface {
	Name() string
	OnInvalidate(fn func(key string))
	invalidateFromRemote(key string)
}

type invalidation struct {
	Origin string `json:"origin"`
	Cache  string `json:"cache"`
	Key    string `json:"key"`
}

// RedisBridge publishes local invalidations to a Redis channel and applies
// invalidations published by other instances.
type RedisBridge struct {
	client  redis.UniversalClient
	channel string
	origin  string
	logger  logrus.FieldLogger

	mu      sync.RWMutex
	targets map[string]Target
}

func NewRedisBridge(client redis.UniversalClient, channel string, logger logrus.FieldLogger) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisBridge{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
		targets: make(map[string]Target),
	}
}

func (b *RedisBridge) Attach(t Target) {
	b.mu.Lock()
	b.targets[t.Name()] = t
	b.mu.Unlock()
	name := t.Name()
	t.OnInvalidate(func(key string) {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultFetchTimeout)
		defer cancel()
		if err := b.publish(ctx, name, key); err != nil {
			b.logger.WithError(err).WithField("cache", name).Warn("querycache: publish invalidation")
		}
	})
}

func (b *RedisBridge) publish(ctx context.Context, cache, key string) error {
	payload, err := json.Marshal(invalidation{Origin: b.origin, Cache: cache, Key: key})
	if err != nil {
		return errors.Wrap(err, "marshal invalidation")
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return errors.Wrap(err, "publish")
	}
	return nil
}

// Run applies remote invalidations until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribe")
	}
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			b.apply(msg.Payload)
		}
	}
}

func (b *RedisBridge) apply(payload string) {
	var inv invalidation
	if err := json.Unmarshal([]byte(payload), &inv); err != nil {
		b.logger.WithError(err).Warn("querycache: malformed invalidation")
		return
	}
	if inv.Origin == b.origin {
		return
	}
	b.mu.RLock()
	t, ok := b.targets[inv.Cache]
	b.mu.RUnlock()
	if !ok {
		return
	}
	t.invalidateFromRemote(inv.Key)
}
