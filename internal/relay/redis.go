package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTransport replaces the storage side channel with a real pub/sub
// broker, for deployments where replicas live in separate processes.
// Unlike the storage transport, the broker echoes an emission back to
// the publishing replica; receivers already tolerate self-delivery.
type RedisTransport struct {
	client  *redis.Client
	channel string

	mu   sync.Mutex
	subs []*redis.PubSub
	wg   sync.WaitGroup
}

func NewRedisTransport(addr, channel string) (*RedisTransport, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisTransport{
		client:  client,
		channel: channel,
	}, nil
}

func (t *RedisTransport) Emit(ctx context.Context, env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return t.client.Publish(ctx, t.channel, raw).Err()
}

func (t *RedisTransport) Listen(fn func(Envelope)) (func(), error) {
	pubsub := t.client.Subscribe(context.Background(), t.channel)
	if _, err := pubsub.Receive(context.Background()); err != nil {
		pubsub.Close()
		return nil, err
	}

	t.mu.Lock()
	t.subs = append(t.subs, pubsub)
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for msg := range pubsub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Error("relay: malformed envelope", "error", err)
				continue
			}
			fn(env)
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			slog.Error("relay: close subscription", "error", err)
		}
	}, nil
}

func (t *RedisTransport) Close() error {
	t.mu.Lock()
	for _, pubsub := range t.subs {
		pubsub.Close()
	}
	t.subs = nil
	t.mu.Unlock()
	t.wg.Wait()
	return t.client.Close()
}
