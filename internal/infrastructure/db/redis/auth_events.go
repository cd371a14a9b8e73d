package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/standmarket/marketplace/internal/core/domain"
)

const DefaultAuthChannel = "auth:events"

// AuthEventBus fans authentication state changes out to every API instance
// over Redis pub/sub.
type AuthEventBus struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewAuthEventBus(client *redis.Client, channel string, log zerolog.Logger) *AuthEventBus {
	if channel == "" {
		channel = DefaultAuthChannel
	}
	return &AuthEventBus{client: client, channel: channel, log: log}
}

func (b *AuthEventBus) Publish(ctx context.Context, ev domain.AuthEvent) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish auth event: %w", err)
	}
	return nil
}

// Subscribe confirms the subscription before returning. The returned channel
// is closed once the unsubscribe function has been called or ctx ends.
func (b *AuthEventBus) Subscribe(ctx context.Context) (<-chan domain.AuthEvent, func(), error) {
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan domain.AuthEvent, 64)
	done := make(chan struct{})
	msgs := ps.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev, err := decodeEvent(msg.Payload)
				if err != nil {
					b.log.Warn().Err(err).Msg("dropping malformed auth event")
					continue
				}
				select {
				case out <- ev:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			if err := ps.Close(); err != nil {
				b.log.Warn().Err(err).Msg("closing auth event subscription")
			}
		})
	}
	return out, unsubscribe, nil
}

func encodeEvent(ev domain.AuthEvent) (string, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode auth event: %w", err)
	}
	return string(b), nil
}

func decodeEvent(payload string) (domain.AuthEvent, error) {
	var ev domain.AuthEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return domain.AuthEvent{}, fmt.Errorf("decode auth event: %w", err)
	}
	if ev.Type == "" {
		return domain.AuthEvent{}, fmt.Errorf("decode auth event: missing type")
	}
	return ev, nil
}
