package cart

import (
	"context"
	"errors"
	"time"

	"github.com/comanda-ar/comanda-gateway/pkg/redis"
)

// RedisStorage keeps cart state in Redis with a per-session TTL so abandoned
// tables age out on their own.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (s *RedisStorage) ReadCart(ctx context.Context, sessionID string) (string, error) {
	value, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		return "", mapRedisErr(err)
	}
	return value, nil
}

func (s *RedisStorage) WriteCart(ctx context.Context, sessionID, payload string) error {
	return s.client.Set(ctx, s.client.CartKey(sessionID), payload, s.ttl)
}

func (s *RedisStorage) DeleteCart(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.client.CartKey(sessionID))
}

func (s *RedisStorage) WritePendingOrder(ctx context.Context, sessionID, orderID string) error {
	return s.client.Set(ctx, s.client.PendingOrderKey(sessionID), orderID, s.ttl)
}

// ConsumePendingOrder relies on GETDEL so the read and the delete are a
// single atomic step even with concurrent result submissions.
func (s *RedisStorage) ConsumePendingOrder(ctx context.Context, sessionID string) (string, error) {
	value, err := s.client.GetDel(ctx, s.client.PendingOrderKey(sessionID))
	if err != nil {
		return "", mapRedisErr(err)
	}
	return value, nil
}

func mapRedisErr(err error) error {
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	return err
}
