package testutil

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type MockRedisClient struct {
	ExistFunc   func(ctx context.Context, key string) (bool, error)
	DelFunc     func(ctx context.Context, key ...string) error
	HSetAllFunc func(ctx context.Context, key string, values map[string]any, ttl time.Duration) error
	HGetAllFunc func(ctx context.Context, key string) (map[string]string, error)
	SetFunc     func(ctx context.Context, key, value string) error
	GetFunc     func(ctx context.Context, key string) (string, error)
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	return false, nil
}

func (m *MockRedisClient) Del(ctx context.Context, key ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, key...)
	}

	return nil
}

func (m *MockRedisClient) HSetAll(ctx context.Context, key string, values map[string]any, ttl time.Duration) error {
	if m.HSetAllFunc != nil {
		return m.HSetAllFunc(ctx, key, values, ttl)
	}

	return nil
}

func (m *MockRedisClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.HGetAllFunc != nil {
		return m.HGetAllFunc(ctx, key)
	}

	return map[string]string{}, nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}

	return nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	return "", redis.Nil
}
