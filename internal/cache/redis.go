package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shaygp/boxd/internal/logger"
	"go.uber.org/zap"
)

// ErrMiss is returned by Get when the key does not exist
var ErrMiss = errors.New("cache miss")

// RedisClient wraps redis.Client with the pool settings the API uses
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects and pings. Empty host and port default to localhost:6379.
func NewRedisClient(host string, port string, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   0, // callers fall back to the store instead of retrying
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		DialTimeout:  2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorWithFields("Failed to connect to Redis", err)
		_ = client.Close()
		return nil, err
	}

	logger.Log.Info("Redis client connected", zap.String("address", addr))
	return &RedisClient{client: client}, nil
}

// NewFromClient wraps an existing client
func NewFromClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// Close closes the Redis connection gracefully
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Get retrieves a value, returning ErrMiss for absent keys
func (rc *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := rc.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// SetEx stores a value with expiration
func (rc *RedisClient) SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Del deletes one or more keys
func (rc *RedisClient) Del(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}

// Ping tests the Redis connection
func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}
