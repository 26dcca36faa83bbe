package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	EmbeddingKeyPattern = "embedding:%s"

	LocalTTLName      = "local"
	DefaultLocalTTL   = 5 * time.Minute
	defaultSetTimeout = 2 * time.Second
)

// ErrMiss is returned by Get when the key exists in neither tier.
var ErrMiss = errors.New("cache miss")

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	RedisClient() *redis.Client
	CreateTTLMap(name string, ttl time.Duration) *TTLMap
	GetTTLMap(name string) *TTLMap
	ClearAllTTLMaps()
	Close() error
}

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	// LocalTTL bounds how long a value is served from process memory.
	LocalTTL time.Duration
}

type client struct {
	redisClient *redis.Client
	local       *TTLMap
	ttlMaps     sync.Map
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return NewClientWithRedis(redisClient, config.LocalTTL), nil
}

// NewClientWithRedis wraps an existing redis client without pinging it.
func NewClientWithRedis(redisClient *redis.Client, localTTL time.Duration) Client {
	if localTTL <= 0 {
		localTTL = DefaultLocalTTL
	}
	c := &client{redisClient: redisClient}
	c.local = c.CreateTTLMap(LocalTTLName, localTTL)
	return c
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	if value, ok := c.local.Get(key); ok {
		str, err := safeStringCast(value)
		if err != nil {
			return "", fmt.Errorf("cache value error: %w", err)
		}
		return str, nil
	}
	value, err := c.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	c.local.Set(key, value)
	return value, nil
}

func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, defaultSetTimeout)
	defer cancel()
	if err := c.redisClient.Set(ctx, key, value, expiration).Err(); err != nil {
		return err
	}
	c.local.Set(key, value)
	return nil
}

func (c *client) Delete(ctx context.Context, key string) error {
	c.local.Delete(key)
	return c.redisClient.Del(ctx, key).Err()
}

func (c *client) Ping(ctx context.Context) error {
	return c.redisClient.Ping(ctx).Err()
}

func (c *client) RedisClient() *redis.Client {
	return c.redisClient
}

func (c *client) CreateTTLMap(name string, ttl time.Duration) *TTLMap {
	ttlMap := NewTTLMap(ttl)
	c.ttlMaps.Store(name, ttlMap)
	return ttlMap
}

func (c *client) GetTTLMap(name string) *TTLMap {
	if value, ok := c.ttlMaps.Load(name); ok {
		ttlMap, err := safeTTLMapCast(value)
		if err != nil {
			return nil
		}
		return ttlMap
	}
	return nil
}

func (c *client) ClearAllTTLMaps() {
	c.ttlMaps.Range(func(_, value interface{}) bool {
		if ttlMap, ok := value.(*TTLMap); ok {
			ttlMap.Clear()
		}
		return true
	})
}

func (c *client) Close() error {
	c.ClearAllTTLMaps()
	return c.redisClient.Close()
}

func safeStringCast(value interface{}) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid type assertion to string")
	}
	return str, nil
}

func safeTTLMapCast(value interface{}) (*TTLMap, error) {
	ttlMap, ok := value.(*TTLMap)
	if !ok {
		return nil, fmt.Errorf("invalid type assertion to TTLMap")
	}
	return ttlMap, nil
}
