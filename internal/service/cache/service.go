package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/pkg/errors"
)

// CacheService is the redis-backed Store.
type CacheService struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "ytanalyser:"
	}

	logger.Info("Redis connected",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
	)

	return &CacheService{
		client: client,
		prefix: prefix,
		logger: logger,
	}, nil
}

func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	fullKey := c.prefix + key
	value, err := c.client.Get(ctx, fullKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", fullKey), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", fullKey, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", fullKey), zap.Error(err))
			return false, errors.NewCacheError("unmarshal failed", "get", fullKey, err)
		}
	}

	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	fullKey := c.prefix + key
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", fullKey, err)
	}

	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, fullKey, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", fullKey), zap.Error(err))
		return errors.NewCacheError("set failed", "set", fullKey, err)
	}

	return nil
}

func (c *CacheService) Del(ctx context.Context, key string) error {
	fullKey := c.prefix + key
	if err := c.client.Del(ctx, fullKey).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", fullKey), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", fullKey, err)
	}
	return nil
}

func (c *CacheService) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}
