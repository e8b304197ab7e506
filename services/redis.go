package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisService backs the optional status read cache. When REDIS_ADDR is not
// configured every operation degrades to a no-op and readers fall through to
// the database.
type RedisService struct {
	appContext.DefaultService
	redis *redis.Client
}

const REDIS_SVC = "redis_svc"

const statusCacheTTL = 30 * time.Second

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	svc.initRedisClient()
	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	if svc.redis != nil {
		ctx := context.Background()
		if _, err := svc.redis.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}
	return nil
}

func (svc *RedisService) Shutdown() {
	if svc.redis != nil {
		_ = svc.redis.Close()
	}
}

func (svc *RedisService) initRedisClient() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Info("REDIS_ADDR not set, status cache disabled")
		return
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")

	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	svc.redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
}

func (svc *RedisService) Enabled() bool {
	return svc.redis != nil
}

func statusCacheKey(userID string) string {
	return "streak:status:" + userID
}

// CacheStatus stores a marshalled status projection with a short TTL.
func (svc *RedisService) CacheStatus(ctx context.Context, userID string, status interface{}) error {
	if svc.redis == nil {
		return nil
	}

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	return svc.redis.Set(ctx, statusCacheKey(userID), data, statusCacheTTL).Err()
}

// GetCachedStatus unmarshals a cached status into dest. The boolean reports a
// cache hit; a miss is not an error.
func (svc *RedisService) GetCachedStatus(ctx context.Context, userID string, dest interface{}) (bool, error) {
	if svc.redis == nil {
		return false, nil
	}

	result, err := svc.redis.Get(ctx, statusCacheKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(result), dest); err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateStatus drops the cached projection after a state change.
func (svc *RedisService) InvalidateStatus(ctx context.Context, userID string) error {
	if svc.redis == nil {
		return nil
	}

	return svc.redis.Del(ctx, statusCacheKey(userID)).Err()
}
