package store

import (
	"context"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/data/redisStore"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

// RedisActivityStore de-duplicates redelivered activities across replicas.
type RedisActivityStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisActivityStore(ctx context.Context, opts redisStore.Options) *RedisActivityStore {
	s := redisStore.GetRedisStore(ctx, opts, config.RedisActivityStore)
	if s == nil {
		return nil
	}
	return NewRedisActivityStore(s)
}

func NewRedisActivityStore(s *redisStore.Store) *RedisActivityStore {
	return &RedisActivityStore{
		store:  s,
		logger: logger_i.NewLogger("ActivityStore"),
	}
}

func (s *RedisActivityStore) MarkSeen(ctx context.Context, activityId string) (bool, error) {
	if activityId == "" {
		return true, nil
	}
	isNew, err := s.store.SetIfAbsent(ctx, config.ActivityDedupeKeyPrefix+activityId, 1, config.ActivityDedupeTTL)
	if err != nil {
		s.logger.WithTrace(ctx).Error("Failed to mark activity", "activityId", activityId, "err", err)
		return true, err
	}
	return isNew, nil
}
