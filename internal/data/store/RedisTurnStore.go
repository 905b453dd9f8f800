package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/data/redisStore"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

type RedisTurnStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisTurnStore returns nil when redis cannot be reached.
func GetRedisTurnStore(ctx context.Context, opts redisStore.Options) *RedisTurnStore {
	s := redisStore.GetRedisStore(ctx, opts, config.RedisTurnStore)
	if s == nil {
		return nil
	}
	return NewRedisTurnStore(s)
}

func NewRedisTurnStore(s *redisStore.Store) *RedisTurnStore {
	return &RedisTurnStore{
		store:  s,
		logger: logger_i.NewLogger("TurnStore"),
	}
}

func (s *RedisTurnStore) SaveTurn(ctx context.Context, turn turnModel.Turn) error {
	log := s.logger.WithTrace(ctx).With("turn Id", turn.Id)
	log.Debug("saving turn", "status", turn.Status, "step", turn.CurrentStep)
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, config.TurnStoreKeyPrefix+turn.Id, data, config.RedisTurnStoreTTL)
	if err == nil {
		log.Debug("Saved turn to Redis")
	}
	return err
}

func (s *RedisTurnStore) GetTurn(ctx context.Context, turnId string) (turnModel.Turn, bool) {
	var turn turnModel.Turn
	log := s.logger.WithTrace(ctx).With("turn Id", turnId)
	val, err := s.store.Get(ctx, config.TurnStoreKeyPrefix+turnId)
	if s.store.IsNil(err) {
		return turn, false
	} else if err != nil {
		log.Error("Failed to read turn", "err", err)
		return turn, false
	}

	if err = json.Unmarshal([]byte(val), &turn); err != nil {
		log.Error("Stored turn is not valid json", "err", err)
		return turn, false
	}
	return turn, true
}
