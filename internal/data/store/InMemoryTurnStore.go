package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/OCRBot/internal/domain/botModel"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
)

type storedTurn struct {
	turn    turnModel.Turn
	expires time.Time
}

// InMemoryTurnStore is the fallback when redis is offline. Entries expire after ttl
// like the redis keys do, and the inbound activity is not kept.
type InMemoryTurnStore struct {
	turnMutex *sync.RWMutex
	turnMap   map[string]storedTurn
	ttl       time.Duration
}

func InitInMemoryTurnStore(ttl time.Duration) *InMemoryTurnStore {
	return &InMemoryTurnStore{
		turnMutex: new(sync.RWMutex),
		turnMap:   make(map[string]storedTurn),
		ttl:       ttl,
	}
}

func (store *InMemoryTurnStore) SaveTurn(ctx context.Context, turn turnModel.Turn) error {
	turn.Activity = botModel.Activity{}
	now := time.Now()

	store.turnMutex.Lock()
	defer store.turnMutex.Unlock()
	for id, entry := range store.turnMap {
		if now.After(entry.expires) {
			delete(store.turnMap, id)
		}
	}
	store.turnMap[turn.Id] = storedTurn{turn: turn, expires: now.Add(store.ttl)}
	return nil
}

func (store *InMemoryTurnStore) GetTurn(ctx context.Context, turnId string) (turnModel.Turn, bool) {
	store.turnMutex.RLock()
	defer store.turnMutex.RUnlock()
	entry, found := store.turnMap[turnId]
	if !found || time.Now().After(entry.expires) {
		return turnModel.Turn{}, false
	}
	return entry.turn, true
}

func (store *InMemoryTurnStore) Len() int {
	store.turnMutex.RLock()
	defer store.turnMutex.RUnlock()
	return len(store.turnMap)
}
