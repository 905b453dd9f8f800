package store

import (
	"context"
	"sync"
	"time"
)

type InMemoryActivityStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func InitInMemoryActivityStore(ttl time.Duration) *InMemoryActivityStore {
	return &InMemoryActivityStore{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (store *InMemoryActivityStore) MarkSeen(ctx context.Context, activityId string) (bool, error) {
	if activityId == "" {
		return true, nil
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.now()
	for id, expiry := range store.seen {
		if now.After(expiry) {
			delete(store.seen, id)
		}
	}
	if _, ok := store.seen[activityId]; ok {
		return false, nil
	}
	store.seen[activityId] = now.Add(store.ttl)
	return true, nil
}
