package redisStore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/akolanti/OCRBot/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 3 * time.Second
	ioTimeout   = 30 * time.Second
)

var (
	instances = make(map[int]*Store)
	mu        sync.RWMutex
	logger    *logger_i.Logger
	closer    sync.Once
)

// Store wraps one redis logical database. Turns and activity ids live in separate DBs.
type Store struct {
	client *redis.Client
	Type   int
}

type Options struct {
	Addr     string
	Password string
}

func lookup(dbType int) (*Store, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := instances[dbType]
	return s, ok
}

// GetRedisStore returns the shared store for a redis DB index, or nil when redis is offline.
// The clients are closed once ctx is cancelled.
func GetRedisStore(ctx context.Context, opts Options, dbType int) *Store {
	if s, ok := lookup(dbType); ok {
		return s
	}

	mu.Lock()
	defer mu.Unlock()
	if s, ok := instances[dbType]; ok {
		return s
	}

	s := connect(ctx, opts, dbType)
	if s == nil {
		return nil
	}
	instances[dbType] = s
	closer.Do(func() { go closeOnDone(ctx) })
	return s
}

func storeLogger() *logger_i.Logger {
	if logger == nil {
		logger = logger_i.NewLogger("Redis Store")
	}
	return logger
}

func closeOnDone(ctx context.Context) {
	<-ctx.Done()
	log := storeLogger()

	mu.Lock()
	defer mu.Unlock()
	for dbType, s := range instances {
		if err := s.client.Close(); err != nil {
			log.Error("Error closing redis client", "db", dbType, "error", err)
		}
		delete(instances, dbType)
	}
	log.Info("Redis clients closed")
}

func connect(ctx context.Context, opts Options, dbType int) *Store {
	log := storeLogger().With("db", strconv.Itoa(dbType), "addr", opts.Addr)

	client := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           ioTimeout,
		WriteTimeout:          ioTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error("Redis is offline", "error", err)
		_ = client.Close()
		return nil
	}

	log.Info("Redis store connected")
	return &Store{client: client, Type: dbType}
}

// NewTestStore wraps a client pointed at miniredis.
func NewTestStore(client *redis.Client) *Store {
	return &Store{client: client}
}
