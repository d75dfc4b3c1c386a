package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrCacheMiss indica que la clave no existe o expiró.
var ErrCacheMiss = errors.New("cache miss")

// Cache guarda bytes opacos con TTL. Hoy lo usa barcode para no re-renderizar PNGs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Options configura el cache. Addr vacío significa cache en memoria.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// pingRedis se reemplaza en tests para no depender de un Redis real.
var pingRedis = func(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// New devuelve un cache Redis si hay dirección y responde; si no, uno en memoria.
// Un Redis caído no impide arrancar: el cache es una optimización.
func New(opts Options, logger *zap.Logger) Cache {
	if opts.Addr == "" {
		logger.Info("render cache: in-memory")
		return NewMemory()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pingRedis(ctx, client); err != nil {
		logger.Warn("render cache: redis not reachable, using in-memory",
			zap.String("addr", opts.Addr),
			zap.Error(err),
		)
		_ = client.Close()
		return NewMemory()
	}

	logger.Info("render cache: redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return NewRedis(client)
}

// RedisCache implementa Cache sobre go-redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close libera las conexiones del pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache es el fallback en proceso. Seguro para uso concurrente.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // cero = no expira
}

func NewMemory() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.data[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}
