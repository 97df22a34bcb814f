package notebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("notebook not found")

// Selection is a rune range of the content plus the text it covered when made
type Selection struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Document is the persisted notebook state
type Document struct {
	Content   string     `json:"content"`
	Selection *Selection `json:"selection,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Store interface {
	Get(ctx context.Context, id string) (*Document, error)
	Put(ctx context.Context, id string, doc *Document) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps documents in process. A zero ttl keeps them forever.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
	}
	return &MemoryStore{cache: cache.New(ttl, 10*time.Minute)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Document, error) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	doc := x.(Document)
	return &doc, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, doc *Document) error {
	s.cache.Set(id, *doc, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

const redisKeyPrefix = "notebook:"

// RedisStore keeps documents as JSON strings under notebook:<id>
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Document, error) {
	raw, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get notebook: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	return &doc, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, doc *Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode notebook: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set notebook: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del notebook: %w", err)
	}
	return nil
}
