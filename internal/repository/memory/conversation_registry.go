package memory

import (
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Registry keeps live per-conversation objects in memory. Every Get slides the
// expiry forward, so only idle conversations are evicted.
type Registry[T any] struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewRegistry[T any](ttl time.Duration) *Registry[T] {
	if ttl <= 0 {
		ttl = time.Hour
	}
	cleanup := ttl / 6
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &Registry[T]{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// OnEvicted registers a callback for expired or deleted entries
func (r *Registry[T]) OnEvicted(fn func(id string, value T)) {
	r.cache.OnEvicted(func(id string, v interface{}) {
		fn(id, v.(T))
	})
}

func (r *Registry[T]) Save(id string, value T) {
	r.cache.Set(id, value, cache.DefaultExpiration)
}

// Add stores value only when id is free
func (r *Registry[T]) Add(id string, value T) bool {
	return r.cache.Add(id, value, cache.DefaultExpiration) == nil
}

func (r *Registry[T]) Get(id string) (T, error) {
	x, found := r.cache.Get(id)
	if !found {
		var zero T
		return zero, ErrConversationNotFound
	}
	value := x.(T)
	r.cache.Set(id, value, cache.DefaultExpiration)
	return value, nil
}

func (r *Registry[T]) Delete(id string) {
	r.cache.Delete(id)
}

func (r *Registry[T]) Len() int {
	return r.cache.ItemCount()
}
