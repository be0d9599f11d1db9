package store

import (
	"context"

	"github.com/PancyStudios/PancyGuard/pkg/lockmap"
	"github.com/puzpuzpuz/xsync/v3"
)

// Records is a write-through cache of one record type over a Store.
//
// Records handed out by Get are shared and must be treated as read-only.
// Update builds a new record from the current one, saves it while holding the
// key's lock, and only then swaps it into the cache. A failed Save leaves the
// cached record untouched.
type Records[T any] struct {
	store     Store
	locks     *lockmap.Map
	cache     *xsync.MapOf[string, *T]
	normalize func(*T)
}

// NewRecords wraps s. normalize, if set, runs on every freshly loaded record
// (fill nil maps, apply defaults).
func NewRecords[T any](s Store, normalize func(*T)) *Records[T] {
	return &Records[T]{
		store:     s,
		locks:     lockmap.New(),
		cache:     xsync.NewMapOf[string, *T](),
		normalize: normalize,
	}
}

// Get returns the record for key, loading it on first use.
func (r *Records[T]) Get(ctx context.Context, key string) (*T, error) {
	if rec, ok := r.cache.Load(key); ok {
		return rec, nil
	}

	loaded, err := LoadOrDefault[T](ctx, r.store, key)
	if err != nil {
		return nil, err
	}
	rec := &loaded
	if r.normalize != nil {
		r.normalize(rec)
	}

	actual, _ := r.cache.LoadOrStore(key, rec)
	return actual, nil
}

// Update serialises writers of key. mutate receives the current record and
// returns its replacement, or nil to leave the record unchanged without
// writing. The record in effect afterwards is returned.
func (r *Records[T]) Update(ctx context.Context, key string, mutate func(cur *T) (*T, error)) (*T, error) {
	unlock := r.locks.Lock(key)
	defer unlock()

	cur, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	next, err := mutate(cur)
	if err != nil || next == nil {
		return cur, err
	}

	if err := r.store.Save(ctx, key, next); err != nil {
		return cur, err
	}

	r.cache.Store(key, next)
	return next, nil
}

// Forget drops key from the cache so the next Get reloads it.
func (r *Records[T]) Forget(key string) {
	r.cache.Delete(key)
}
