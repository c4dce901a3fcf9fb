package repo

import (
	"sync"
	"time"

	"qa-assignment-api/internal/domain"
)

// Collection is an insertion-ordered in-memory table guarded by a single
// RWMutex. Ids come from a counter that only moves forward, so an id is never
// handed out twice even after deletes. Values are cloned on the way in and
// out; callers never hold references into the backing slice.
type Collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	lastID int

	idOf  func(T) int
	clone func(T) T
	now   func() time.Time
}

func NewCollection[T any](idOf func(T) int, clone func(T) T, now func() time.Time) *Collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	if now == nil {
		now = time.Now
	}
	return &Collection[T]{idOf: idOf, clone: clone, now: now}
}

// Create reserves the next id and appends build's result.
func (c *Collection[T]) Create(build func(id int, now time.Time) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastID++
	v := build(c.lastID, c.now())
	c.items = append(c.items, c.clone(v))
	return c.clone(v)
}

func (c *Collection[T]) Get(id int) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.clone(c.items[i]), nil
	}
	var zero T
	return zero, domain.ErrNotFound
}

// Find keeps the items matching every predicate, in order, then slices
// [skip, skip+limit). A negative limit means no limit.
func (c *Collection[T]) Find(skip, limit int, preds ...func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []T{}
	if limit == 0 {
		return out
	}
	skip = max(skip, 0)
	matched := 0
	for _, v := range c.items {
		if !matchAll(v, preds) {
			continue
		}
		matched++
		if matched <= skip {
			continue
		}
		out = append(out, c.clone(v))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Update applies mutate to a copy and stores it only if mutate succeeds.
func (c *Collection[T]) Update(id int, mutate func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, domain.ErrNotFound
	}
	v := c.clone(c.items[i])
	if err := mutate(&v); err != nil {
		return zero, err
	}
	c.items[i] = c.clone(v)
	return v, nil
}

func (c *Collection[T]) Delete(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Each calls fn for every item under one read lock, so fn sees a consistent
// snapshot.
func (c *Collection[T]) Each(fn func(T)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.items {
		fn(v)
	}
}

func (c *Collection[T]) indexOf(id int) int {
	for i, v := range c.items {
		if c.idOf(v) == id {
			return i
		}
	}
	return -1
}

func matchAll[T any](v T, preds []func(T) bool) bool {
	for _, p := range preds {
		if p != nil && !p(v) {
			return false
		}
	}
	return true
}
