package cache

import "golang.org/x/sync/singleflight"

// Flight coalesces concurrent loads of the same key: callers arriving while a
// load is running share its result instead of starting their own.
type Flight[T any] struct {
	sf singleflight.Group
}

func (f *Flight[T]) Do(key string, load func() (T, error)) (T, error) {
	v, err, _ := f.sf.Do(key, func() (any, error) {
		return load()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
