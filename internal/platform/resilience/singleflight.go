package resilience

import "golang.org/x/sync/singleflight"

// SingleFlight is a typed view over singleflight.Group. The zero value is
// ready to use.
type SingleFlight[T any] struct {
	group singleflight.Group
}

// Do runs fn once per in-flight key. shared reports whether the result was
// handed to more than one caller.
func (g *SingleFlight[T]) Do(key string, fn func() (T, error)) (T, error, bool) {
	v, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	typed, _ := v.(T)
	return typed, err, shared
}

// Forget drops key so the next Do starts a fresh call.
func (g *SingleFlight[T]) Forget(key string) {
	g.group.Forget(key)
}
