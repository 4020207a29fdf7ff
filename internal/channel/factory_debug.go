//go:build debug

package channel

// New ignores size and returns an unbuffered channel, so debug builds
// surface backpressure at the Send site.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
