//go:build !debug

package channel

// New returns a buffered channel sized for size elements. The telemetry
// pipelines size this to absorb link read bursts.
func New[T any](size int) Channel[T] {
	return NewBuffered[T](size)
}
