package dedupe

// Option applies a configuration option to a Deduper.
type Option func(*options)

type options struct {
	capacity int
}

// WithCapacity presizes the deduper for about n distinct keys.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
