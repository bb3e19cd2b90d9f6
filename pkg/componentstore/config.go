package componentstore

// config.go defines the internal configuration object and the set of
// functional options that can be passed to New[T] / NewWithCapacity[T]. A
// generic Option is used so that callbacks retain full type-safety with
// respect to the concrete element type T chosen by the caller.
//
// Design notes
// ------------
//   - All fields are initialised with sensible defaults in defaultConfig().
//   - Options never allocate unless strictly necessary.
//   - The config struct itself stays unexported: callers can only
//     influence behaviour via Option[T], which keeps the surface stable.
//
// © 2025 componentstore authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Storage at construction time.
type Option[T any] func(*config[T])

// config bundles every knob that influences Storage behaviour. All fields
// are fixed once the Storage is constructed.
type config[T any] struct {
	logger   *zap.Logger
	registry *prometheus.Registry
	capacity int
	strict   bool
}

func defaultConfig[T any]() *config[T] {
	return &config[T]{
		logger: zap.NewNop(),
		strict: true,
	}
}

// WithLogger plugs an external zap.Logger into the Storage. The engine
// never logs on the hot path (Create, handle clone/release, iteration and
// cursor stepping stay silent); only SyncPending and rare invariant
// failures are logged, at Debug and Error level respectively.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(c *config[T]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation for the Storage. Passing
// nil disables metrics, which is also the default: a Storage constructed
// without this option pays nothing for instrumentation.
func WithMetrics[T any](reg *prometheus.Registry) Option[T] {
	return func(c *config[T]) {
		c.registry = reg
	}
}

// WithCapacity pre-allocates room for n elements in the backing arrays, the
// option-form equivalent of calling NewWithCapacity directly.
func WithCapacity[T any](n int) Option[T] {
	return func(c *config[T]) {
		c.capacity = n
	}
}

// WithDebugChecks controls what happens when one of the Storage's
// handle checks (the storage-id and index checks made by At, Split,
// CursorItem.LookBack and CursorItem.LookAhead) trips in a debug build
// (componentstore_debug build tag). The default, true, panics immediately,
// matching the source's debug_assert!. Passing false downgrades those
// checks to an Error-level log through the Storage's logger instead, for
// callers who want to keep running (e.g. under a fuzzer) rather than crash
// on the first violation. The other debug assertions (Slice.Get's
// storage-id check, Create's check on a recycled slot, storage-id
// exhaustion) still panic either way. In release builds (no
// componentstore_debug tag) this option has no effect: debugcheck is
// compiled out entirely either way.
func WithDebugChecks[T any](enabled bool) Option[T] {
	return func(c *config[T]) {
		c.strict = enabled
	}
}

func applyOptions[T any](cfg *config[T], opts []Option[T]) {
	for _, opt := range opts {
		opt(cfg)
	}
}
