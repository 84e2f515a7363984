package strata

// defaultInitialCapacity is the row count a fresh Engine sizes its first
// tables and entity allocator for, chosen to avoid a reallocation on the
// first handful of spawns in typical use.
const defaultInitialCapacity = 1024

// EngineOptions holds the resolved configuration for a new Engine.
// Construct it with NewEngine's functional options rather than directly.
type EngineOptions struct {
	InitialCapacity int
	Allocator       Allocator
}

// Option configures an Engine at construction time.
type Option func(*EngineOptions)

// WithInitialCapacity sizes the entity allocator and each newly created
// table's first allocation for n rows, avoiding early growth copies for
// workloads whose entity count is known ahead of time.
func WithInitialCapacity(n int) Option {
	return func(o *EngineOptions) {
		o.InitialCapacity = n
	}
}

// WithAllocator supplies the Allocator passed to component destructors.
// Defaults to GoAllocator.
func WithAllocator(a Allocator) Option {
	return func(o *EngineOptions) {
		o.Allocator = a
	}
}

func resolveOptions(opts []Option) EngineOptions {
	o := EngineOptions{
		InitialCapacity: defaultInitialCapacity,
		Allocator:       GoAllocator{},
	}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
