package reactive

// Observable is a mutable cell whose reads are tracked.
type Observable[T any] struct {
	rt     *Runtime
	src    sourceCore
	value  T
	equals func(a, b T) bool
}

// NewObservable creates a tracked cell holding initial.
// An optional comparator decides whether Set is a change; DefaultEquals is used otherwise.
func NewObservable[T any](rt *Runtime, name string, initial T, equals ...func(a, b T) bool) *Observable[T] {
	if rt == nil {
		rt = DefaultRuntime()
	}
	if name == "" {
		name = rt.nextName("Observable")
	}
	eq := DefaultEquals[T]
	if len(equals) > 0 && equals[0] != nil {
		eq = equals[0]
	}
	return &Observable[T]{
		rt:     rt,
		src:    newSourceCore(name, notTracking),
		value:  initial,
		equals: eq,
	}
}

func (o *Observable[T]) Name() string { return o.src.name }

// Get returns the current value and registers the read with the running derivation.
func (o *Observable[T]) Get() T {
	o.rt.reportObserved(o)
	return o.value
}

// Set stores v. Observers are notified only if v differs from the current value.
// The returned error carries failures of unobservation hooks the change triggered.
func (o *Observable[T]) Set(v T) error {
	if o.equals(o.value, v) {
		return nil
	}
	return o.rt.batch(func() error {
		o.value = v
		o.rt.propagateChanged(o)
		return nil
	})
}

// Update applies fn to the current value without tracking the read, then Sets the result.
func (o *Observable[T]) Update(fn func(T) T) error {
	return o.Set(fn(o.value))
}

func (o *Observable[T]) asSource() *sourceCore { return &o.src }

func (o *Observable[T]) onUnobserved() error { return nil }
