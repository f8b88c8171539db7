package reactive

import "fmt"

type ComputedOptions[T any] struct {
	// Name labels the computed in errors and logs.
	Name string
	// Equals decides whether a re-evaluation produced a new value. Default: DefaultEquals.
	Equals func(a, b T) bool
	// OnBecomeUnobserved runs once each time the computed loses its last observer after
	// having been evaluated. By then the computed has released its own sources and
	// forgotten its value; last is the value it held.
	OnBecomeUnobserved func(last T) error
}

// Computed is a lazily evaluated value derived from other sources.
//
// It is evaluated on the first Get and cached while something observes it. When a source
// changes it is re-evaluated on the next Get; observers are only notified when the new
// value differs. Evaluation errors are returned and never cached.
type Computed[T any] struct {
	rt    *Runtime
	src   sourceCore
	deriv derivationCore

	evaluate           func() (T, error)
	equals             func(a, b T) bool
	onBecomeUnobserved func(last T) error

	value     T
	hasValue  bool
	failed    bool
	err       error
	computing bool

	// handoff is the derivation whose staleness check already evaluated c and failed.
	// Its next read gets that error instead of a second evaluation.
	handoff derivation
}

func NewComputed[T any](rt *Runtime, evaluate func() (T, error), opts ...ComputedOptions[T]) *Computed[T] {
	if rt == nil {
		rt = DefaultRuntime()
	}
	var opt ComputedOptions[T]
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Name == "" {
		opt.Name = rt.nextName("Computed")
	}
	if opt.Equals == nil {
		opt.Equals = DefaultEquals[T]
	}
	return &Computed[T]{
		rt:                 rt,
		src:                newSourceCore(opt.Name, upToDate),
		deriv:              newDerivationCore(),
		evaluate:           evaluate,
		equals:             opt.Equals,
		onBecomeUnobserved: opt.OnBecomeUnobserved,
	}
}

func (c *Computed[T]) Name() string { return c.src.name }

// IsObserved reports whether at least one derivation currently depends on c.
func (c *Computed[T]) IsObserved() bool { return len(c.src.observers) > 0 }

// Get returns the current value, evaluating it if needed, and registers the read with the
// running derivation. Read outside any derivation or transaction, c is evaluated and then
// released again straight away, since nothing keeps it observed.
func (c *Computed[T]) Get() (T, error) {
	var v T
	if c.computing {
		return v, fmt.Errorf("%w: %s", ErrCycle, c.src.name)
	}
	err := c.rt.batch(func() error {
		c.rt.reportObserved(c)
		var err error
		v, err = c.get()
		return err
	})
	return v, err
}

func (c *Computed[T]) get() (T, error) {
	var zero T
	if c.computing {
		return zero, fmt.Errorf("%w: %s", ErrCycle, c.src.name)
	}
	if h := c.handoff; h != nil {
		c.handoff = nil
		if c.failed && h == c.rt.tracking && c.deriv.state == upToDate {
			return zero, c.err
		}
	}
	if c.failed || c.rt.shouldCompute(c) {
		changed, err := c.trackAndCompute()
		if changed {
			c.rt.propagateChangeConfirmed(c)
		}
		if err != nil {
			return zero, err
		}
	}
	return c.value, nil
}

func (c *Computed[T]) trackAndCompute() (changed bool, err error) {
	old, hadValue := c.value, c.hasValue

	var v T
	c.computing = true
	func() {
		defer func() { c.computing = false }()
		err = c.rt.track(c, func() error {
			var evalErr error
			v, evalErr = c.evaluate()
			return evalErr
		})
	}()

	if err != nil {
		var zero T
		c.value, c.hasValue = zero, false
		c.failed, c.err = true, err
		return true, err
	}
	c.failed, c.err = false, nil
	c.value, c.hasValue = v, true
	return !hadValue || !c.equals(old, v), nil
}

// refresh brings c up to date for d's staleness check. A failure is kept for d's
// next read so one change costs one evaluation.
func (c *Computed[T]) refresh(d derivation) {
	if _, err := c.get(); err != nil {
		c.handoff = d
	}
}

func (c *Computed[T]) forgetRefresh(d derivation) {
	if c.handoff == d {
		c.handoff = nil
	}
}

func (c *Computed[T]) asSource() *sourceCore { return &c.src }

func (c *Computed[T]) asDerivation() *derivationCore { return &c.deriv }

func (c *Computed[T]) onBecomeStale() {
	c.rt.propagateMaybeChanged(c)
}

func (c *Computed[T]) onUnobserved() error {
	if c.deriv.state == notTracking {
		return nil
	}
	last := c.value

	c.rt.clearObserving(c)
	var zero T
	c.value, c.hasValue = zero, false
	c.failed, c.err, c.handoff = false, nil, nil

	if c.onBecomeUnobserved == nil {
		return nil
	}
	return c.onBecomeUnobserved(last)
}
