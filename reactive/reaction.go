package reactive

// Reaction re-runs a side effect whenever something it read changes.
type Reaction struct {
	rt    *Runtime
	name  string
	deriv derivationCore
	fn    func() error

	scheduled bool
	running   bool
	disposed  bool
	err       error
}

// Autorun runs fn now and again whenever a source it read changes, until Dispose.
//
// The error of the first run is returned. Errors of later runs are logged and kept
// in Err, since nobody is waiting for them.
func (rt *Runtime) Autorun(name string, fn func() error) (*Reaction, error) {
	if name == "" {
		name = rt.nextName("Autorun")
	}
	r := &Reaction{
		rt:    rt,
		name:  name,
		deriv: newDerivationCore(),
		fn:    fn,
	}
	err := rt.batch(r.run)
	return r, err
}

func (r *Reaction) Name() string { return r.name }

// Err returns the error of the most recent run.
func (r *Reaction) Err() error { return r.err }

func (r *Reaction) IsDisposed() bool { return r.disposed }

// Dispose stops the reaction and releases everything it observes. Sources left without
// observers are torn down; errors of their unobservation hooks are returned.
// Disposing from inside the reaction's own run takes effect when the run ends.
func (r *Reaction) Dispose() error {
	if r.disposed {
		return nil
	}
	r.disposed = true
	if r.running {
		return nil
	}
	return r.rt.batch(func() error {
		r.rt.clearObserving(r)
		return nil
	})
}

func (r *Reaction) run() error {
	if r.disposed {
		return nil
	}
	r.rt.startBatch()
	defer r.rt.endBatch()

	r.scheduled = false
	if !r.rt.shouldCompute(r) {
		return nil
	}

	r.running = true
	err := func() error {
		defer func() { r.running = false }()
		return r.rt.track(r, r.fn)
	}()
	r.err = err
	if r.disposed {
		r.rt.clearObserving(r)
	}
	return err
}

func (r *Reaction) schedule() {
	if r.scheduled || r.disposed {
		return
	}
	r.scheduled = true
	r.rt.pendingReactions = append(r.rt.pendingReactions, r)
	r.rt.runReactions()
}

func (r *Reaction) asDerivation() *derivationCore { return &r.deriv }

func (r *Reaction) onBecomeStale() { r.schedule() }
