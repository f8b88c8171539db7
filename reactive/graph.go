package reactive

import "slices"

// dependencyState tells how fresh a derivation is with respect to its sources.
type dependencyState int8

const (
	notTracking   dependencyState = iota - 1 // never evaluated, or suspended
	upToDate                                 // nothing changed since last evaluation
	possiblyStale                            // a computed source may have changed
	stale                                    // a source changed for sure
)

// source is anything a derivation can read: observables and computed values.
type source interface {
	asSource() *sourceCore
	// onUnobserved runs when a batch ends while the source has no observers.
	onUnobserved() error
}

// derivation is anything that reads sources and is told when they change.
type derivation interface {
	asDerivation() *derivationCore
	onBecomeStale()
}

// refresher is a source that can bring itself up to date on demand.
type refresher interface {
	refresh(d derivation)
	forgetRefresh(d derivation)
}

type sourceCore struct {
	name                 string
	observers            []derivation
	observerSet          map[derivation]struct{}
	lowestObserverState  dependencyState
	pendingUnobservation bool
	lastAccessedBy       uint64
}

func newSourceCore(name string, lowest dependencyState) sourceCore {
	return sourceCore{
		name:                name,
		observerSet:         make(map[derivation]struct{}),
		lowestObserverState: lowest,
	}
}

func (sc *sourceCore) addObserver(d derivation) {
	if _, ok := sc.observerSet[d]; ok {
		return
	}
	sc.observerSet[d] = struct{}{}
	sc.observers = append(sc.observers, d)
	if st := d.asDerivation().state; st < sc.lowestObserverState {
		sc.lowestObserverState = st
	}
}

type derivationCore struct {
	state        dependencyState
	observing    []source
	newObserving []source
	runID        uint64
}

func newDerivationCore() derivationCore {
	return derivationCore{state: notTracking}
}

func (rt *Runtime) removeObserver(s source, d derivation) {
	sc := s.asSource()
	if _, ok := sc.observerSet[d]; !ok {
		return
	}
	delete(sc.observerSet, d)
	if idx := slices.Index(sc.observers, d); idx >= 0 {
		sc.observers = slices.Delete(sc.observers, idx, idx+1)
	}
	if len(sc.observers) == 0 {
		rt.queueForUnobservation(s)
	}
}

func (rt *Runtime) queueForUnobservation(s source) {
	sc := s.asSource()
	if sc.pendingUnobservation {
		return
	}
	sc.pendingUnobservation = true
	rt.pendingUnobservations = append(rt.pendingUnobservations, s)
}

// reportObserved records that the running derivation read s.
// A read outside any derivation keeps s alive only until the current batch ends.
func (rt *Runtime) reportObserved(s source) {
	sc := s.asSource()
	if rt.tracking != nil {
		dc := rt.tracking.asDerivation()
		if sc.lastAccessedBy != dc.runID {
			sc.lastAccessedBy = dc.runID
			dc.newObserving = append(dc.newObserving, s)
		}
		return
	}
	if len(sc.observers) == 0 && rt.batchDepth > 0 {
		rt.queueForUnobservation(s)
	}
}

// propagateChanged marks every observer of a changed observable stale.
func (rt *Runtime) propagateChanged(s source) {
	sc := s.asSource()
	if sc.lowestObserverState == stale {
		return
	}
	sc.lowestObserverState = stale
	for _, d := range slices.Clone(sc.observers) {
		dc := d.asDerivation()
		if dc.state == upToDate {
			d.onBecomeStale()
		}
		dc.state = stale
	}
}

// propagateChangeConfirmed is called by a computed whose recomputed value differs.
func (rt *Runtime) propagateChangeConfirmed(s source) {
	sc := s.asSource()
	if sc.lowestObserverState == stale {
		return
	}
	sc.lowestObserverState = stale
	for _, d := range sc.observers {
		dc := d.asDerivation()
		switch dc.state {
		case possiblyStale:
			dc.state = stale
		case upToDate:
			// d is being computed right now
			sc.lowestObserverState = upToDate
		}
	}
}

// propagateMaybeChanged is called by a computed when one of its own sources went stale.
func (rt *Runtime) propagateMaybeChanged(s source) {
	sc := s.asSource()
	if sc.lowestObserverState != upToDate {
		return
	}
	sc.lowestObserverState = possiblyStale
	for _, d := range slices.Clone(sc.observers) {
		dc := d.asDerivation()
		if dc.state == upToDate {
			dc.state = possiblyStale
			d.onBecomeStale()
		}
	}
}

// shouldCompute decides whether d must be re-evaluated. Possibly stale derivations ask
// their computed sources to refresh first and only re-run if one of them really changed.
func (rt *Runtime) shouldCompute(d derivation) bool {
	dc := d.asDerivation()
	switch dc.state {
	case upToDate:
		return false
	case notTracking, stale:
		return true
	}

	prev := rt.untrackedStart()
	defer rt.untrackedEnd(prev)
	for _, s := range slices.Clone(dc.observing) {
		if r, ok := s.(refresher); ok {
			r.refresh(d)
			if dc.state == stale {
				return true
			}
		}
	}
	rt.changeDependenciesStateTo0(d)
	return false
}

func (rt *Runtime) changeDependenciesStateTo0(d derivation) {
	dc := d.asDerivation()
	if dc.state == upToDate {
		return
	}
	dc.state = upToDate
	for _, s := range dc.observing {
		s.asSource().lowestObserverState = upToDate
	}
}

// track runs fn as d, recording every source it reads, then rebinds d to exactly those.
func (rt *Runtime) track(d derivation, fn func() error) error {
	dc := d.asDerivation()
	rt.changeDependenciesStateTo0(d)
	dc.newObserving = make([]source, 0, len(dc.observing))
	rt.runID++
	dc.runID = rt.runID

	prev := rt.tracking
	rt.tracking = d
	defer func() {
		rt.tracking = prev
		rt.bindDependencies(d)
	}()
	return fn()
}

func (rt *Runtime) bindDependencies(d derivation) {
	dc := d.asDerivation()
	prev := dc.observing

	seen := make(map[source]struct{}, len(dc.newObserving))
	next := dc.newObserving[:0]
	lowest := upToDate
	for _, s := range dc.newObserving {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		next = append(next, s)
		if sd, ok := s.(derivation); ok && sd.asDerivation().state > lowest {
			lowest = sd.asDerivation().state
		}
	}
	dc.observing = next
	dc.newObserving = nil

	// add before remove so a source kept across runs never looks unobserved
	for _, s := range next {
		s.asSource().addObserver(d)
	}
	for _, s := range prev {
		if r, ok := s.(refresher); ok {
			r.forgetRefresh(d)
		}
		if _, keep := seen[s]; !keep {
			rt.removeObserver(s, d)
		}
	}

	// a new source went stale while d was running and could not tell d yet
	if lowest != upToDate {
		dc.state = lowest
		d.onBecomeStale()
	}
}

func (rt *Runtime) clearObserving(d derivation) {
	dc := d.asDerivation()
	obs := dc.observing
	dc.observing = nil
	for _, s := range obs {
		rt.removeObserver(s, d)
	}
	dc.state = notTracking
}

func (rt *Runtime) untrackedStart() derivation {
	prev := rt.tracking
	rt.tracking = nil
	return prev
}

func (rt *Runtime) untrackedEnd(prev derivation) {
	rt.tracking = prev
}
