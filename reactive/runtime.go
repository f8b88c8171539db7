package reactive

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Runtime owns one dependency graph: which derivations read which sources, which
// reactions are pending and which sources may have lost their last observer.
//
// this is safe only in single goroutine – NEVER share across goroutines
type Runtime struct {
	ID string

	logger        *zap.Logger
	maxIterations int

	tracking   derivation
	batchDepth int
	flushDepth int
	runID      uint64
	lastName   uint64

	pendingUnobservations []source
	pendingReactions      []*Reaction
	runningReactions      bool

	hookErr error
}

func NewRuntime(cfg Config) *Runtime {
	cfg = NewConfig(cfg.MaxReactionIterations, cfg.Logger)
	rt := &Runtime{
		ID:            uuid.New().String(),
		logger:        cfg.Logger,
		maxIterations: cfg.MaxReactionIterations,
	}
	rt.logger.Debug("created reactive runtime",
		zap.String("runtime", rt.ID),
		zap.Int("maxReactionIterations", rt.maxIterations),
	)
	return rt
}

var (
	defaultRuntime     *Runtime
	defaultRuntimeOnce sync.Once
)

// DefaultRuntime returns a lazily created runtime with the default configuration.
func DefaultRuntime() *Runtime {
	defaultRuntimeOnce.Do(func() {
		defaultRuntime = NewRuntime(Config{})
	})
	return defaultRuntime
}

func (rt *Runtime) Logger() *zap.Logger {
	return rt.logger
}

// Transaction runs fn as one batch. Reactions and unobservation hooks run once,
// when the outermost batch ends. Errors from those hooks are returned along with fn's.
func (rt *Runtime) Transaction(fn func() error) error {
	return rt.batch(fn)
}

// Untracked runs fn without registering any read on the running derivation.
func (rt *Runtime) Untracked(fn func() error) error {
	prev := rt.untrackedStart()
	defer rt.untrackedEnd(prev)
	return fn()
}

func (rt *Runtime) nextName(prefix string) string {
	rt.lastName++
	return fmt.Sprintf("%s@%d", prefix, rt.lastName)
}

func (rt *Runtime) batch(fn func() error) (err error) {
	outermost := rt.batchDepth == 0 && rt.flushDepth == 0
	rt.startBatch()
	defer func() {
		rt.endBatch()
		if outermost {
			err = multierr.Append(err, rt.takeHookErrors())
		}
	}()
	return fn()
}

func (rt *Runtime) startBatch() {
	rt.batchDepth++
}

func (rt *Runtime) endBatch() {
	rt.batchDepth--
	if rt.batchDepth > 0 {
		return
	}
	rt.runReactions()

	rt.flushDepth++
	defer func() { rt.flushDepth-- }()
	for len(rt.pendingUnobservations) > 0 {
		list := rt.pendingUnobservations
		rt.pendingUnobservations = nil
		for _, s := range list {
			sc := s.asSource()
			sc.pendingUnobservation = false
			if len(sc.observers) == 0 {
				rt.hookErr = multierr.Append(rt.hookErr, s.onUnobserved())
			}
		}
	}
}

func (rt *Runtime) takeHookErrors() error {
	err := rt.hookErr
	rt.hookErr = nil
	return err
}

func (rt *Runtime) runReactions() {
	if rt.batchDepth > 0 || rt.runningReactions {
		return
	}
	rt.runningReactions = true
	rt.flushDepth++
	defer func() {
		rt.runningReactions = false
		rt.flushDepth--
	}()

	for iterations := 0; len(rt.pendingReactions) > 0; iterations++ {
		if iterations >= rt.maxIterations {
			err := fmt.Errorf("%w: %d iterations, last reaction %s",
				ErrReactionLoop, iterations, rt.pendingReactions[0].name)
			rt.logger.Error("aborting reactions",
				zap.String("runtime", rt.ID),
				zap.Error(err),
			)
			for _, r := range rt.pendingReactions {
				r.scheduled = false
			}
			rt.pendingReactions = nil
			rt.hookErr = multierr.Append(rt.hookErr, err)
			return
		}

		list := rt.pendingReactions
		rt.pendingReactions = nil
		for _, r := range list {
			if err := r.run(); err != nil {
				rt.logger.Error("reaction failed",
					zap.String("runtime", rt.ID),
					zap.String("reaction", r.name),
					zap.Error(err),
				)
			}
		}
	}
}
