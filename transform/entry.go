package transform

import (
	"fmt"
	"time"

	"github.com/on-the-ground/transform_ive_go/identity"
	"github.com/on-the-ground/transform_ive_go/reactive"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"
)

// entry is the cached derivation fn(source) for one source object.
// Its lifecycle is Created -> Observed -> Unobserved; an evicted entry is never reused.
type entry[S, R any] struct {
	owner     *Transformer[S, R]
	tag       identity.Tag
	source    *S
	name      string
	createdAt time.Time
	computed  *reactive.Computed[R]
}

func newEntry[S, R any](t *Transformer[S, R], tag identity.Tag, source *S) *entry[S, R] {
	e := &entry[S, R]{
		owner:     t,
		tag:       tag,
		source:    source,
		name:      fmt.Sprintf("Transformer-%s-%s", t.name, tag),
		createdAt: time.Now(),
	}
	e.computed = reactive.NewComputed(t.rt, func() (R, error) { return t.fn(source) }, reactive.ComputedOptions[R]{
		Name:               e.name,
		OnBecomeUnobserved: e.evict,
	})
	return e
}

func (e *entry[S, R]) get() (R, error) {
	return e.computed.Get()
}

// lifetime spans from the creation of e up to now.
func (e *entry[S, R]) lifetime(now time.Time) timespan.TimeSpan {
	return timespan.BetweenTimes(e.createdAt, now)
}

// evict runs after the computed has released its own sources. The cache slot goes
// first, so a cleanup callback that applies the transformer again gets a fresh entry.
// last is the zero R when the most recent evaluation failed.
func (e *entry[S, R]) evict(last R) error {
	t := e.owner
	if cur, ok := t.cache[e.tag]; ok && cur == e {
		delete(t.cache, e.tag)
	}

	lifetime := e.lifetime(time.Now())
	t.logger.Debug("evicted entry",
		zap.String("entry", e.name),
		zap.Stringer("tag", e.tag),
		zap.Duration("lifetime", lifetime.Duration()),
	)

	if t.onCleanup == nil {
		return nil
	}
	if err := t.onCleanup(last, e.source); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCleanup, e.name, err)
	}
	return nil
}
