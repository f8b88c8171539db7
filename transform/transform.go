package transform

import (
	"errors"
	"fmt"
	"time"

	"github.com/on-the-ground/transform_ive_go/identity"
	"github.com/on-the-ground/transform_ive_go/internal/helper"
	"github.com/on-the-ground/transform_ive_go/reactive"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"
)

// ErrInvalidArgument is returned for a nil transform function, more than one cleanup
// callback, or a nil source object.
var ErrInvalidArgument = identity.ErrInvalidArgument

// ErrCleanup wraps errors returned by a cleanup callback.
var ErrCleanup = errors.New("transform cleanup failed")

// Func derives a value from one source object. It should be pure apart from reading
// reactive state, which is tracked.
type Func[S, R any] func(source *S) (R, error)

// CleanupFunc is called with the last derived value and its source when a cached entry
// is evicted.
type CleanupFunc[S, R any] func(value R, source *S) error

// Transformer memoizes a Func per source object identity.
//
// Each source object gets its own cached entry, evaluated lazily and re-evaluated when
// the reactive state read by the Func changes. An entry lives as long as something in
// the runtime observes it; once the last observer goes away the entry is evicted and
// the cleanup callback, if any, runs once with the last value.
type Transformer[S, R any] struct {
	rt        *reactive.Runtime
	logger    *zap.Logger
	fn        Func[S, R]
	onCleanup CleanupFunc[S, R]
	name      string
	cache     map[identity.Tag]*entry[S, R]
}

// New creates a Transformer over fn on runtime rt (the default runtime if nil).
// At most one cleanup callback may be passed. No entry is created until Apply is called.
func New[S, R any](rt *reactive.Runtime, fn Func[S, R], onCleanup ...CleanupFunc[S, R]) (*Transformer[S, R], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: transform expects a function of one argument, got nil", ErrInvalidArgument)
	}
	cleanup, err := helper.Optional(onCleanup)
	if err != nil {
		return nil, fmt.Errorf("%w: cleanup: %w", ErrInvalidArgument, err)
	}
	if rt == nil {
		rt = reactive.DefaultRuntime()
	}
	return &Transformer[S, R]{
		rt:        rt,
		logger:    rt.Logger().Named("transform"),
		fn:        fn,
		onCleanup: cleanup,
		name:      helper.FuncName(fn),
		cache:     make(map[identity.Tag]*entry[S, R]),
	}, nil
}

// Must is like New but panics on error.
func Must[S, R any](t *Transformer[S, R], err error) *Transformer[S, R] {
	if err != nil {
		panic(err)
	}
	return t
}

// Apply returns fn(source), reusing the cached entry of source when there is one.
//
// Called from a reaction or another computed value, the entry stays cached for as long
// as that caller observes it. Called from plain code, the entry only lives for the call:
// it is evaluated, then evicted, and the cleanup callback runs before Apply returns.
// A failing cleanup then yields a valid value together with an ErrCleanup error.
func (t *Transformer[S, R]) Apply(source *S) (R, error) {
	tag, err := identity.Of(source)
	if err != nil {
		var zero R
		return zero, err
	}
	if e, ok := t.cache[tag]; ok {
		return e.get()
	}
	e := newEntry(t, tag, source)
	t.cache[tag] = e
	t.logger.Debug("created entry",
		zap.String("entry", e.name),
		zap.Stringer("tag", tag),
	)
	return e.get()
}

// Func returns Apply as a plain function value.
func (t *Transformer[S, R]) Func() func(*S) (R, error) {
	return t.Apply
}

// Name returns the name of the wrapped function.
func (t *Transformer[S, R]) Name() string { return t.name }

// Len returns the number of live cached entries.
func (t *Transformer[S, R]) Len() int { return len(t.cache) }

// EntryInfo describes a live cached entry.
type EntryInfo struct {
	Tag       identity.Tag
	Name      string
	CreatedAt time.Time
	// Lifetime runs from CreatedAt to the moment Entries was called.
	Lifetime timespan.TimeSpan
}

// Entries lists the live cached entries in no particular order.
func (t *Transformer[S, R]) Entries() []EntryInfo {
	now := time.Now()
	infos := make([]EntryInfo, 0, len(t.cache))
	for _, e := range t.cache {
		infos = append(infos, EntryInfo{
			Tag:       e.tag,
			Name:      e.name,
			CreatedAt: e.createdAt,
			Lifetime:  e.lifetime(now),
		})
	}
	return infos
}
