// Package reactive is a small, synchronous dependency-tracking engine.
//
// It offers three building blocks:
//   - Observable: a mutable cell. Reads are recorded, writes notify readers.
//   - Computed: a lazily evaluated value derived from other cells. It is cached while
//     observed and re-evaluated only when something it read has changed.
//   - Reaction (Runtime.Autorun): a side effect re-run whenever something it read changes.
//
// All of them belong to a Runtime, which tracks who reads what and runs reactions and
// unobservation hooks when the outermost batch ends. A Runtime has no goroutines and
// no locks: every operation completes synchronously in the caller's goroutine, and a
// Runtime must not be shared across goroutines.
//
// # Observation
//
// A Computed is observed while at least one Reaction depends on it, directly or through
// other computed values. When it loses its last observer it releases its own sources,
// forgets its value and runs ComputedOptions.OnBecomeUnobserved once. A Computed read
// from plain code is only observed for the duration of that read.
//
// # Errors
//
// Evaluation errors are returned by Computed.Get and are not cached. Errors from
// unobservation hooks are returned by the operation that ended the batch they ran in:
// Observable.Set, Reaction.Dispose, Runtime.Transaction or an outermost Computed.Get.
// Reactions re-run by a change have no caller; their errors are logged.
//
// Example:
//
//	rt := reactive.NewRuntime(reactive.Config{})
//	price := reactive.NewObservable(rt, "price", 10)
//	withTax := reactive.NewComputed(rt, func() (int, error) {
//	    return price.Get() * 120 / 100, nil
//	})
//	r, _ := rt.Autorun("print", func() error {
//	    v, err := withTax.Get()
//	    fmt.Println(v)
//	    return err
//	})
//	defer r.Dispose()
//	_ = price.Set(20) // prints 24
package reactive
