// Package transform turns a function of one object into a reactive, memoizing view.
//
// A Transformer caches fn(source) per source object identity, not per content: two
// equal-looking objects get two entries. Each entry is a reactive computed value, so it
// is re-evaluated when the reactive state fn read changes, and it is evicted as soon as
// nothing observes it any more. Eviction removes the entry from the cache and calls the
// optional cleanup callback with the last value and the source, exactly once per entry.
// If the last evaluation of fn failed, the cleanup callback gets the zero value.
//
// # Usage
//
//	type Todo struct {
//	    Title *reactive.Observable[string]
//	}
//
//	rt := reactive.NewRuntime(reactive.Config{})
//	render, _ := transform.New(rt, func(t *Todo) (string, error) {
//	    return "[ ] " + t.Title.Get(), nil
//	}, func(view string, t *Todo) error {
//	    fmt.Println("dropped", view)
//	    return nil
//	})
//
//	todo := &Todo{Title: reactive.NewObservable(rt, "title", "write docs")}
//	r, _ := rt.Autorun("print", func() error {
//	    view, err := render.Apply(todo)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(view)
//	    return nil
//	})
//	_ = todo.Title.Set("write more docs") // render re-runs, prints again
//	_ = r.Dispose()                        // entry evicted, "dropped ..." printed
//
// # Lifecycle
//
// Applied inside a reaction (or a computed value that is itself observed), an entry stays
// cached across calls and across re-runs. Applied from plain code, nothing observes the
// entry, so it is evaluated and evicted within the same call.
//
// # Errors
//
//   - ErrInvalidArgument: nil fn, more than one cleanup callback, or a nil source.
//   - errors returned by fn are passed through unchanged and never cached; the next
//     Apply for the same source evaluates fn again.
//   - ErrCleanup wraps cleanup callback failures. It is returned by whatever caused the
//     eviction (Reaction.Dispose, Observable.Set, Runtime.Transaction or Apply itself);
//     the entry is already gone by then.
//
// A Transformer belongs to its runtime and is not safe for concurrent use.
package transform
