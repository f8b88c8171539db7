package helper

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// FuncName returns the short symbol name of fn, e.g. "main.double" or "pkg.Test.func1".
// It returns "anonymous" when fn is nil or not a function.
func FuncName(fn any) string {
	if fn == nil {
		return "anonymous"
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "anonymous"
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "anonymous"
	}
	name := f.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// ErrTooManyCallbacks is returned by Optional when more than one callback is passed.
var ErrTooManyCallbacks = errors.New("only one or zero callbacks allowed")

// Optional flattens an optional variadic callback into a single value.
//
// Accepts either 0 or 1 callbacks. The zero value is returned for none.
func Optional[F any](fns []F) (F, error) {
	var zero F
	switch len(fns) {
	case 0:
		return zero, nil
	case 1:
		return fns[0], nil
	default:
		return zero, fmt.Errorf("%w: got %d", ErrTooManyCallbacks, len(fns))
	}
}
