package reactive

import "reflect"

// DefaultEquals reports whether a and b hold the same comparable value.
// Values of non-comparable types (slices, maps, funcs) are never equal.
func DefaultEquals[T any](a, b T) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}
