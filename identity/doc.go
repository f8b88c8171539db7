// Package identity hands out identity tags for objects.
//
// A tag is a process-unique integer bound to one object reference. Memoization
// keyed on tags is keyed on identity, not content: two structurally equal objects
// get two different tags.
//
// Objects can carry their tag themselves by embedding Handle. Any other pointer is
// tagged out-of-band in a Registry that references it weakly, so callers never see
// their data mutated and collected objects do not pin registry entries.
//
// Example:
//
//	type Person struct{ Name string }
//
//	p := &Person{Name: "ann"}
//	t1, _ := identity.Of(p)
//	t2, _ := identity.Of(p) // t1 == t2
//	t3, _ := identity.Of(&Person{Name: "ann"}) // t3 != t1
package identity
