package reactive

import "errors"

// ErrCycle is returned when a computed value is read while it is being evaluated.
var ErrCycle = errors.New("cyclic computation")

// ErrReactionLoop is returned when reactions keep re-triggering each other.
var ErrReactionLoop = errors.New("reactions did not converge")
