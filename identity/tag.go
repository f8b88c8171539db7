package identity

import (
	"strconv"
	"sync/atomic"
)

// Tag is a process-unique identity key bound to one object.
// The zero Tag is never issued and means "not tagged yet".
type Tag uint64

func (t Tag) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

var lastID atomic.Uint64

// NextID returns a fresh, strictly increasing Tag.
// It is safe to call from any goroutine and never hands out the same value twice.
func NextID() Tag {
	return Tag(lastID.Add(1))
}

// Tagged is implemented by objects that carry their own identity tag.
// Embedding Handle is the usual way to satisfy it.
type Tagged interface {
	TransformTag() Tag
}

// Handle is embedded into a struct to give it a stable identity tag without
// going through a Registry. The tag is allocated on first use.
//
//	type Person struct {
//	    identity.Handle
//	    Name string
//	}
type Handle struct {
	tag atomic.Uint64
}

// TransformTag returns the tag of the enclosing object, allocating it on first call.
func (h *Handle) TransformTag() Tag {
	if t := h.tag.Load(); t != 0 {
		return Tag(t)
	}
	h.tag.CompareAndSwap(0, uint64(NextID()))
	return Tag(h.tag.Load())
}
