package identity

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"
	"weak"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidArgument is returned when an identity is requested for something that is not an object.
var ErrInvalidArgument = errors.New("invalid argument")

const numShards = 32

// Registry keeps tags for objects that do not carry a Handle.
// Objects are referenced weakly, so a Registry never keeps them alive and never
// mutates them. An entry is dropped once its object has been collected.
type Registry struct {
	shards [numShards]shard
}

type shard struct {
	mu   sync.Mutex
	tags map[any]Tag
}

// registryKey is handed to runtime.AddCleanup; it must not reference the object itself.
type registryKey struct {
	shard int
	key   any
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].tags = make(map[any]Tag)
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by Of.
func Default() *Registry {
	return defaultRegistry
}

// Of returns the identity tag of the object p points to, assigning one on first sight.
// The tag is shared by every caller in the process that resolves the same pointer.
func Of[T any](p *T) (Tag, error) {
	return Resolve(defaultRegistry, p)
}

// Resolve is Of against an explicit registry.
//
// Objects implementing Tagged answer for themselves; everything else is looked up
// by weak pointer. Two distinct objects never share a tag, whatever their content.
func Resolve[T any](r *Registry, p *T) (Tag, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: expected an object, got nil %T", ErrInvalidArgument, p)
	}
	if tagged, ok := any(p).(Tagged); ok {
		return tagged.TransformTag(), nil
	}

	key := weak.Make(p)
	idx := shardIndex(uintptr(unsafe.Pointer(p)))
	s := &r.shards[idx]

	s.mu.Lock()
	defer s.mu.Unlock()
	if tag, ok := s.tags[key]; ok {
		return tag, nil
	}
	tag := NextID()
	s.tags[key] = tag
	runtime.AddCleanup(p, r.forget, registryKey{shard: idx, key: key})
	return tag, nil
}

// Len returns the number of objects currently tracked by the registry.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		n += len(s.tags)
		s.mu.Unlock()
	}
	return n
}

func (r *Registry) forget(k registryKey) {
	s := &r.shards[k.shard]
	s.mu.Lock()
	delete(s.tags, k.key)
	s.mu.Unlock()
}

func shardIndex(addr uintptr) int {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(addr))
	return int(xxhash.Sum64(buf[:]) % numShards)
}
