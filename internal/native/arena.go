// Package native holds the calls into the host operating system's identity
// APIs and the scoped memory they write into. Nothing outside this package
// interprets native structure layouts.
package native

import (
	"sync/atomic"
	"unsafe"
)

// Allocator hands out raw blocks for native calls to write into.
type Allocator interface {
	Alloc(n int) unsafe.Pointer
	Free(p unsafe.Pointer)
}

// GoAllocator allocates on the Go heap. Free is a no-op; the block is
// released by the garbage collector once the arena drops it.
type GoAllocator struct{}

// Alloc implements Allocator.
func (GoAllocator) Alloc(n int) unsafe.Pointer {
	buf := make([]byte, n)
	return unsafe.Pointer(&buf[0])
}

// Free implements Allocator.
func (GoAllocator) Free(unsafe.Pointer) {}

// Tracker counts blocks that have been allocated but not yet freed.
type Tracker struct {
	live  atomic.Int64
	total atomic.Int64
}

// Live returns the number of outstanding blocks.
func (t *Tracker) Live() int64 { return t.live.Load() }

// Total returns the number of blocks allocated since the tracker was created.
func (t *Tracker) Total() int64 { return t.total.Load() }

// Arena is an allocation scope local to one resolution call. Every block is
// released by Close, which callers defer right after NewArena.
type Arena struct {
	alloc   Allocator
	tracker *Tracker
	blocks  []unsafe.Pointer
	closed  bool
}

// NewArena creates an arena. tracker may be nil.
func NewArena(alloc Allocator, tracker *Tracker) *Arena {
	if alloc == nil {
		alloc = GoAllocator{}
	}
	return &Arena{alloc: alloc, tracker: tracker}
}

// Alloc returns a zeroed block of n bytes, or nil when n <= 0.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 || a.closed {
		return nil
	}
	p := a.alloc.Alloc(n)
	if p == nil {
		return nil
	}
	buf := unsafe.Slice((*byte)(p), n)
	clear(buf)
	a.blocks = append(a.blocks, p)
	if a.tracker != nil {
		a.tracker.live.Add(1)
		a.tracker.total.Add(1)
	}
	return buf
}

// AllocUint16 returns a zeroed block of n UTF-16 code units.
func (a *Arena) AllocUint16(n int) []uint16 {
	buf := a.Alloc(n * 2)
	if buf == nil {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&buf[0])), n)
}

// AllocInt32 returns a zeroed block of n 32-bit integers.
func (a *Arena) AllocInt32(n int) []int32 {
	buf := a.Alloc(n * 4)
	if buf == nil {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&buf[0])), n)
}

// Close frees every block. It is safe to call more than once.
func (a *Arena) Close() {
	if a.closed {
		return
	}
	a.closed = true
	for _, p := range a.blocks {
		a.alloc.Free(p)
		if a.tracker != nil {
			a.tracker.live.Add(-1)
		}
	}
	a.blocks = nil
}
