// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "unsafe"

// The handle table: a fixed array of 256 entries mapping a handle
// index to a pool block plus a reference count. Free entries are
// threaded into a list; allocation pops the head. Atomic words never
// touch the table.

const (
	numHandles = 256
	maxRefs    = 63
	noHandle   = -1
)

type handle struct {
	data  []byte // backing block, owned by the pool
	class uint8  // pool size-class of data
	refs  uint8  // reference count, 1..maxRefs
	next  int16  // free-list link when refs == 0
}

// Mem owns the handle table, the pool allocator, the worker pool, and
// the random generator: all the process-wide mutable state of the
// core. One Mem is created at startup and reached from every entry
// point through the Context interface.
type Mem struct {
	pool pool
	tab  [numHandles]handle
	free int // head of the handle free list
	live int

	par *workers
	rng randState
}

// NewMem returns a memory core with every handle free and an idle
// worker pool of n workers.
func NewMem(n int) *Mem {
	m := &Mem{free: 0}
	for i := range m.tab {
		m.tab[i].next = int16(i + 1)
	}
	m.tab[numHandles-1].next = noHandle
	m.par = startWorkers(n)
	return m
}

// bytesFor returns the byte size of the backing buffer for n elements
// of the given tag, rounded up to whole 64-bit words for bits and to
// the element size otherwise.
func bytesFor(tag, n int) int {
	if tag == tagBit {
		return 8 * ((n + 63) / 64)
	}
	return n * widthBits[tag] / 8
}

// Alloc allocates a rank-1 array of n elements of the given tag and
// returns a boxed word with refcount 1. The backing block is zeroed.
func (m *Mem) Alloc(tag, n int) Word {
	return m.allocShaped(tag, n, 0, 0)
}

// AllocMatrix allocates a rows×cols matrix.
func (m *Mem) AllocMatrix(tag, rows, cols int) Word {
	return m.allocShaped(tag, rows*cols, rows, strideLogFor(cols))
}

func (m *Mem) allocShaped(tag, n, u, sl int) Word {
	if n > maxCount || u > maxRows {
		throw(' ', errMemory)
	}
	if m.free == noHandle {
		throw(' ', errMemory)
	}
	k := classFor(bytesFor(tag, n))
	b := m.pool.alloc(k)
	clear(b)
	h := m.free
	e := &m.tab[h]
	m.free = int(e.next)
	e.data = b
	e.class = uint8(k)
	e.refs = 1
	m.live++
	return box(tag, n, u, sl, h)
}

// Retain increments the refcount of a boxed word and passes atoms
// through. Exceeding the refcount limit is fatal.
func (m *Mem) Retain(w Word) Word {
	if !w.Boxed() {
		return w
	}
	e := &m.tab[w.Handle()]
	if e.refs >= maxRefs {
		throw(' ', errRef)
	}
	e.refs++
	return w
}

// Release decrements the refcount of a boxed word; on the transition
// to zero the contained elements of a mixed array are released first,
// then the block returns to its pool and the handle to the free list.
func (m *Mem) Release(w Word) {
	if !w.Boxed() {
		return
	}
	h := w.Handle()
	e := &m.tab[h]
	if e.refs > 1 {
		e.refs--
		return
	}
	if w.Tag() == tagMixed {
		for _, elem := range m.Words(w) {
			m.Release(elem)
		}
	}
	m.pool.release(e.data, int(e.class))
	e.data = nil
	e.refs = 0
	e.next = int16(m.free)
	m.free = h
	m.live--
}

// Refs returns the current refcount of a boxed word.
func (m *Mem) Refs(w Word) int {
	return int(m.tab[w.Handle()].refs)
}

// Live returns the number of live handles.
func (m *Mem) Live() int {
	return m.live
}

// Outstanding returns the number of pool blocks not on a free list.
func (m *Mem) Outstanding() int {
	return m.pool.outstanding()
}

// WorkspaceBytes returns the total backing bytes of live arrays.
func (m *Mem) WorkspaceBytes() int {
	n := 0
	for i := range m.tab {
		if m.tab[i].refs > 0 {
			n += blockSize(int(m.tab[i].class))
		}
	}
	return n
}

// base returns the backing block of a boxed word.
func (m *Mem) base(w Word) []byte {
	return m.tab[w.Handle()].data
}

// Bytes returns the elements of a byte array.
func (m *Mem) Bytes(w Word) []byte {
	return m.base(w)[:w.Count()]
}

// Ints returns the elements of an int or symbol array.
func (m *Mem) Ints(w Word) []int32 {
	b := m.base(w)
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&b[0])), w.Count())
}

// Floats returns the elements of a float array.
func (m *Mem) Floats(w Word) []float32 {
	b := m.base(w)
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), w.Count())
}

// Bits returns the packed words of a bit array; the tail word is
// zero-padded.
func (m *Mem) Bits(w Word) []uint64 {
	b := m.base(w)
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), (w.Count()+63)/64)
}

// Words returns the elements of a mixed array.
func (m *Mem) Words(w Word) []Word {
	b := m.base(w)
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*Word)(unsafe.Pointer(&b[0])), w.Count())
}
