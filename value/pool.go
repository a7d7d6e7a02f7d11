// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "unsafe"

// The pool allocator: 30 free lists indexed by size-class k, each
// holding blocks of 64<<k bytes. An empty class is refilled by
// allocating one block of class k+1 and splitting it in two. Fresh
// top-level blocks come from the Go heap, over-allocated and trimmed
// so every block is 64-byte aligned.

const (
	poolClasses = 30
	blockAlign  = 64

	// chunkClass is the class at which the pool refills from the Go
	// heap (64<<16 = 4MB chunks). Smaller classes refill by splitting.
	chunkClass = 16
)

type pool struct {
	free [poolClasses][][]byte
	held [poolClasses]int // blocks handed out and not yet returned
}

// classFor returns the smallest size-class whose block holds n bytes.
func classFor(n int) int {
	k := 0
	for blockAlign<<k < n {
		k++
		if k >= poolClasses {
			throw(' ', errMemory)
		}
	}
	return k
}

// blockSize returns the byte size of a class-k block.
func blockSize(k int) int {
	return blockAlign << k
}

// alloc pops a block of class k, splitting a larger block if the list
// is empty. The recursion is bounded by the class cap; the topmost
// class refills from the heap.
func (p *pool) alloc(k int) []byte {
	if k >= poolClasses {
		throw(' ', errMemory)
	}
	if len(p.free[k]) == 0 {
		if k >= chunkClass {
			p.grow(k)
		} else {
			big := p.alloc(k + 1)
			p.held[k+1]--
			half := blockSize(k)
			p.free[k] = append(p.free[k], big[half:])
			p.free[k] = append(p.free[k], big[:half:half])
		}
	}
	n := len(p.free[k])
	b := p.free[k][n-1]
	p.free[k] = p.free[k][:n-1]
	p.held[k]++
	return b
}

// release returns a block of class k to its free list.
func (p *pool) release(b []byte, k int) {
	p.free[k] = append(p.free[k], b)
	p.held[k]--
}

// outstanding returns the number of blocks handed out and not yet
// returned, across all classes.
func (p *pool) outstanding() int {
	n := 0
	for _, h := range p.held {
		n += h
	}
	return n
}

// grow adds one aligned block of class k from the Go heap.
func (p *pool) grow(k int) {
	raw := make([]byte, blockSize(k)+blockAlign-1)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) & (blockAlign - 1)); rem != 0 {
		off = blockAlign - rem
	}
	b := raw[off : off+blockSize(k) : off+blockSize(k)]
	p.free[k] = append(p.free[k], b)
}
