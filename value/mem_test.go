// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import (
	"testing"
	"unsafe"

	"github.com/thinpo/tik/config"
)

func sliceAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// testContext is the minimal Context for exercising the value package
// on its own.
type testContext struct {
	conf *config.Config
	mem  *Mem
}

func (c *testContext) Config() *config.Config { return c.conf }
func (c *testContext) Mem() *Mem              { return c.mem }

func newTestContext() *testContext {
	conf := &config.Config{}
	return &testContext{conf: conf, mem: NewMem(conf.Workers())}
}

func catch(f func()) (err Error) {
	defer func() {
		if e := recover(); e != nil {
			err = e.(Error)
		}
	}()
	f()
	return ""
}

func TestAllocReleaseCycle(t *testing.T) {
	m := NewMem(1)
	w := m.Alloc(tagInt, 100)
	if !w.Boxed() || w.Count() != 100 || w.Tag() != tagInt {
		t.Fatalf("bad array word %x", uint64(w))
	}
	if m.Refs(w) != 1 || m.Live() != 1 {
		t.Fatalf("refs %d live %d after alloc", m.Refs(w), m.Live())
	}
	m.Retain(w)
	if m.Refs(w) != 2 {
		t.Fatalf("refs %d after retain", m.Refs(w))
	}
	m.Release(w)
	if m.Refs(w) != 1 || m.Live() != 1 {
		t.Fatal("early free")
	}
	m.Release(w)
	if m.Live() != 0 || m.Outstanding() != 0 {
		t.Fatalf("live %d outstanding %d after final release", m.Live(), m.Outstanding())
	}
}

func TestHandleReuse(t *testing.T) {
	m := NewMem(1)
	a := m.Alloc(tagInt, 4)
	h := a.Handle()
	m.Release(a)
	b := m.Alloc(tagInt, 4)
	if b.Handle() != h {
		t.Errorf("freed handle %d not reused; got %d", h, b.Handle())
	}
	m.Release(b)
}

func TestHandleExhaustion(t *testing.T) {
	m := NewMem(1)
	var ws []Word
	for i := 0; i < numHandles; i++ {
		ws = append(ws, m.Alloc(tagByte, 8))
	}
	err := catch(func() { m.Alloc(tagByte, 8) })
	if !err.Fatal() {
		t.Fatalf("exhaustion error = %q, want fatal oom", err)
	}
	for _, w := range ws {
		m.Release(w)
	}
	if m.Live() != 0 || m.Outstanding() != 0 {
		t.Fatal("leak after exhaustion test")
	}
}

func TestRefcountOverflow(t *testing.T) {
	m := NewMem(1)
	w := m.Alloc(tagInt, 1)
	for i := 1; i < maxRefs; i++ {
		m.Retain(w)
	}
	err := catch(func() { m.Retain(w) })
	if !err.Fatal() {
		t.Fatalf("overflow error = %q, want fatal ref", err)
	}
	for i := 0; i < maxRefs; i++ {
		m.Release(w)
	}
	if m.Live() != 0 {
		t.Fatal("leak after overflow test")
	}
}

func TestMixedRecursiveRelease(t *testing.T) {
	m := NewMem(1)
	inner := m.Alloc(tagInt, 10)
	outer := m.Alloc(tagMixed, 2)
	m.Words(outer)[0] = m.Retain(inner)
	m.Words(outer)[1] = Int(42)
	m.Release(inner)
	if m.Live() != 2 {
		t.Fatalf("live %d, want 2", m.Live())
	}
	m.Release(outer)
	if m.Live() != 0 || m.Outstanding() != 0 {
		t.Fatalf("live %d outstanding %d after recursive release", m.Live(), m.Outstanding())
	}
}

func TestPoolSplit(t *testing.T) {
	var p pool
	a := p.alloc(0)
	if len(a) != 64 {
		t.Fatalf("class-0 block size %d", len(a))
	}
	b := p.alloc(3)
	if len(b) != 64<<3 {
		t.Fatalf("class-3 block size %d", len(b))
	}
	p.release(a, 0)
	p.release(b, 3)
	if p.outstanding() != 0 {
		t.Fatalf("outstanding %d after release", p.outstanding())
	}
	// A released block comes back for the same class.
	c := p.alloc(3)
	if &c[0] != &b[0] {
		t.Error("class-3 block not reused")
	}
	p.release(c, 3)
}

func TestBlockAlignment(t *testing.T) {
	m := NewMem(1)
	for _, n := range []int{1, 63, 64, 65, 1000, 100000} {
		w := m.Alloc(tagByte, n)
		b := m.base(w)
		if addr := sliceAddr(b); addr%blockAlign != 0 {
			t.Errorf("block for %d bytes misaligned: %#x", n, addr)
		}
		m.Release(w)
	}
}

func TestClassFor(t *testing.T) {
	cases := []struct{ n, k int }{
		{0, 0}, {1, 0}, {64, 0}, {65, 1}, {128, 1}, {129, 2}, {4096, 6},
	}
	for _, c := range cases {
		if got := classFor(c.n); got != c.k {
			t.Errorf("classFor(%d) = %d, want %d", c.n, got, c.k)
		}
	}
}
