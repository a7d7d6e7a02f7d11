// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"testing"

	"github.com/thinpo/tik/config"
	"github.com/thinpo/tik/value"
)

func newCtx() *Context {
	return NewContext(&config.Config{})
}

func verb(g byte) byte {
	c, ok := value.VerbCode(g)
	if !ok {
		panic("bad glyph")
	}
	return byte(ByteVerb + c)
}

func fold(g byte) byte {
	c, _ := value.VerbCode(g)
	return byte(ByteFold + c)
}

// runStream installs a hand-assembled stream in the top scope and evaluates
// it, returning the statement values.
func runStream(t *testing.T, c *Context, body []byte, lits []value.Word) []value.Word {
	t.Helper()
	c.Define(Top, body, lits)
	var out []value.Word
	c.EvalTop(func(w value.Word) { out = append(out, w) })
	return out
}

func catchErr(f func()) (err value.Error) {
	defer func() {
		if e := recover(); e != nil {
			err = e.(value.Error)
		}
	}()
	f()
	return ""
}

// 2*3+4 must evaluate right to left: 14, not 10.
func TestRightToLeft(t *testing.T) {
	c := newCtx()
	out := runStream(t, c,
		[]byte{ByteLit + 0, verb('*'), ByteLit + 1, verb('+'), ByteLit + 2},
		[]value.Word{value.Int(2), value.Int(3), value.Int(4)})
	if len(out) != 1 || out[0] != value.Int(14) {
		t.Fatalf("2*3+4 = %v", out)
	}
	c.Mem().Release(out[0])
	c.Teardown()
	if c.Mem().Live() != 0 {
		t.Fatal("leak")
	}
}

func TestFoldIota(t *testing.T) {
	c := newCtx()
	out := runStream(t, c,
		[]byte{fold('+'), verb('!'), ByteLit + 0},
		[]value.Word{value.Int(10)})
	if len(out) != 1 || out[0] != value.Int(45) {
		t.Fatalf("+/!10 = %v", out)
	}
}

func TestAssignAndUse(t *testing.T) {
	c := newCtx()
	m := c.Mem()
	arr := m.Alloc(value.TagInt, 3)
	copy(m.Ints(arr), []int32{1, 2, 3})
	slot := ScopeIndex('x')
	// x:1 2 3; x+x
	out := runStream(t, c,
		[]byte{byte(slot), ByteAssign, ByteLit + 0, ByteSep, byte(slot), verb('+'), byte(slot)},
		[]value.Word{arr})
	if len(out) != 1 {
		t.Fatalf("want one printed value, got %d", len(out))
	}
	got := m.Ints(out[0])
	want := []int32{2, 4, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("x+x = %v", got)
		}
	}
	m.Release(out[0])
	c.Teardown()
	if m.Live() != 0 || m.Outstanding() != 0 {
		t.Fatalf("teardown leaves live %d outstanding %d", m.Live(), m.Outstanding())
	}
}

func TestParenGroup(t *testing.T) {
	c := newCtx()
	// (1+2)*3
	out := runStream(t, c,
		[]byte{ByteLParen, ByteLit + 0, verb('+'), ByteLit + 1, ByteRParen, verb('*'), ByteLit + 2},
		[]value.Word{value.Int(1), value.Int(2), value.Int(3)})
	if len(out) != 1 || out[0] != value.Int(9) {
		t.Fatalf("(1+2)*3 = %v", out)
	}
}

func TestBracketIndex(t *testing.T) {
	c := newCtx()
	m := c.Mem()
	arr := m.Alloc(value.TagInt, 4)
	copy(m.Ints(arr), []int32{10, 20, 30, 40})
	slot := ScopeIndex('v')
	// v:10 20 30 40; v[2]
	out := runStream(t, c,
		[]byte{byte(slot), ByteAssign, ByteLit + 0, ByteSep,
			byte(slot), ByteLBrack, ByteLit + 1, ByteRBrack},
		[]value.Word{arr, value.Int(2)})
	if len(out) != 1 || out[0] != value.Int(30) {
		t.Fatalf("v[2] = %v", out)
	}
	c.Teardown()
	if m.Live() != 0 {
		t.Fatal("leak")
	}
}

func TestApply(t *testing.T) {
	c := newCtx()
	a := ScopeIndex('a')
	// a::{x+1}
	c.Define(a, []byte{byte(SlotX), verb('+'), ByteLit + 0}, []value.Word{value.Int(1)})
	// a 4
	out := runStream(t, c, []byte{byte(a), ByteLit + 0}, []value.Word{value.Int(4)})
	if len(out) != 1 || out[0] != value.Int(5) {
		t.Fatalf("a 4 = %v", out)
	}
	// The argument binding must not leak into later calls.
	out = runStream(t, c, []byte{byte(a), ByteLit + 0}, []value.Word{value.Int(7)})
	if out[0] != value.Int(8) {
		t.Fatalf("a 7 = %v", out)
	}
	c.Teardown()
	if c.Mem().Live() != 0 {
		t.Fatal("leak")
	}
}

// A scope being evaluated cannot be re-entered: a self call raises stk.
func TestInUse(t *testing.T) {
	c := newCtx()
	a := ScopeIndex('a')
	// a:: a x  (self application)
	c.Define(a, []byte{byte(a), byte(SlotX)}, nil)
	err := catchErr(func() {
		runStream(t, c, []byte{byte(a), ByteLit + 0}, []value.Word{value.Int(1)})
	})
	if len(err) < 4 || string(err)[len(err)-4:] != " stk" {
		t.Fatalf("self call error = %q", err)
	}
}

func TestUndefinedVariable(t *testing.T) {
	c := newCtx()
	err := catchErr(func() {
		runStream(t, c, []byte{byte(ScopeIndex('q'))}, nil)
	})
	if err == "" {
		t.Fatal("no error for undefined variable")
	}
}

// A failed statement must leave the target slot untouched.
func TestNoPartialAssign(t *testing.T) {
	c := newCtx()
	m := c.Mem()
	slot := ScopeIndex('x')
	out := runStream(t, c, []byte{byte(slot), ByteAssign, ByteLit + 0}, []value.Word{value.Int(5)})
	if len(out) != 0 {
		t.Fatal("assignment printed a value")
	}
	// x: 1 ! 0 ... the modulo fails; x keeps its old value.
	catchErr(func() {
		runStream(t, c,
			[]byte{byte(slot), ByteAssign, ByteLit + 0, verb('!'), ByteLit + 1},
			[]value.Word{value.Int(1), value.Int(0)})
	})
	if c.Var(Top, slot) != value.Int(5) {
		t.Fatalf("x = %#x after failed assignment", uint64(c.Var(Top, slot)))
	}
	c.Teardown()
	if m.Live() != 0 {
		t.Fatal("leak")
	}
}

func TestGlobalFallback(t *testing.T) {
	c := newCtx()
	// y:10 at top level; a::{x+y}; a 4 = 14.
	yslot := ScopeIndex('y')
	runStream(t, c, []byte{byte(yslot), ByteAssign, ByteLit + 0}, []value.Word{value.Int(10)})
	a := ScopeIndex('a')
	c.Define(a, []byte{byte(SlotX), verb('+'), byte(yslot)}, nil)
	out := runStream(t, c, []byte{byte(a), ByteLit + 0}, []value.Word{value.Int(4)})
	if len(out) != 1 || out[0] != value.Int(14) {
		t.Fatalf("a 4 = %v", out)
	}
	c.Teardown()
}
