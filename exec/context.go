// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package exec holds the execution context: the 27 scopes with their
// workspaces and compiled byte-streams, and the evaluator that walks a
// byte-stream right to left.
package exec

import (
	"strings"

	"github.com/thinpo/tik/config"
	"github.com/thinpo/tik/value"
)

// Byte-stream encoding. Bytes below NumSlots name workspace slots,
// 32..63 are verb codes, 64..95 folded verb codes, 96..127 literal
// references, and the markers follow.
const (
	NumSlots = 32 // workspace slots per scope; letters fill 0..25
	MaxLits  = 32 // literal slots per scope
	MaxBody  = 256

	ByteVerb   = 32
	ByteFold   = 64
	ByteLit    = 96
	ByteAssign = 128
	ByteLParen = 129
	ByteRParen = 130
	ByteLBrack = 131
	ByteRBrack = 132
	ByteSep    = 133
)

// NumScopes scopes are indexed by letter; Top is the interactive one.
const (
	NumScopes = 27
	Top       = 26
)

// SlotX is the workspace slot of x, the implicit argument of a user
// function.
const SlotX = 'x' - 'a'

// ScopeIndex maps a scope letter to its index.
func ScopeIndex(letter byte) int {
	return int(letter - 'a')
}

// Scope is one named storage area: 32 variable slots, the literal
// area its compiled body refers to, and the body itself.
type Scope struct {
	vars [NumSlots]value.Word
	lits [MaxLits]value.Word
	nlit int
	body [MaxBody]byte
	blen int
	busy bool // on the call stack
}

// Context holds the interpreter's execution state: the memory core and
// the scopes. It is the only implementation of value.Context.
type Context struct {
	conf   *config.Config
	mem    *value.Mem
	scopes [NumScopes]Scope
}

// NewContext returns a fresh execution context.
func NewContext(conf *config.Config) *Context {
	return &Context{
		conf: conf,
		mem:  value.NewMem(conf.Workers()),
	}
}

func (c *Context) Config() *config.Config {
	return c.conf
}

func (c *Context) Mem() *value.Mem {
	return c.mem
}

// Var returns the current binding of a slot, without retaining it.
func (c *Context) Var(scope, slot int) value.Word {
	return c.scopes[scope].vars[slot]
}

// Define installs a compiled body and its literals into a scope,
// releasing the previous literals. Redefining a scope that is on the
// call stack is rejected.
func (c *Context) Define(scope int, body []byte, lits []value.Word) {
	sc := &c.scopes[scope]
	if sc.busy {
		for _, w := range lits {
			c.mem.Release(w)
		}
		value.Errorf(" stk")
	}
	if len(body) > MaxBody || len(lits) > MaxLits {
		for _, w := range lits {
			c.mem.Release(w)
		}
		value.Errorf(" prs")
	}
	for i := 0; i < sc.nlit; i++ {
		c.mem.Release(sc.lits[i])
		sc.lits[i] = value.None
	}
	copy(sc.body[:], body)
	sc.blen = len(body)
	copy(sc.lits[:], lits)
	sc.nlit = len(lits)
}

// Defined reports whether a scope has a compiled body.
func (c *Context) Defined(scope int) bool {
	return c.scopes[scope].blen > 0
}

// assign rebinds a slot, releasing the old value. The new reference
// transfers to the workspace.
func (c *Context) assign(scope, slot int, w value.Word) {
	sc := &c.scopes[scope]
	c.mem.Release(sc.vars[slot])
	sc.vars[slot] = w
}

// loadVar retains and returns a slot's binding, falling back to the
// top scope when the local slot is empty.
func (c *Context) loadVar(scope, slot int) value.Word {
	w := c.scopes[scope].vars[slot]
	if w == value.None && scope != Top {
		w = c.scopes[Top].vars[slot]
	}
	if w == value.None {
		value.Errorf("%c dom", byte('a'+slot))
	}
	return c.mem.Retain(w)
}

// VarNames returns the letters of the top-scope variables and of the
// scopes with bodies, for the \v meta-command.
func (c *Context) VarNames() string {
	var b strings.Builder
	for i := 0; i < 26; i++ {
		if c.scopes[Top].vars[i] != value.None || c.Defined(i) {
			b.WriteByte(byte('a' + i))
		}
	}
	return b.String()
}

// Teardown releases every workspace binding and literal in every
// scope. After it returns, all handles are free.
func (c *Context) Teardown() {
	for s := range c.scopes {
		sc := &c.scopes[s]
		for i := range sc.vars {
			c.mem.Release(sc.vars[i])
			sc.vars[i] = value.None
		}
		for i := 0; i < sc.nlit; i++ {
			c.mem.Release(sc.lits[i])
			sc.lits[i] = value.None
		}
		sc.nlit = 0
		sc.blen = 0
	}
}
