// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import "github.com/thinpo/tik/value"

// The evaluator. A byte-stream is scanned right to left with a single
// accumulator holding the current right-hand value. A verb byte
// combines the operand to its left (if there is one) with the
// accumulator; an assign marker stores the accumulator into the slot
// named by the byte before it; a variable byte met while the
// accumulator is full applies that scope's body as a user function.

// EvalTop evaluates the top scope's byte-stream, one statement at a
// time, passing each statement's value to emit. Assignment statements
// produce no value. emit owns the word it receives.
func (c *Context) EvalTop(emit func(value.Word)) {
	sc := &c.scopes[Top]
	body := sc.body[:sc.blen]
	for len(body) > 0 {
		seg := body
		if j := indexByte(body, ByteSep); j >= 0 {
			seg, body = body[:j], body[j+1:]
		} else {
			body = nil
		}
		if len(seg) == 0 {
			continue
		}
		v := c.evalSeg(Top, seg)
		if v == value.None {
			continue
		}
		if emit != nil {
			emit(v)
		} else {
			c.mem.Release(v)
		}
	}
}

// evalBody evaluates a scope body and returns the last statement's
// value, releasing the earlier ones.
func (c *Context) evalBody(scope int) value.Word {
	sc := &c.scopes[scope]
	body := sc.body[:sc.blen]
	last := value.None
	for len(body) > 0 {
		seg := body
		if j := indexByte(body, ByteSep); j >= 0 {
			seg, body = body[:j], body[j+1:]
		} else {
			body = nil
		}
		if len(seg) == 0 {
			continue
		}
		c.mem.Release(last)
		last = c.evalSeg(scope, seg)
	}
	return last
}

func indexByte(b []byte, x byte) int {
	for i, c := range b {
		if c == x {
			return i
		}
	}
	return -1
}

// evalSeg evaluates one statement. It returns None for an assignment.
func (c *Context) evalSeg(scope int, b []byte) value.Word {
	i := len(b) - 1
	acc := c.operand(scope, b, &i)
	for i >= 0 {
		t := b[i]
		switch {
		case t >= ByteVerb && t < ByteLit:
			i--
			if i >= 0 && operandEnd(b[i]) {
				left := c.operand(scope, b, &i)
				if t >= ByteFold {
					c.mem.Release(left)
					c.mem.Release(acc)
					value.Errorf("%c nyi", value.VerbGlyph(int(t-ByteFold)))
				}
				acc = value.Binary(c, left, int(t-ByteVerb), acc)
			} else if t >= ByteFold {
				acc = value.Fold(c, int(t-ByteFold), acc)
			} else {
				acc = value.Unary(c, int(t-ByteVerb), acc)
			}
		case t == ByteAssign:
			i--
			if i < 0 {
				c.mem.Release(acc)
				value.Errorf(" prs")
			}
			slot := int(b[i])
			i--
			if i >= 0 {
				c.mem.Release(acc)
				value.Errorf(" prs")
			}
			c.assign(scope, slot, acc)
			return value.None
		case t < NumSlots:
			// Juxtaposition: apply the named scope's body.
			i--
			acc = c.apply(int(t), acc)
		default:
			c.mem.Release(acc)
			value.Errorf(" prs")
		}
	}
	return acc
}

// operandEnd reports whether byte t can end an operand.
func operandEnd(t byte) bool {
	return t < NumSlots || (t >= ByteLit && t < ByteAssign) || t == ByteRParen || t == ByteRBrack
}

// operand consumes the operand ending at *i: a variable, a literal, a
// parenthesized group, or a bracket-indexed operand.
func (c *Context) operand(scope int, b []byte, i *int) value.Word {
	if *i < 0 {
		value.Errorf(" prs")
	}
	t := b[*i]
	switch {
	case t < NumSlots:
		*i--
		return c.loadVar(scope, int(t))
	case t >= ByteLit && t < ByteAssign:
		*i--
		sc := &c.scopes[scope]
		return c.mem.Retain(sc.lits[t-ByteLit])
	case t == ByteRParen:
		j := matchBack(b, *i, ByteLParen, ByteRParen)
		inner := b[j+1 : *i]
		*i = j - 1
		v := c.evalSeg(scope, inner)
		if v == value.None {
			value.Errorf(" prs")
		}
		return v
	case t == ByteRBrack:
		j := matchBack(b, *i, ByteLBrack, ByteRBrack)
		idx := c.evalSeg(scope, b[j+1:*i])
		if idx == value.None {
			value.Errorf(" prs")
		}
		*i = j - 1
		base := c.operand(scope, b, i)
		return value.Index(c, base, idx)
	}
	value.Errorf(" prs")
	return value.None
}

// matchBack finds the opener matching the closer at position i,
// scanning left and counting nesting.
func matchBack(b []byte, i int, open, close byte) int {
	depth := 0
	for j := i; j >= 0; j-- {
		switch b[j] {
		case close:
			depth++
		case open:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	value.Errorf(" prs")
	return -1
}

// apply calls scope s as a user function on argument x. The argument
// binds into the x slot of the callee's workspace; the previous
// binding is saved and restored so the call leaves no trace.
func (c *Context) apply(s int, x value.Word) value.Word {
	sc := &c.scopes[s]
	if sc.blen == 0 {
		c.mem.Release(x)
		value.Errorf("%c typ", byte('a'+s))
	}
	if sc.busy {
		c.mem.Release(x)
		value.Errorf("%c stk", byte('a'+s))
	}
	sc.busy = true
	saved := sc.vars[SlotX]
	sc.vars[SlotX] = x
	defer func() {
		c.mem.Release(sc.vars[SlotX])
		sc.vars[SlotX] = saved
		sc.busy = false
	}()
	return c.evalBody(s)
}
