// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse compiles one line of source into the compact
// byte-stream form the evaluator executes. Literals are materialized
// into the target scope's literal area at compile time; each token
// becomes a single byte in the stream.
package parse

import (
	"strconv"
	"strings"

	"github.com/thinpo/tik/exec"
	"github.com/thinpo/tik/scan"
	"github.com/thinpo/tik/value"
)

// Parser compiles lines into a Context's scopes.
type Parser struct {
	ctx *exec.Context
}

// NewParser returns a Parser targeting ctx.
func NewParser(ctx *exec.Context) *Parser {
	return &Parser{ctx: ctx}
}

// compilation state for one target scope.
type compiler struct {
	ctx   *exec.Context
	body  []byte
	lits  []value.Word
	depth int // paren/bracket nesting
}

func (k *compiler) emit(b byte) {
	k.body = append(k.body, b)
}

// addLit materializes a literal and emits its reference byte.
func (k *compiler) addLit(w value.Word) {
	if len(k.lits) >= exec.MaxLits {
		k.ctx.Mem().Release(w)
		k.fail()
	}
	k.emit(byte(exec.ByteLit + len(k.lits)))
	k.lits = append(k.lits, w)
}

func (k *compiler) fail() {
	for _, w := range k.lits {
		k.ctx.Mem().Release(w)
	}
	value.Errorf(" prs")
}

// Line compiles one line of source into the top scope, leaving it
// ready for the evaluator. Scope definitions (x::...) inside the line
// compile into their own scopes and contribute nothing to the top
// stream.
func (p *Parser) Line(src string) {
	s := scan.New(src)
	top := &compiler{ctx: p.ctx}
	tok := s.Next()
	for {
		if tok.Type == scan.EOF {
			break
		}
		tok = p.statement(s, top, tok)
		if tok.Type == scan.Semicolon {
			top.emit(exec.ByteSep)
			tok = s.Next()
			continue
		}
		if tok.Type != scan.EOF {
			top.fail()
		}
	}
	p.ctx.Define(exec.Top, top.body, top.lits)
}

// statement compiles one statement into k, stopping at ';' or EOF and
// returning the stopping token. A leading name:: redirects the rest of
// the statement into the named scope.
func (p *Parser) statement(s *scan.Scanner, k *compiler, tok scan.Token) scan.Token {
	if tok.Type == scan.Identifier {
		name := tok.Text[0]
		next := s.Next()
		switch next.Type {
		case scan.Define:
			return p.define(s, name)
		case scan.Assign:
			k.emit(byte(exec.ScopeIndex(name)))
			k.emit(exec.ByteAssign)
			tok = s.Next()
			if tok.Type == scan.Semicolon || tok.Type == scan.EOF {
				k.fail()
			}
			return p.expression(s, k, tok)
		default:
			k.emit(byte(exec.ScopeIndex(name)))
			return p.expression(s, k, next)
		}
	}
	return p.expression(s, k, tok)
}

// define compiles the body of name:: into that scope. The body may be
// wrapped in braces; an unbraced body ends at the first ';'.
func (p *Parser) define(s *scan.Scanner, name byte) scan.Token {
	k := &compiler{ctx: p.ctx}
	tok := s.Next()
	braced := tok.Type == scan.LeftBrace
	if braced {
		tok = s.Next()
	}
	for tok.Type != scan.EOF && tok.Type != scan.RightBrace {
		if tok.Type == scan.Semicolon {
			if !braced {
				break
			}
			k.emit(exec.ByteSep)
			tok = s.Next()
			continue
		}
		tok = p.statement(s, k, tok)
		if tok.Type == scan.Semicolon || tok.Type == scan.EOF || tok.Type == scan.RightBrace {
			continue
		}
		k.fail()
	}
	if braced != (tok.Type == scan.RightBrace) {
		k.fail()
	}
	if len(k.body) == 0 {
		k.fail()
	}
	p.ctx.Define(exec.ScopeIndex(name), k.body, k.lits)
	if braced {
		return s.Next()
	}
	return tok
}

// expression compiles tokens into k until ';', EOF, or an unbalanced
// closer, starting with tok.
func (p *Parser) expression(s *scan.Scanner, k *compiler, tok scan.Token) scan.Token {
	for {
		switch tok.Type {
		case scan.Semicolon, scan.EOF, scan.RightBrace:
			if k.depth != 0 {
				k.fail()
			}
			return tok
		case scan.Error:
			k.fail()
		case scan.Number:
			tok = p.numberRun(s, k, tok)
			continue
		case scan.String:
			k.addLit(p.byteLit(tok.Text))
		case scan.Symbol:
			tok = p.symbolRun(s, k, tok)
			continue
		case scan.Identifier:
			// An inner assignment target is a statement-level form.
			name := tok.Text[0]
			next := s.Next()
			if next.Type == scan.Assign || next.Type == scan.Define {
				k.fail()
			}
			k.emit(byte(exec.ScopeIndex(name)))
			tok = next
			continue
		case scan.Operator:
			text := tok.Text
			code, ok := value.VerbCode(text[0])
			if !ok {
				k.fail()
			}
			if strings.HasSuffix(text, "/") {
				k.emit(byte(exec.ByteFold + code))
			} else {
				k.emit(byte(exec.ByteVerb + code))
			}
		case scan.LeftParen:
			k.depth++
			k.emit(exec.ByteLParen)
		case scan.RightParen:
			k.depth--
			if k.depth < 0 {
				k.fail()
			}
			k.emit(exec.ByteRParen)
		case scan.LeftBrack:
			k.depth++
			k.emit(exec.ByteLBrack)
		case scan.RightBrack:
			k.depth--
			if k.depth < 0 {
				k.fail()
			}
			k.emit(exec.ByteRBrack)
		default:
			k.fail()
		}
		if len(k.body) > exec.MaxBody {
			k.fail()
		}
		tok = s.Next()
	}
}

// numberRun collects a run of numeric literals into a single constant:
// one atom, or an int or float array.
func (p *Parser) numberRun(s *scan.Scanner, k *compiler, tok scan.Token) scan.Token {
	texts := []string{tok.Text}
	tok = s.Next()
	for tok.Type == scan.Number {
		texts = append(texts, tok.Text)
		tok = s.Next()
	}
	isFloat := false
	for _, t := range texts {
		if strings.ContainsAny(t, ".e") {
			isFloat = true
			break
		}
	}
	m := p.ctx.Mem()
	if len(texts) == 1 {
		k.addLit(p.atomLit(texts[0], isFloat))
		return tok
	}
	if isFloat {
		w := m.Alloc(value.TagFloat, len(texts))
		d := m.Floats(w)
		for i, t := range texts {
			f, err := strconv.ParseFloat(t, 32)
			if err != nil {
				m.Release(w)
				k.fail()
			}
			d[i] = float32(f)
		}
		k.addLit(w)
		return tok
	}
	w := m.Alloc(value.TagInt, len(texts))
	d := m.Ints(w)
	for i, t := range texts {
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			m.Release(w)
			k.fail()
		}
		d[i] = int32(n)
	}
	k.addLit(w)
	return tok
}

func (p *Parser) atomLit(text string, isFloat bool) value.Word {
	if isFloat {
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			value.Errorf(" prs")
		}
		return value.Float(float32(f))
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		value.Errorf(" prs")
	}
	return value.Int(n)
}

func (p *Parser) byteLit(text string) value.Word {
	m := p.ctx.Mem()
	w := m.Alloc(value.TagByte, len(text))
	copy(m.Bytes(w), text)
	return w
}

// symbolRun collects a run of symbol literals: one atom or a symbol
// array.
func (p *Parser) symbolRun(s *scan.Scanner, k *compiler, tok scan.Token) scan.Token {
	names := []string{tok.Text}
	tok = s.Next()
	for tok.Type == scan.Symbol {
		names = append(names, tok.Text)
		tok = s.Next()
	}
	if len(names) == 1 {
		k.addLit(value.Sym(names[0]))
		return tok
	}
	m := p.ctx.Mem()
	w := m.Alloc(value.TagSym, len(names))
	d := m.Ints(w)
	for i, name := range names {
		d[i] = int32(uint32(value.Sym(name)))
	}
	k.addLit(w)
	return tok
}
