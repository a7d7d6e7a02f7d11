// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

// Dyadic dispatch. As with the monadic table, every op consumes both
// operand references and returns an owned result. The result type of
// an element-wise op is the wider operand type, after bit and byte
// widen to int; comparisons always produce ints.

var binaryOps [NumVerbs]func(c Context, g byte, l, r Word) Word

// Binary evaluates a dyadic verb.
func Binary(c Context, l Word, code int, r Word) Word {
	g := VerbGlyph(code)
	if code >= NumVerbs || binaryOps[code] == nil {
		m := c.Mem()
		m.Release(l)
		m.Release(r)
		throw(g, errNYI)
	}
	return binaryOps[code](c, g, l, r)
}

// Index evaluates the bracket form l[r]; it is the index verb.
func Index(c Context, l, r Word) Word {
	return indexOp(c, '@', l, r)
}

func init() {
	binaryOps[vPlus] = func(c Context, g byte, l, r Word) Word { return dyadNum(c, g, l, r, &addK) }
	binaryOps[vMinus] = func(c Context, g byte, l, r Word) Word { return dyadNum(c, g, l, r, &subK) }
	binaryOps[vTimes] = func(c Context, g byte, l, r Word) Word { return dyadNum(c, g, l, r, &mulK) }
	binaryOps[vDivide] = divOp
	binaryOps[vBang] = modOp
	binaryOps[vAmp] = func(c Context, g byte, l, r Word) Word { return dyadNum(c, g, l, r, &minK) }
	binaryOps[vPipe] = func(c Context, g byte, l, r Word) Word { return dyadNum(c, g, l, r, &maxK) }
	binaryOps[vLess] = func(c Context, g byte, l, r Word) Word { return dyadNum(c, g, l, r, &ltK) }
	binaryOps[vGreater] = func(c Context, g byte, l, r Word) Word { return dyadNum(c, g, l, r, &gtK) }
	binaryOps[vEqual] = func(c Context, g byte, l, r Word) Word { return dyadNum(c, g, l, r, &eqK) }
	binaryOps[vComma] = concatOp
	binaryOps[vHash] = reshapeOp
	binaryOps[vUnder] = dropOp
	binaryOps[vDollar] = castOp
	binaryOps[vAt] = indexOp
	binaryOps[vDot] = dotOp
}

// dyadKernels bundles the kernel forms of one element-wise verb.
// cmp marks comparisons, whose float forms write int results.
type dyadKernels struct {
	cmp bool

	ii func(dst, x, y []int32)
	is func(dst, x []int32, s int32)
	si func(dst []int32, s int32, y []int32)
	ai func(x, y int64) int64

	ff func(dst, x, y []float32)
	fs func(dst, x []float32, s float32)
	sf func(dst []float32, s float32, y []float32)
	af func(x, y float32) float32

	ffc func(dst []int32, x, y []float32)
	fsc func(dst []int32, x []float32, s float32)
	sfc func(dst []int32, s float32, y []float32)
	afc func(x, y float32) int64

	// check vets the divisor side before the kernel runs.
	check func(g byte, l, r Word, m *Mem)
}

var (
	addK = dyadKernels{
		ii: addI, is: addIS, si: func(dst []int32, s int32, y []int32) { addIS(dst, y, s) },
		ai: func(x, y int64) int64 { return x + y },
		ff: addF, fs: addFS, sf: func(dst []float32, s float32, y []float32) { addFS(dst, y, s) },
		af: func(x, y float32) float32 { return x + y },
	}
	subK = dyadKernels{
		ii: subI, is: subIS, si: subSI,
		ai: func(x, y int64) int64 { return x - y },
		ff: subF, fs: subFS, sf: subSF,
		af: func(x, y float32) float32 { return x - y },
	}
	mulK = dyadKernels{
		ii: mulI, is: mulIS, si: func(dst []int32, s int32, y []int32) { mulIS(dst, y, s) },
		ai: func(x, y int64) int64 { return x * y },
		ff: mulF, fs: mulFS, sf: func(dst []float32, s float32, y []float32) { mulFS(dst, y, s) },
		af: func(x, y float32) float32 { return x * y },
	}
	divK = dyadKernels{
		ii: divI, is: divIS, si: divSI,
		ai: func(x, y int64) int64 { return int64(floorDiv(int32(x), int32(y))) },
		ff: divF, fs: divFS, sf: divSF,
		af: func(x, y float32) float32 { return x / y },
		check: checkIntDivisor,
	}
	modK = dyadKernels{
		ii: modI, is: modIS, si: modSI,
		ai: func(x, y int64) int64 { return int64(floorMod(int32(x), int32(y))) },
		check: checkIntDivisor,
	}
	minK = dyadKernels{
		ii: minI, is: minIS, si: func(dst []int32, s int32, y []int32) { minIS(dst, y, s) },
		ai: func(x, y int64) int64 { return min(x, y) },
		ff: minF, fs: minFS, sf: func(dst []float32, s float32, y []float32) { minFS(dst, y, s) },
		af: func(x, y float32) float32 { return min(x, y) },
	}
	maxK = dyadKernels{
		ii: maxI, is: maxIS, si: func(dst []int32, s int32, y []int32) { maxIS(dst, y, s) },
		ai: func(x, y int64) int64 { return max(x, y) },
		ff: maxF, fs: maxFS, sf: func(dst []float32, s float32, y []float32) { maxFS(dst, y, s) },
		af: func(x, y float32) float32 { return max(x, y) },
	}
	ltK = dyadKernels{
		cmp: true,
		ii:  ltI, is: ltIS, si: ltSI,
		ai:  func(x, y int64) int64 { return b2i64(x < y) },
		ffc: ltF, fsc: ltFS, sfc: ltSF,
		afc: func(x, y float32) int64 { return b2i64(x < y) },
	}
	gtK = dyadKernels{
		cmp: true,
		ii:  gtI, is: gtIS, si: gtSI,
		ai:  func(x, y int64) int64 { return b2i64(x > y) },
		ffc: gtF, fsc: gtFS, sfc: gtSF,
		afc: func(x, y float32) int64 { return b2i64(x > y) },
	}
	eqK = dyadKernels{
		cmp: true,
		ii:  eqI, is: eqIS, si: func(dst []int32, s int32, y []int32) { eqIS(dst, y, s) },
		ai:  func(x, y int64) int64 { return b2i64(x == y) },
		ffc: eqF, fsc: eqFS, sfc: func(dst []int32, s float32, y []float32) { eqFS(dst, y, s) },
		afc: func(x, y float32) int64 { return b2i64(x == y) },
	}
)

func b2i64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func divOp(c Context, g byte, l, r Word) Word {
	m := c.Mem()
	// A unit left operand over a float array is the reciprocal kernel.
	if !l.Boxed() && numeric(l.Tag()) && r.Boxed() && r.Tag() == tagFloat && atomF32(g, l) == 1 {
		dst := allocLike(m, tagFloat, r)
		x, d := m.Floats(r), m.Floats(dst)
		m.par.run(r.Count(), func(lo, hi int) { recipF(d[lo:hi], x[lo:hi]) })
		m.Release(l)
		m.Release(r)
		return dst
	}
	return dyadNum(c, g, l, r, &divK)
}

func modOp(c Context, g byte, l, r Word) Word {
	m := c.Mem()
	if commonTagReleasing(c, g, l, r) == tagFloat {
		m.Release(l)
		m.Release(r)
		throw(g, errType)
	}
	return dyadNum(c, g, l, r, &modK)
}

// checkIntDivisor rejects a zero divisor before an integer divide or
// modulo kernel runs, so the kernels stay splittable.
func checkIntDivisor(g byte, l, r Word, m *Mem) {
	if r.Boxed() {
		if r.Tag() == tagInt && anyZeroI(m.Ints(r)) {
			throw(g, errDomain)
		}
		return
	}
	if r.Tag() != tagFloat && atomI64(g, r) == 0 {
		throw(g, errDomain)
	}
}

// dyadNum drives an element-wise dyad over every atom/array
// combination, broadcasting atomic operands.
func dyadNum(c Context, g byte, l, r Word, k *dyadKernels) Word {
	m := c.Mem()
	ct := commonTagReleasing(c, g, l, r)
	if ct == tagFloat && k.ff == nil && k.ffc == nil {
		m.Release(l)
		m.Release(r)
		throw(g, errType)
	}

	// Promote both sides to the common type; lc/rc are owned.
	lc := convert(c, g, l, ct)
	rc := convert(c, g, r, ct)
	m.Release(l)
	m.Release(r)
	if k.check != nil {
		func() {
			defer func() {
				if e := recover(); e != nil {
					m.Release(lc)
					m.Release(rc)
					panic(e)
				}
			}()
			k.check(g, lc, rc, m)
		}()
	}

	resTag := ct
	if k.cmp {
		resTag = tagInt
	}

	switch {
	case !lc.Boxed() && !rc.Boxed():
		if ct == tagFloat {
			if k.cmp {
				return Int(k.afc(lc.FloatVal(), rc.FloatVal()))
			}
			return Float(k.af(lc.FloatVal(), rc.FloatVal()))
		}
		return Int(k.ai(lc.IntVal(), rc.IntVal()))

	case lc.Boxed() && rc.Boxed():
		if lc.Count() != rc.Count() {
			m.Release(lc)
			m.Release(rc)
			throw(g, errLength)
		}
		if lc.Rows() != rc.Rows() {
			m.Release(lc)
			m.Release(rc)
			throw(g, errRank)
		}
		dst := allocLike(m, resTag, lc)
		n := lc.Count()
		if ct == tagFloat {
			x, y := m.Floats(lc), m.Floats(rc)
			if k.cmp {
				d := m.Ints(dst)
				m.par.run(n, func(lo, hi int) { k.ffc(d[lo:hi], x[lo:hi], y[lo:hi]) })
			} else {
				d := m.Floats(dst)
				m.par.run(n, func(lo, hi int) { k.ff(d[lo:hi], x[lo:hi], y[lo:hi]) })
			}
		} else {
			x, y, d := m.Ints(lc), m.Ints(rc), m.Ints(dst)
			m.par.run(n, func(lo, hi int) { k.ii(d[lo:hi], x[lo:hi], y[lo:hi]) })
		}
		m.Release(lc)
		m.Release(rc)
		return dst

	case lc.Boxed(): // array ∘ scalar
		dst := allocLike(m, resTag, lc)
		n := lc.Count()
		if ct == tagFloat {
			x, s := m.Floats(lc), rc.FloatVal()
			if k.cmp {
				d := m.Ints(dst)
				m.par.run(n, func(lo, hi int) { k.fsc(d[lo:hi], x[lo:hi], s) })
			} else {
				d := m.Floats(dst)
				m.par.run(n, func(lo, hi int) { k.fs(d[lo:hi], x[lo:hi], s) })
			}
		} else {
			x, s, d := m.Ints(lc), int32(rc.IntVal()), m.Ints(dst)
			m.par.run(n, func(lo, hi int) { k.is(d[lo:hi], x[lo:hi], s) })
		}
		m.Release(lc)
		return dst

	default: // scalar ∘ array
		dst := allocLike(m, resTag, rc)
		n := rc.Count()
		if ct == tagFloat {
			s, y := lc.FloatVal(), m.Floats(rc)
			if k.cmp {
				d := m.Ints(dst)
				m.par.run(n, func(lo, hi int) { k.sfc(d[lo:hi], s, y[lo:hi]) })
			} else {
				d := m.Floats(dst)
				m.par.run(n, func(lo, hi int) { k.sf(d[lo:hi], s, y[lo:hi]) })
			}
		} else {
			s, y, d := int32(lc.IntVal()), m.Ints(rc), m.Ints(dst)
			m.par.run(n, func(lo, hi int) { k.si(d[lo:hi], s, y[lo:hi]) })
		}
		m.Release(rc)
		return dst
	}
}

// commonTagReleasing is commonTag, releasing the operands on a type
// error so dispatch paths stay balanced.
func commonTagReleasing(c Context, g byte, l, r Word) int {
	if !numeric(l.Tag()) || !numeric(r.Tag()) {
		m := c.Mem()
		m.Release(l)
		m.Release(r)
		throw(g, errType)
	}
	return maxTag(maxTag(l.Tag(), r.Tag()), tagInt)
}
