// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "math"

// Monadic dispatch. Every op consumes its operand reference and
// returns an owned result. To avoid initialization cycles when the ops
// refer to the dispatch entry, the table is built in an init function.

var unaryOps [NumVerbs]func(c Context, g byte, r Word) Word

// Unary evaluates a monadic verb.
func Unary(c Context, code int, r Word) Word {
	g := VerbGlyph(code)
	if code >= NumVerbs || unaryOps[code] == nil {
		c.Mem().Release(r)
		throw(g, errNYI)
	}
	return unaryOps[code](c, g, r)
}

func init() {
	unaryOps[vPlus] = transposeOp
	unaryOps[vMinus] = negOp
	unaryOps[vTimes] = firstOp
	unaryOps[vDivide] = sqrtOp
	unaryOps[vBang] = iotaOp
	unaryOps[vAmp] = whereOp
	unaryOps[vPipe] = reverseOp
	unaryOps[vLess] = func(c Context, g byte, r Word) Word { return gradeOp(c, g, r, true) }
	unaryOps[vGreater] = func(c Context, g byte, r Word) Word { return gradeOp(c, g, r, false) }
	unaryOps[vEqual] = softmaxOp
	unaryOps[vTilde] = notOp
	unaryOps[vComma] = enlistOp
	unaryOps[vCaret] = expOp
	unaryOps[vHash] = countOp
	unaryOps[vUnder] = floorOp
	unaryOps[vDollar] = formatOp
	unaryOps[vQuery] = randOp
	unaryOps[vAt] = absOp
	unaryOps[vDot] = rmsNormOp
}

// monadNum drives a numeric elementwise monad: floats stay floats,
// everything else runs through the int kernel. Bit and byte arrays
// widen to int first.
func monadNum(c Context, g byte, r Word,
	ai func(int64) Word, af func(float32) Word,
	ki func(dst, x []int32), kf func(dst, x []float32)) Word {
	m := c.Mem()
	if !r.Boxed() {
		if r.Tag() == tagFloat {
			return af(r.FloatVal())
		}
		return ai(atomI64(g, r))
	}
	if r.Tag() == tagFloat {
		dst := allocLike(m, tagFloat, r)
		x, d := m.Floats(r), m.Floats(dst)
		m.par.run(r.Count(), func(lo, hi int) { kf(d[lo:hi], x[lo:hi]) })
		m.Release(r)
		return dst
	}
	t := convert(c, g, r, tagInt)
	m.Release(r)
	dst := allocLike(m, tagInt, t)
	x, d := m.Ints(t), m.Ints(dst)
	m.par.run(t.Count(), func(lo, hi int) { ki(d[lo:hi], x[lo:hi]) })
	m.Release(t)
	return dst
}

func negOp(c Context, g byte, r Word) Word {
	return monadNum(c, g, r,
		func(i int64) Word { return Int(-i) },
		func(f float32) Word { return Float(-f) },
		negI, negF)
}

func absOp(c Context, g byte, r Word) Word {
	return monadNum(c, g, r,
		func(i int64) Word {
			if i < 0 {
				i = -i
			}
			return Int(i)
		},
		func(f float32) Word { return Float(float32(math.Abs(float64(f)))) },
		absI, absF)
}

func notOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if !r.Boxed() {
		if atomTruth(g, r) {
			return Int(0)
		}
		return Int(1)
	}
	if r.Tag() == tagFloat {
		dst := allocLike(m, tagInt, r)
		x, d := m.Floats(r), m.Ints(dst)
		m.par.run(r.Count(), func(lo, hi int) { notF(d[lo:hi], x[lo:hi]) })
		m.Release(r)
		return dst
	}
	t := convert(c, g, r, tagInt)
	m.Release(r)
	dst := allocLike(m, tagInt, t)
	x, d := m.Ints(t), m.Ints(dst)
	m.par.run(t.Count(), func(lo, hi int) { notI(d[lo:hi], x[lo:hi]) })
	m.Release(t)
	return dst
}

// floatMonad drives a float-only elementwise monad; other numeric
// operands convert to float first.
func floatMonad(c Context, g byte, r Word, af func(float32) float32, kf func(dst, x []float32)) Word {
	m := c.Mem()
	if !r.Boxed() {
		return Float(af(atomF32(g, r)))
	}
	t := convert(c, g, r, tagFloat)
	m.Release(r)
	dst := allocLike(m, tagFloat, t)
	x, d := m.Floats(t), m.Floats(dst)
	m.par.run(t.Count(), func(lo, hi int) { kf(d[lo:hi], x[lo:hi]) })
	m.Release(t)
	return dst
}

func sqrtOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if r.Boxed() && r.Tag() == tagFloat && anyNegF(m.Floats(r)) {
		m.Release(r)
		throw(g, errDomain)
	}
	if !r.Boxed() && atomF32(g, r) < 0 {
		throw(g, errDomain)
	}
	return floatMonad(c, g, r,
		func(f float32) float32 { return float32(math.Sqrt(float64(f))) },
		sqrtF)
}

func expOp(c Context, g byte, r Word) Word {
	return floatMonad(c, g, r,
		func(f float32) float32 {
			var o, x [1]float32
			x[0] = f
			expF(o[:], x[:])
			return o[0]
		},
		expF)
}

func floorOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if !r.Boxed() {
		if r.Tag() == tagFloat {
			return Int(int64(math.Floor(float64(r.FloatVal()))))
		}
		return Int(atomI64(g, r))
	}
	if r.Tag() == tagFloat {
		// Round down before the truncating conversion.
		t := allocLike(m, tagFloat, r)
		x, d := m.Floats(r), m.Floats(t)
		m.par.run(r.Count(), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				d[i] = float32(math.Floor(float64(x[i])))
			}
		})
		m.Release(r)
		dst := convert(c, g, t, tagInt)
		m.Release(t)
		return dst
	}
	dst := convert(c, g, r, tagInt)
	m.Release(r)
	return dst
}

func iotaOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if r.IsMatrix() {
		return diagOp(c, g, r)
	}
	if r.Boxed() {
		m.Release(r)
		throw(g, errRank)
	}
	n := atomI64(g, r)
	if n < 0 || n > maxCount {
		throw(g, errDomain)
	}
	dst := m.Alloc(tagInt, int(n))
	d := m.Ints(dst)
	m.par.run(int(n), func(lo, hi int) { iotaI(d[lo:hi], int32(lo)) })
	return dst
}

func diagOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	u, v := r.Rows(), r.Cols()
	switch r.Tag() {
	case tagInt:
		dst := m.Alloc(tagInt, min(u, v))
		diagI(m.Ints(dst), m.Ints(r), u, v)
		m.Release(r)
		return dst
	case tagFloat:
		dst := m.Alloc(tagFloat, min(u, v))
		diagF(m.Floats(dst), m.Floats(r), u, v)
		m.Release(r)
		return dst
	}
	m.Release(r)
	throw(g, errType)
	return None
}

func whereOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if !r.Boxed() {
		m.Release(r)
		throw(g, errRank)
	}
	t := convert(c, g, r, tagInt)
	m.Release(r)
	x := m.Ints(t)
	total := 0
	for _, v := range x {
		if v < 0 {
			m.Release(t)
			throw(g, errDomain)
		}
		total += int(v)
	}
	dst := m.Alloc(tagInt, total)
	d := m.Ints(dst)
	k := 0
	for i, v := range x {
		for ; v > 0; v-- {
			d[k] = int32(i)
			k++
		}
	}
	m.Release(t)
	return dst
}

func reverseOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if !r.Boxed() {
		return r
	}
	if r.IsMatrix() {
		m.Release(r)
		throw(g, errNYI)
	}
	n := r.Count()
	dst := m.Alloc(r.Tag(), n)
	switch r.Tag() {
	case tagBit:
		reverseBits(m.Bits(dst), m.Bits(r), n)
	case tagByte:
		reverseB(m.Bytes(dst), m.Bytes(r))
	case tagInt, tagSym:
		reverseI(m.Ints(dst), m.Ints(r))
	case tagFloat:
		reverseF(m.Floats(dst), m.Floats(r))
	case tagMixed:
		reverseW(m.Words(dst), m.Words(r))
		for _, e := range m.Words(dst) {
			m.Retain(e)
		}
	}
	m.Release(r)
	return dst
}

func gradeOp(c Context, g byte, r Word, up bool) Word {
	m := c.Mem()
	if !r.Boxed() || r.IsMatrix() {
		m.Release(r)
		throw(g, errRank)
	}
	dst := m.Alloc(tagInt, r.Count())
	switch r.Tag() {
	case tagByte:
		gradeBytes(m.Ints(dst), m.Bytes(r), up)
	case tagInt:
		gradeI(m.Ints(dst), m.Ints(r), up)
	case tagFloat:
		gradeF(m.Ints(dst), m.Floats(r), up)
	case tagBit:
		t := convert(c, g, r, tagInt)
		gradeI(m.Ints(dst), m.Ints(t), up)
		m.Release(t)
	default:
		m.Release(dst)
		m.Release(r)
		throw(g, errType)
	}
	m.Release(r)
	return dst
}

func firstOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if !r.Boxed() {
		return r
	}
	if r.Count() == 0 {
		m.Release(r)
		throw(g, errIndex)
	}
	var a Word
	switch r.Tag() {
	case tagBit:
		a = Bit(m.Bits(r)[0] & 1)
	case tagByte:
		a = Byte(m.Bytes(r)[0])
	case tagInt:
		a = Int(int64(m.Ints(r)[0]))
	case tagSym:
		a = atom(tagSym, uint64(uint32(m.Ints(r)[0])))
	case tagFloat:
		a = Float(m.Floats(r)[0])
	case tagMixed:
		a = m.Retain(m.Words(r)[0])
	}
	m.Release(r)
	return a
}

func countOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	n := int64(1)
	if r.Boxed() {
		if r.IsMatrix() {
			n = int64(r.Rows())
		} else {
			n = int64(r.Count())
		}
	}
	m.Release(r)
	return Int(n)
}

func enlistOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if r.Boxed() {
		dst := m.Alloc(tagMixed, 1)
		m.Words(dst)[0] = r // transfer the reference
		return dst
	}
	tag := r.Tag()
	dst := m.Alloc(tag, 1)
	switch tag {
	case tagBit:
		m.Bits(dst)[0] = r.BitVal()
	case tagByte:
		m.Bytes(dst)[0] = r.ByteVal()
	case tagInt:
		m.Ints(dst)[0] = int32(r.IntVal())
	case tagSym:
		m.Ints(dst)[0] = int32(uint32(r))
	case tagFloat:
		m.Floats(dst)[0] = r.FloatVal()
	}
	return dst
}

func transposeOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if !r.IsMatrix() {
		return r
	}
	u, v := r.Rows(), r.Cols()
	dst := m.AllocMatrix(r.Tag(), v, u)
	switch r.Tag() {
	case tagInt, tagSym:
		transposeI(m.Ints(dst), m.Ints(r), u, v)
	case tagFloat:
		transposeF(m.Floats(dst), m.Floats(r), u, v)
	case tagByte:
		transposeBytes(m.Bytes(dst), m.Bytes(r), u, v)
	case tagBit:
		if u%64 != 0 || v%64 != 0 {
			m.Release(dst)
			m.Release(r)
			throw(g, errNYI)
		}
		transposeBits(m.Bits(dst), m.Bits(r), u, v)
	default:
		m.Release(dst)
		m.Release(r)
		throw(g, errType)
	}
	m.Release(r)
	return dst
}

func softmaxOp(c Context, g byte, r Word) Word {
	return rowwiseFloat(c, g, r, softmaxF)
}

func rmsNormOp(c Context, g byte, r Word) Word {
	return rowwiseFloat(c, g, r, rmsNormF)
}

// rowwiseFloat applies a whole-row float kernel to a vector, or to
// each row of a matrix with the rows split across workers.
func rowwiseFloat(c Context, g byte, r Word, kern func(dst, z []float32)) Word {
	m := c.Mem()
	if !r.Boxed() {
		m.Release(r)
		throw(g, errRank)
	}
	t := convert(c, g, r, tagFloat)
	m.Release(r)
	dst := allocLike(m, tagFloat, t)
	x, d := m.Floats(t), m.Floats(dst)
	if t.IsMatrix() {
		v := t.Cols()
		m.par.run(t.Rows(), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				kern(d[i*v:(i+1)*v], x[i*v:(i+1)*v])
			}
		})
	} else {
		kern(d, x)
	}
	m.Release(t)
	return dst
}

func randOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	if r.Boxed() {
		m.Release(r)
		throw(g, errRank)
	}
	n := atomI64(g, r)
	if n < 0 || n > maxCount {
		throw(g, errDomain)
	}
	dst := m.Alloc(tagFloat, int(n))
	m.randFloats(c.Config().Seed(), m.Floats(dst))
	return dst
}

func formatOp(c Context, g byte, r Word) Word {
	m := c.Mem()
	s := Sprint(c, r)
	m.Release(r)
	dst := m.Alloc(tagByte, len(s))
	copy(m.Bytes(dst), s)
	return dst
}
