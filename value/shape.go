// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

// Structural dyads: concatenate, reshape/take, drop, cast, index, dot.

// elemSize returns the byte size of one element; bits are handled
// separately by their callers.
func elemSize(tag int) int {
	return widthBits[tag] / 8
}

// asArray boxes an atom into a one-element array of its own tag;
// arrays pass through. The result is owned.
func asArray(c Context, w Word) Word {
	if w.Boxed() {
		return w
	}
	return enlistOp(c, ',', w)
}

// atomWordAt returns element i of a non-bit array as an atomic word.
// For mixed arrays the element is retained.
func atomWordAt(m *Mem, w Word, i int) Word {
	switch w.Tag() {
	case tagBit:
		return Bit(m.Bits(w)[i>>6] >> (i & 63) & 1)
	case tagByte:
		return Byte(m.Bytes(w)[i])
	case tagInt:
		return Int(int64(m.Ints(w)[i]))
	case tagSym:
		return atom(tagSym, uint64(uint32(m.Ints(w)[i])))
	case tagFloat:
		return Float(m.Floats(w)[i])
	}
	return m.Retain(m.Words(w)[i])
}

// setAtomAt stores an atomic word into element i of a non-bit array of
// the atom's tag. Mixed arrays take the reference as given.
func setAtomAt(m *Mem, dst Word, i int, a Word) {
	switch dst.Tag() {
	case tagBit:
		if a.BitVal() != 0 {
			m.Bits(dst)[i>>6] |= 1 << (i & 63)
		}
	case tagByte:
		m.Bytes(dst)[i] = a.ByteVal()
	case tagInt:
		m.Ints(dst)[i] = int32(a.IntVal())
	case tagSym:
		m.Ints(dst)[i] = int32(uint32(a))
	case tagFloat:
		m.Floats(dst)[i] = a.FloatVal()
	case tagMixed:
		m.Words(dst)[i] = a
	}
}

func concatOp(c Context, g byte, l, r Word) Word {
	m := c.Mem()
	la := asArray(c, l)
	ra := asArray(c, r)
	lt, rt := la.Tag(), ra.Tag()
	n1, n2 := la.Count(), ra.Count()

	switch {
	case lt == rt && lt != tagMixed && lt != tagBit:
		dst := m.Alloc(lt, n1+n2)
		sz := elemSize(lt)
		copy(m.base(dst), m.base(la)[:n1*sz])
		copy(m.base(dst)[n1*sz:], m.base(ra)[:n2*sz])
		m.Release(la)
		m.Release(ra)
		return dst

	case numeric(lt) && numeric(rt):
		ct := maxTag(maxTag(lt, rt), tagInt)
		lc := convert(c, g, la, ct)
		rc := convert(c, g, ra, ct)
		m.Release(la)
		m.Release(ra)
		res := concatOp(c, g, lc, rc)
		return res

	default:
		// Mixed join: the items of each side become elements.
		dst := m.Alloc(tagMixed, n1+n2)
		d := m.Words(dst)
		for i := 0; i < n1; i++ {
			d[i] = atomWordAt(m, la, i)
		}
		for i := 0; i < n2; i++ {
			d[n1+i] = atomWordAt(m, ra, i)
		}
		m.Release(la)
		m.Release(ra)
		return dst
	}
}

// reshapeOp is dyadic #: an atomic left count takes (cycling, negative
// counts take from the end); a two-item left shape builds a matrix.
func reshapeOp(c Context, g byte, l, r Word) Word {
	m := c.Mem()
	if !l.Boxed() {
		n := atomI64(g, l)
		return takeN(c, g, int(n), r)
	}
	if l.Tag() != tagInt || l.Count() != 2 {
		m.Release(l)
		m.Release(r)
		throw(g, errRank)
	}
	u, v := int(m.Ints(l)[0]), int(m.Ints(l)[1])
	m.Release(l)
	if u < 0 || v < 0 {
		m.Release(r)
		throw(g, errDomain)
	}
	ra := asArray(c, r)
	if ra.Count() == 0 {
		m.Release(ra)
		throw(g, errLength)
	}
	dst := m.AllocMatrix(ra.Tag(), u, v)
	fillCycle(m, dst, ra, u*v)
	m.Release(ra)
	return dst
}

func takeN(c Context, g byte, n int, r Word) Word {
	m := c.Mem()
	fromEnd := false
	if n < 0 {
		n, fromEnd = -n, true
	}
	ra := asArray(c, r)
	if ra.Count() == 0 && n > 0 {
		m.Release(ra)
		throw(g, errLength)
	}
	dst := m.Alloc(ra.Tag(), n)
	if fromEnd {
		src := ra.Count()
		off := (src - n%src) % src
		for i := 0; i < n; i++ {
			setAtomAt(m, dst, i, atomWordAt(m, ra, (off+i)%src))
		}
	} else {
		fillCycle(m, dst, ra, n)
	}
	m.Release(ra)
	return dst
}

// fillCycle fills the first n elements of dst from src, cycling.
func fillCycle(m *Mem, dst, src Word, n int) {
	sn := src.Count()
	for i := 0; i < n; i++ {
		setAtomAt(m, dst, i, atomWordAt(m, src, i%sn))
	}
}

func dropOp(c Context, g byte, l, r Word) Word {
	m := c.Mem()
	if l.Boxed() || r.IsMatrix() {
		m.Release(l)
		m.Release(r)
		throw(g, errRank)
	}
	n := int(atomI64(g, l))
	ra := asArray(c, r)
	cnt := ra.Count()
	fromEnd := false
	if n < 0 {
		n, fromEnd = -n, true
	}
	if n > cnt {
		n = cnt
	}
	dst := m.Alloc(ra.Tag(), cnt-n)
	off := n
	if fromEnd {
		off = 0
	}
	for i := 0; i < cnt-n; i++ {
		setAtomAt(m, dst, i, atomWordAt(m, ra, off+i))
	}
	m.Release(ra)
	return dst
}

// castOp is dyadic $: the left symbol names the target type.
func castOp(c Context, g byte, l, r Word) Word {
	m := c.Mem()
	if l.Boxed() || l.Tag() != tagSym {
		m.Release(l)
		m.Release(r)
		throw(g, errType)
	}
	var tag int
	switch l.SymVal() {
	case "b":
		tag = tagBit
	case "c":
		tag = tagByte
	case "i":
		tag = tagInt
	case "f":
		tag = tagFloat
	default:
		m.Release(r)
		throw(g, errDomain)
	}
	dst := convert(c, g, r, tag)
	m.Release(r)
	return dst
}

// indexOp is dyadic @ and the bracket form: gather r out of l. An
// atomic index yields an atom; an index array yields an array of the
// index's shape. Out-of-range indices raise idx.
func indexOp(c Context, g byte, l, r Word) Word {
	m := c.Mem()
	if !l.Boxed() {
		m.Release(l)
		m.Release(r)
		throw(g, errRank)
	}
	idx := convert(c, g, r, tagInt)
	m.Release(r)
	n := l.Count()
	if l.IsMatrix() {
		// Row indexing: l[i] is row i.
		return indexRows(c, g, l, idx)
	}
	if !idx.Boxed() {
		i := idx.IntVal()
		if i < 0 || i >= int64(n) {
			m.Release(l)
			throw(g, errIndex)
		}
		a := atomWordAt(m, l, int(i))
		m.Release(l)
		return a
	}
	iv := m.Ints(idx)
	if boundsCheck(iv, n) >= 0 {
		m.Release(l)
		m.Release(idx)
		throw(g, errIndex)
	}
	if l.Tag() == tagBit {
		// Gathered bits widen to int and pack back down.
		t := convert(c, g, l, tagInt)
		gi := allocLike(m, tagInt, idx)
		gatherI(m.Ints(gi), m.Ints(t), iv)
		m.Release(t)
		m.Release(l)
		m.Release(idx)
		b := convert(c, g, gi, tagBit)
		m.Release(gi)
		return b
	}
	dst := allocLike(m, l.Tag(), idx)
	nn := idx.Count()
	switch l.Tag() {
	case tagByte:
		x, d := m.Bytes(l), m.Bytes(dst)
		m.par.run(nn, func(lo, hi int) { gatherB(d[lo:hi], x, iv[lo:hi]) })
	case tagInt, tagSym:
		x, d := m.Ints(l), m.Ints(dst)
		m.par.run(nn, func(lo, hi int) { gatherI(d[lo:hi], x, iv[lo:hi]) })
	case tagFloat:
		x, d := m.Floats(l), m.Floats(dst)
		m.par.run(nn, func(lo, hi int) { gatherF(d[lo:hi], x, iv[lo:hi]) })
	case tagMixed:
		x, d := m.Words(l), m.Words(dst)
		gatherW(d, x, iv)
		for _, e := range d {
			m.Retain(e)
		}
	}
	m.Release(l)
	m.Release(idx)
	return dst
}

// indexRows gathers whole rows of a matrix.
func indexRows(c Context, g byte, l, idx Word) Word {
	m := c.Mem()
	u, v := l.Rows(), l.Cols()
	one := !idx.Boxed()
	var iv []int32
	if one {
		iv = []int32{int32(idx.IntVal())}
	} else {
		iv = m.Ints(idx)
	}
	if boundsCheck(iv, u) >= 0 {
		m.Release(l)
		m.Release(idx)
		throw(g, errIndex)
	}
	var dst Word
	if one {
		dst = m.Alloc(l.Tag(), v)
	} else {
		dst = m.AllocMatrix(l.Tag(), len(iv), v)
	}
	sz := elemSize(l.Tag())
	if l.Tag() == tagBit {
		m.Release(dst)
		m.Release(l)
		m.Release(idx)
		throw(g, errNYI)
	}
	db, sb := m.base(dst), m.base(l)
	for i, row := range iv {
		copy(db[i*v*sz:(i+1)*v*sz], sb[int(row)*v*sz:(int(row)+1)*v*sz])
	}
	if l.Tag() == tagMixed {
		for _, e := range m.Words(dst) {
			m.Retain(e)
		}
	}
	m.Release(l)
	m.Release(idx)
	return dst
}

// dotOp selects a matrix-multiply variant by shape: mat×mat, mat×vec,
// vec×mat, or vec×vec (inner product). Operands must be float.
func dotOp(c Context, g byte, l, r Word) Word {
	m := c.Mem()
	if !l.Boxed() || !r.Boxed() || l.Tag() != tagFloat || r.Tag() != tagFloat {
		m.Release(l)
		m.Release(r)
		throw(g, errType)
	}
	lm, rm := l.IsMatrix(), r.IsMatrix()
	switch {
	case lm && rm:
		mu, n := l.Rows(), l.Cols()
		if r.Rows() != n {
			m.Release(l)
			m.Release(r)
			throw(g, errRank)
		}
		nv := r.Cols()
		dst := m.AllocMatrix(tagFloat, mu, nv)
		a, b, d := m.Floats(l), m.Floats(r), m.Floats(dst)
		m.par.run(mu, func(lo, hi int) { matMulF(d, a, b, n, nv, lo, hi) })
		m.Release(l)
		m.Release(r)
		return dst
	case lm:
		n := l.Cols()
		if r.Count() != n {
			m.Release(l)
			m.Release(r)
			throw(g, errRank)
		}
		mu := l.Rows()
		dst := m.Alloc(tagFloat, mu)
		a, x, d := m.Floats(l), m.Floats(r), m.Floats(dst)
		m.par.run(mu, func(lo, hi int) { matVecF(d, a, x, n, lo, hi) })
		m.Release(l)
		m.Release(r)
		return dst
	case rm:
		n := r.Rows()
		if l.Count() != n {
			m.Release(l)
			m.Release(r)
			throw(g, errRank)
		}
		nv := r.Cols()
		dst := m.Alloc(tagFloat, nv)
		vecMatF(m.Floats(dst), m.Floats(l), m.Floats(r), n, nv)
		m.Release(l)
		m.Release(r)
		return dst
	default:
		if l.Count() != r.Count() {
			m.Release(l)
			m.Release(r)
			throw(g, errLength)
		}
		s := dotF(m.Floats(l), m.Floats(r))
		m.Release(l)
		m.Release(r)
		return Float(s)
	}
}
