// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

// Reductions: a trailing / folds a dyadic verb over an array. Sum and
// product have typed identities, so they hold on empty arrays; min and
// max over an empty array have none and raise dom. Integer sums run
// split across workers with per-slice partials; float sums stay on one
// thread so the rounding order is fixed.

// Fold evaluates verb-code/ over r, consuming r.
func Fold(c Context, code int, r Word) Word {
	m := c.Mem()
	g := VerbGlyph(code)
	if !r.Boxed() {
		// Folding an atom yields the atom.
		switch code {
		case vPlus, vTimes, vAmp, vPipe:
			return r
		}
		m.Release(r)
		throw(g, errNYI)
	}
	if r.Tag() == tagSym || r.Tag() == tagMixed {
		m.Release(r)
		throw(g, errType)
	}
	switch code {
	case vPlus:
		return foldSum(c, g, r)
	case vTimes:
		return foldProd(c, g, r)
	case vAmp:
		return foldMinMax(c, g, r, false)
	case vPipe:
		return foldMinMax(c, g, r, true)
	}
	m.Release(r)
	throw(g, errNYI)
	return None
}

func foldSum(c Context, g byte, r Word) Word {
	m := c.Mem()
	defer m.Release(r)
	switch r.Tag() {
	case tagBit:
		return Int(sumBits(m.Bits(r)))
	case tagByte:
		return Int(sumBytes(m.Bytes(r)))
	case tagInt:
		n := r.Count()
		w := m.par
		xi := m.Ints(r)
		parts := make([]int64, w.n)
		w.runIndexed(n, func(i, lo, hi int) { parts[i] = sumI(xi[lo:hi]) })
		var s int64
		for _, p := range parts {
			s += p
		}
		return Int(s)
	case tagFloat:
		return Float(sumF(m.Floats(r)))
	}
	throw(g, errType)
	return None
}

func foldProd(c Context, g byte, r Word) Word {
	m := c.Mem()
	defer m.Release(r)
	switch r.Tag() {
	case tagFloat:
		return Float(prodF(m.Floats(r)))
	case tagInt:
		return Int(prodI(m.Ints(r)))
	case tagBit, tagByte:
		t := convert(c, g, r, tagInt)
		s := prodI(m.Ints(t))
		m.Release(t)
		return Int(s)
	}
	throw(g, errType)
	return None
}

func foldMinMax(c Context, g byte, r Word, wantMax bool) Word {
	m := c.Mem()
	defer m.Release(r)
	if r.Count() == 0 {
		throw(g, errDomain)
	}
	switch r.Tag() {
	case tagFloat:
		if wantMax {
			return Float(maxRedF(m.Floats(r)))
		}
		return Float(minRedF(m.Floats(r)))
	case tagInt:
		if wantMax {
			return Int(int64(maxRedI(m.Ints(r))))
		}
		return Int(int64(minRedI(m.Ints(r))))
	case tagBit, tagByte:
		t := convert(c, g, r, tagInt)
		var s int32
		if wantMax {
			s = maxRedI(m.Ints(t))
		} else {
			s = minRedI(m.Ints(t))
		}
		m.Release(t)
		return Int(int64(s))
	}
	throw(g, errType)
	return None
}
