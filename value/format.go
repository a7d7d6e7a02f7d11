// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import (
	"math"
	"strconv"
	"strings"
)

// The printer. Atoms format directly; arrays list their elements
// separated by spaces, truncated at the configured width with a
// trailing ".."; strings print verbatim; symbols print backticked;
// mixed arrays recurse; matrices print one row per line.

// pow10 is the powers-of-ten table driving float formatting.
var pow10 [40]float64

func init() {
	p := 1.0
	for i := range pow10 {
		pow10[i] = p
		p *= 10
	}
}

// Sprint formats w for display.
func Sprint(c Context, w Word) string {
	var b strings.Builder
	sprint(c, &b, w, c.Config().MaxPrint())
	return b.String()
}

func sprint(c Context, b *strings.Builder, w Word, limit int) {
	if !w.Boxed() {
		b.WriteString(formatAtom(w))
		return
	}
	m := c.Mem()
	if w.IsMatrix() {
		u, v := w.Rows(), w.Cols()
		for i := 0; i < u; i++ {
			if i > 0 {
				b.WriteByte('\n')
			}
			for j := 0; j < v; j++ {
				if j > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(formatAtom(atomAtNoRef(m, w, i*v+j)))
				if b.Len() > limit {
					b.WriteString("..")
					return
				}
			}
		}
		return
	}
	if w.Tag() == tagByte {
		// A string prints verbatim if printable.
		s := m.Bytes(w)
		if printable(s) {
			n := len(s)
			if n > limit {
				b.Write(s[:limit])
				b.WriteString("..")
				return
			}
			b.Write(s)
			return
		}
	}
	n := w.Count()
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if w.Tag() == tagMixed {
			sprint(c, b, m.Words(w)[i], limit)
		} else {
			b.WriteString(formatAtom(atomAtNoRef(m, w, i)))
		}
		if b.Len() > limit {
			b.WriteString("..")
			return
		}
	}
}

// atomAtNoRef reads element i as an atom without touching refcounts;
// valid for non-mixed tags only.
func atomAtNoRef(m *Mem, w Word, i int) Word {
	switch w.Tag() {
	case tagBit:
		return Bit(m.Bits(w)[i>>6] >> (i & 63) & 1)
	case tagByte:
		return Byte(m.Bytes(w)[i])
	case tagInt:
		return Int(int64(m.Ints(w)[i]))
	case tagSym:
		return atom(tagSym, uint64(uint32(m.Ints(w)[i])))
	default:
		return Float(m.Floats(w)[i])
	}
}

func formatAtom(w Word) string {
	switch w.Tag() {
	case tagNone:
		return ""
	case tagBit:
		if w.BitVal() != 0 {
			return "1"
		}
		return "0"
	case tagByte:
		return string([]byte{w.ByteVal()})
	case tagInt:
		return strconv.FormatInt(w.IntVal(), 10)
	case tagSym:
		return "`" + w.SymVal()
	case tagFloat:
		return formatFloat(w.FloatVal())
	}
	return "?"
}

// formatFloat prints with five significant digits, switching to
// scientific notation when the magnitude leaves [1e-5, 1e10). The
// mantissa scaling comes from the powers-of-ten table.
func formatFloat(f float32) string {
	v := float64(f)
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	if math.IsNaN(v) {
		return "nan"
	}
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	// Decimal exponent: index of the largest power of ten not above v.
	e := 0
	for e < len(pow10)-1 && pow10[e+1] <= v {
		e++
	}
	small := v < 1
	if small {
		for e < len(pow10)-1 && v*pow10[e] < 1 {
			e++
		}
	}
	var s string
	switch {
	case small && e > 5:
		s = sig5(v*pow10[e]) + "e-" + strconv.Itoa(e)
	case !small && e >= 10:
		s = sig5(v/pow10[e]) + "e" + strconv.Itoa(e)
	default:
		s = sig5round(v, e, small)
	}
	if neg {
		s = "-" + s
	}
	return s
}

// sig5 formats a value in [1,10) with five significant digits,
// trimming trailing zeros.
func sig5(v float64) string {
	return trimZeros(strconv.FormatFloat(v, 'f', 4, 64))
}

// sig5round formats v with five significant digits given its decimal
// exponent.
func sig5round(v float64, e int, small bool) string {
	dec := 4 - e
	if small {
		dec = 4 + e
	}
	if dec < 0 {
		dec = 0
	}
	return trimZeros(strconv.FormatFloat(v, 'f', dec, 64))
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func printable(s []byte) bool {
	for _, c := range s {
		if c < ' ' || c > '~' {
			return false
		}
	}
	return true
}
