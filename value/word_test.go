// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "testing"

func TestAtomRoundTrip(t *testing.T) {
	ints := []int64{0, 1, -1, 42, -42, 1 << 40, -(1 << 40), 1<<58 - 1, -(1 << 58)}
	for _, v := range ints {
		w := Int(v)
		if w.Boxed() {
			t.Fatalf("Int(%d) is boxed", v)
		}
		if w.Tag() != tagInt {
			t.Fatalf("Int(%d) tag = %d", v, w.Tag())
		}
		if got := w.IntVal(); got != v {
			t.Errorf("Int(%d).IntVal() = %d", v, got)
		}
	}
	floats := []float32{0, 1, -1, 3.25, -2.5, 1e10, -1e-10}
	for _, v := range floats {
		w := Float(v)
		if got := w.FloatVal(); got != v {
			t.Errorf("Float(%v).FloatVal() = %v", v, got)
		}
	}
	for c := 0; c < 256; c++ {
		if got := Byte(byte(c)).ByteVal(); got != byte(c) {
			t.Errorf("Byte(%d).ByteVal() = %d", c, got)
		}
	}
	if Bit(1).BitVal() != 1 || Bit(0).BitVal() != 0 {
		t.Error("bit round trip failed")
	}
	for _, s := range []string{"", "a", "ab", "abcd"} {
		if got := Sym(s).SymVal(); got != s {
			t.Errorf("Sym(%q).SymVal() = %q", s, got)
		}
	}
}

// Two atoms with the same logical content must be bit-identical.
func TestAtomCanonical(t *testing.T) {
	if Int(7) != Int(7) || Float(2.5) != Float(2.5) || Sym("ab") != Sym("ab") {
		t.Error("equal atoms are not bit-identical")
	}
	if Int(7) == Int(8) {
		t.Error("distinct atoms are bit-identical")
	}
	if Int(1) == Bit(1) || Int(1) == Byte(1) {
		t.Error("tags do not separate atom spaces")
	}
}

func TestBoxedFields(t *testing.T) {
	w := box(tagFloat, 600, 20, 6, 37)
	if !w.Boxed() {
		t.Fatal("box not boxed")
	}
	if w.Tag() != tagFloat || w.Count() != 600 || w.Rows() != 20 || w.StrideLog() != 6 || w.Handle() != 37 {
		t.Errorf("field mismatch: tag %d count %d rows %d sl %d handle %d",
			w.Tag(), w.Count(), w.Rows(), w.StrideLog(), w.Handle())
	}
	if w.Cols() != 30 {
		t.Errorf("Cols = %d, want 30", w.Cols())
	}
	v := box(tagInt, 5, 0, 0, 0)
	if v.IsMatrix() {
		t.Error("rank-1 word reports matrix")
	}
}

func TestWidths(t *testing.T) {
	want := map[int]int{tagBit: 1, tagByte: 8, tagInt: 32, tagSym: 32, tagFloat: 32, tagMixed: 64}
	for tag, bits := range want {
		if widthBits[tag] != bits {
			t.Errorf("width of tag %d = %d, want %d", tag, widthBits[tag], bits)
		}
	}
}
