// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "math/bits"

// Reduction kernels. The int and float sums, the int min and max, and
// the dot product run two-phase: an unrolled pass combining four
// independent accumulators to break the dependency chain, then a
// scalar tail. The byte and bit sums, the products, and the float min
// and max are single passes. Sum over an empty array is the type's zero; min and max
// over an empty array are rejected before the kernel is reached.

func sumI(x []int32) int64 {
	var a0, a1, a2, a3 int64
	i := 0
	for ; i+4 <= len(x); i += 4 {
		a0 += int64(x[i])
		a1 += int64(x[i+1])
		a2 += int64(x[i+2])
		a3 += int64(x[i+3])
	}
	s := a0 + a1 + a2 + a3
	for ; i < len(x); i++ {
		s += int64(x[i])
	}
	return s
}

func sumF(x []float32) float32 {
	var a0, a1, a2, a3 float32
	i := 0
	for ; i+4 <= len(x); i += 4 {
		a0 += x[i]
		a1 += x[i+1]
		a2 += x[i+2]
		a3 += x[i+3]
	}
	s := (a0 + a1) + (a2 + a3)
	for ; i < len(x); i++ {
		s += x[i]
	}
	return s
}

func sumBytes(x []byte) int64 {
	var s int64
	for _, v := range x {
		s += int64(v)
	}
	return s
}

// sumBits is a population count over the packed words; the tail word's
// padding is zero by construction.
func sumBits(x []uint64) int64 {
	var s int64
	for _, w := range x {
		s += int64(bits.OnesCount64(w))
	}
	return s
}

func prodI(x []int32) int64 {
	s := int64(1)
	for _, v := range x {
		s *= int64(v)
	}
	return s
}

func prodF(x []float32) float32 {
	s := float32(1)
	for _, v := range x {
		s *= v
	}
	return s
}

func maxRedI(x []int32) int32 {
	m0, m1, m2, m3 := x[0], x[0], x[0], x[0]
	i := 0
	for ; i+4 <= len(x); i += 4 {
		m0 = max(m0, x[i])
		m1 = max(m1, x[i+1])
		m2 = max(m2, x[i+2])
		m3 = max(m3, x[i+3])
	}
	m := max(max(m0, m1), max(m2, m3))
	for ; i < len(x); i++ {
		m = max(m, x[i])
	}
	return m
}

func minRedI(x []int32) int32 {
	m0, m1, m2, m3 := x[0], x[0], x[0], x[0]
	i := 0
	for ; i+4 <= len(x); i += 4 {
		m0 = min(m0, x[i])
		m1 = min(m1, x[i+1])
		m2 = min(m2, x[i+2])
		m3 = min(m3, x[i+3])
	}
	m := min(min(m0, m1), min(m2, m3))
	for ; i < len(x); i++ {
		m = min(m, x[i])
	}
	return m
}

func maxRedF(x []float32) float32 {
	m := x[0]
	for _, v := range x[1:] {
		m = max(m, v)
	}
	return m
}

func minRedF(x []float32) float32 {
	m := x[0]
	for _, v := range x[1:] {
		m = min(m, v)
	}
	return m
}

// dotF is the inner product Σ x[i]·y[i], four accumulators plus tail.
func dotF(x, y []float32) float32 {
	var a0, a1, a2, a3 float32
	i := 0
	for ; i+4 <= len(x); i += 4 {
		a0 += x[i] * y[i]
		a1 += x[i+1] * y[i+1]
		a2 += x[i+2] * y[i+2]
		a3 += x[i+3] * y[i+3]
	}
	s := (a0 + a1) + (a2 + a3)
	for ; i < len(x); i++ {
		s += x[i] * y[i]
	}
	return s
}
