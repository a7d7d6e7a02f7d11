// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "math"

// Unary element-wise kernels.

func negI(dst, x []int32) {
	for i := range dst {
		dst[i] = -x[i]
	}
}

func negF(dst, x []float32) {
	for i := range dst {
		dst[i] = -x[i]
	}
}

func absI(dst, x []int32) {
	for i := range dst {
		v := x[i]
		if v < 0 {
			v = -v
		}
		dst[i] = v
	}
}

func absF(dst, x []float32) {
	for i := range dst {
		dst[i] = float32(math.Abs(float64(x[i])))
	}
}

func notI(dst, x []int32) {
	for i := range dst {
		dst[i] = b2i32(x[i] == 0)
	}
}

func notF(dst []int32, x []float32) {
	for i := range dst {
		dst[i] = b2i32(x[i] == 0)
	}
}

func recipF(dst, x []float32) {
	for i := range dst {
		dst[i] = 1 / x[i]
	}
}

func sqrtF(dst, x []float32) {
	for i := range dst {
		dst[i] = float32(math.Sqrt(float64(x[i])))
	}
}

// anyNegF reports a negative element; run before the sqrt kernel.
func anyNegF(x []float32) bool {
	for _, v := range x {
		if v < 0 {
			return true
		}
	}
	return false
}

// exp2Poly approximates 2^f on [-1/2,1/2]: six minimax coefficients,
// highest degree first, relative error about 1e-7.
var exp2Poly = [6]float32{
	1.535336188319500e-4,
	1.339887440266574e-3,
	9.618437357674640e-3,
	5.550332471162809e-2,
	2.402264791363012e-1,
	6.931472028550421e-1,
}

const log2e = 1.44269504088896340736

// expF computes e^x as 2^(x·log₂e): the scaled argument splits into a
// nearest integer folded into the exponent field and a fraction in
// [-1/2,1/2] fed to the polynomial. Saturates to 0 and +Inf at the
// float32 range.
func expF(dst, x []float32) {
	for i, v := range x {
		t := v * log2e
		if t > 127.4 {
			dst[i] = float32(math.Inf(1))
			continue
		}
		if t < -126 {
			dst[i] = 0
			continue
		}
		n := float32(math.Floor(float64(t) + 0.5))
		f := t - n
		p := exp2Poly[0]
		p = p*f + exp2Poly[1]
		p = p*f + exp2Poly[2]
		p = p*f + exp2Poly[3]
		p = p*f + exp2Poly[4]
		p = p*f + exp2Poly[5]
		r := p*f + 1
		bits := math.Float32bits(r) + uint32(int32(n))<<23
		dst[i] = math.Float32frombits(bits)
	}
}
