// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "math"

// Matrix kernels. All operate on dense float32 buffers; shape and type
// checks happen in dispatch. The row dimension is the one split across
// workers.

// matMulF computes the mu×nv product of a (mu×n) and b (n×nv) for rows
// [rlo,rhi). The inner kernel accumulates a 4×4 register tile over
// 64-row panels of b; edge rows and columns fall through to plain
// dot loops.
func matMulF(dst, a, b []float32, n, nv, rlo, rhi int) {
	const tile = 4
	const panel = 64
	i := rlo
	for ; i+tile <= rhi; i += tile {
		for j := 0; j < nv; j += tile {
			jw := min(tile, nv-j)
			var acc [tile][tile]float32
			for p0 := 0; p0 < n; p0 += panel {
				pEnd := min(p0+panel, n)
				for p := p0; p < pEnd; p++ {
					b0 := b[p*nv+j : p*nv+j+jw]
					for r := 0; r < tile; r++ {
						av := a[(i+r)*n+p]
						for c := 0; c < jw; c++ {
							acc[r][c] += av * b0[c]
						}
					}
				}
			}
			for r := 0; r < tile; r++ {
				copy(dst[(i+r)*nv+j:(i+r)*nv+j+jw], acc[r][:jw])
			}
		}
	}
	for ; i < rhi; i++ {
		for j := 0; j < nv; j++ {
			var s float32
			for p := 0; p < n; p++ {
				s += a[i*n+p] * b[p*nv+j]
			}
			dst[i*nv+j] = s
		}
	}
}

// matVecF is a dot product per row of a.
func matVecF(dst, a, x []float32, n, rlo, rhi int) {
	for i := rlo; i < rhi; i++ {
		dst[i] = dotF(a[i*n:(i+1)*n], x)
	}
}

// vecMatF computes x·b for x of length n and b (n×nv), walking b in
// 4-wide column strips so each strip stays in registers.
func vecMatF(dst, x, b []float32, n, nv int) {
	j := 0
	for ; j+4 <= nv; j += 4 {
		var s0, s1, s2, s3 float32
		for p := 0; p < n; p++ {
			xv := x[p]
			row := b[p*nv+j:]
			s0 += xv * row[0]
			s1 += xv * row[1]
			s2 += xv * row[2]
			s3 += xv * row[3]
		}
		dst[j], dst[j+1], dst[j+2], dst[j+3] = s0, s1, s2, s3
	}
	for ; j < nv; j++ {
		var s float32
		for p := 0; p < n; p++ {
			s += x[p] * b[p*nv+j]
		}
		dst[j] = s
	}
}

// rmsNormF scales z by the reciprocal root-mean-square of z.
func rmsNormF(dst, z []float32) {
	if len(z) == 0 {
		return
	}
	ss := dotF(z, z)
	r := 1 / float32(math.Sqrt(float64(ss/float32(len(z)))))
	mulFS(dst, z, r)
}

// softmaxF computes exp(z-max z)/Σexp(z-max z); the subtraction keeps
// the exponentials in range.
func softmaxF(dst, z []float32) {
	if len(z) == 0 {
		return
	}
	m := maxRedF(z)
	subFS(dst, z, m)
	expF(dst, dst)
	s := sumF(dst)
	mulFS(dst, dst, 1/s)
}
