// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import (
	"math/bits"
	"sort"
)

// Permutation kernels: reverse, gather, grade, diagonal, transpose.

func reverseI(dst, x []int32) {
	n := len(x)
	for i := range dst {
		dst[i] = x[n-1-i]
	}
}

func reverseF(dst, x []float32) {
	n := len(x)
	for i := range dst {
		dst[i] = x[n-1-i]
	}
}

func reverseB(dst, x []byte) {
	n := len(x)
	for i := range dst {
		dst[i] = x[n-1-i]
	}
}

func reverseW(dst, x []Word) {
	n := len(x)
	for i := range dst {
		dst[i] = x[n-1-i]
	}
}

// reverseBits reverses an n-bit array packed 64 per word: reverse the
// words, bit-reverse each, then shift out the padding.
func reverseBits(dst, x []uint64, n int) {
	nw := len(x)
	for i := 0; i < nw; i++ {
		dst[i] = bits.Reverse64(x[nw-1-i])
	}
	sh := uint(nw*64 - n)
	if sh == 0 {
		return
	}
	for i := 0; i < nw-1; i++ {
		dst[i] = dst[i]>>sh | dst[i+1]<<(64-sh)
	}
	dst[nw-1] >>= sh
}

// iotaI fills dst with consecutive ints starting at lo.
func iotaI(dst []int32, lo int32) {
	for i := range dst {
		dst[i] = lo + int32(i)
	}
}

// boundsCheck reports the first index outside [0,n), or -1.
func boundsCheck(idx []int32, n int) int {
	for i, v := range idx {
		if v < 0 || int(v) >= n {
			return i
		}
	}
	return -1
}

// The gather kernels assume the index array has been bounds-checked.

func gatherI(dst, x []int32, idx []int32) {
	for i, v := range idx {
		dst[i] = x[v]
	}
}

func gatherF(dst []float32, x []float32, idx []int32) {
	for i, v := range idx {
		dst[i] = x[v]
	}
}

func gatherB(dst []byte, x []byte, idx []int32) {
	for i, v := range idx {
		dst[i] = x[v]
	}
}

func gatherW(dst []Word, x []Word, idx []int32) {
	for i, v := range idx {
		dst[i] = x[v]
	}
}

// gradeI fills dst with the permutation that sorts x ascending (up)
// or descending (!up). The sort is stable, so ties keep input order.
func gradeI(dst []int32, x []int32, up bool) {
	for i := range dst {
		dst[i] = int32(i)
	}
	if up {
		sort.SliceStable(dst, func(a, b int) bool { return x[dst[a]] < x[dst[b]] })
	} else {
		sort.SliceStable(dst, func(a, b int) bool { return x[dst[a]] > x[dst[b]] })
	}
}

func gradeF(dst []int32, x []float32, up bool) {
	for i := range dst {
		dst[i] = int32(i)
	}
	if up {
		sort.SliceStable(dst, func(a, b int) bool { return x[dst[a]] < x[dst[b]] })
	} else {
		sort.SliceStable(dst, func(a, b int) bool { return x[dst[a]] > x[dst[b]] })
	}
}

func gradeBytes(dst []int32, x []byte, up bool) {
	for i := range dst {
		dst[i] = int32(i)
	}
	if up {
		sort.SliceStable(dst, func(a, b int) bool { return x[dst[a]] < x[dst[b]] })
	} else {
		sort.SliceStable(dst, func(a, b int) bool { return x[dst[a]] > x[dst[b]] })
	}
}

// diagI copies the main diagonal of a u×v int matrix.
func diagI(dst, x []int32, u, v int) {
	n := min(u, v)
	for i := 0; i < n; i++ {
		dst[i] = x[i*v+i]
	}
}

func diagF(dst, x []float32, u, v int) {
	n := min(u, v)
	for i := 0; i < n; i++ {
		dst[i] = x[i*v+i]
	}
}

// transBlock is the tile edge for the blocked 32-bit transposes.
const transBlock = 16

// transposeI writes the v×u transpose of the u×v matrix x, walking
// 16×16 tiles so both matrices are touched a cache line at a time.
func transposeI(dst, x []int32, u, v int) {
	for bi := 0; bi < u; bi += transBlock {
		for bj := 0; bj < v; bj += transBlock {
			iEnd := min(bi+transBlock, u)
			jEnd := min(bj+transBlock, v)
			for i := bi; i < iEnd; i++ {
				for j := bj; j < jEnd; j++ {
					dst[j*u+i] = x[i*v+j]
				}
			}
		}
	}
}

func transposeF(dst, x []float32, u, v int) {
	for bi := 0; bi < u; bi += transBlock {
		for bj := 0; bj < v; bj += transBlock {
			iEnd := min(bi+transBlock, u)
			jEnd := min(bj+transBlock, v)
			for i := bi; i < iEnd; i++ {
				for j := bj; j < jEnd; j++ {
					dst[j*u+i] = x[i*v+j]
				}
			}
		}
	}
}

func transposeBytes(dst, x []byte, u, v int) {
	for i := 0; i < u; i++ {
		for j := 0; j < v; j++ {
			dst[j*u+i] = x[i*v+j]
		}
	}
}

// transposeBits64 transposes a 64×64 bit block in place, Eklundh
// style: log₂64 rounds of masked swaps at halving offsets.
func transposeBits64(a *[64]uint64) {
	m := uint64(0x00000000FFFFFFFF)
	for j := 32; j != 0; j >>= 1 {
		for k := 0; k < 64; k = (k + j + 1) &^ j {
			// Bit i of a row is column i, so the high half of a[k]
			// swaps with the low half of a[k+j].
			t := (a[k]>>uint(j) ^ a[k+j]) & m
			a[k] ^= t << uint(j)
			a[k+j] ^= t
		}
		m ^= m << uint(j>>1)
	}
}

// transposeBits transposes a u×v bit matrix whose dimensions are both
// multiples of 64, moving 64×64 blocks through transposeBits64. Words
// per row is v/64.
func transposeBits(dst, x []uint64, u, v int) {
	wr := v / 64 // words per source row
	wc := u / 64 // words per destination row
	var blk [64]uint64
	for bi := 0; bi < u; bi += 64 {
		for bj := 0; bj < wr; bj++ {
			for r := 0; r < 64; r++ {
				blk[r] = x[(bi+r)*wr+bj]
			}
			transposeBits64(&blk)
			for r := 0; r < 64; r++ {
				dst[(bj*64+r)*wc+bi/64] = blk[r]
			}
		}
	}
}
