// ABOUTME: Tests for the FFT-based MDCT
// ABOUTME: Checks both directions against the direct sums and overlap-add reconstruction
package smd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func directMDCT(x []float64, n int) []float64 {
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		for i := 0; i < 2*n; i++ {
			sum += x[i] * math.Cos(math.Pi/float64(n)*(float64(i)+0.5+float64(n)/2)*(float64(k)+0.5))
		}
		out[k] = sum
	}
	return out
}

func directIMDCT(c []float64, n int) []float64 {
	out := make([]float64, 2*n)
	for i := 0; i < 2*n; i++ {
		var sum float64
		for k := 0; k < n; k++ {
			sum += c[k] * math.Cos(math.Pi/float64(n)*(float64(i)+0.5+float64(n)/2)*(float64(k)+0.5))
		}
		out[i] = sum * 2 / float64(n)
	}
	return out
}

func randomSignal(rng *rand.Rand, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	return x
}

func TestMDCTMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{32, 64, 256} {
		tr := newMDCT(n)

		x := randomSignal(rng, 2*n)
		got := make([]float64, n)
		tr.Forward(x, got)
		want := directMDCT(x, n)
		for k := range want {
			require.InDelta(t, want[k], got[k], 1e-9, "n=%d forward k=%d", n, k)
		}

		c := randomSignal(rng, n)
		gotT := make([]float64, 2*n)
		tr.Inverse(c, gotT)
		wantT := directIMDCT(c, n)
		for i := range wantT {
			require.InDelta(t, wantT[i], gotT[i], 1e-9, "n=%d inverse i=%d", n, i)
		}
	}
}

func TestMDCTOverlapAdd(t *testing.T) {
	const n = 64
	rng := rand.New(rand.NewSource(2))
	tr := newMDCT(n)
	w := buildWindow(n)

	signal := randomSignal(rng, 4*n)
	out := make([]float64, 4*n)
	block := make([]float64, 2*n)
	coeffs := make([]float64, n)
	for b := 0; b < 3; b++ {
		for i := range block {
			block[i] = signal[b*n+i] * w[i]
		}
		tr.Forward(block, coeffs)
		tr.Inverse(coeffs, block)
		for i := range block {
			out[b*n+i] += block[i] * w[i]
		}
	}

	// Aliasing cancels; what is left is the window's power gain.
	for b := 1; b < 3; b++ {
		for i := 0; i < n; i++ {
			gain := w[i]*w[i] + w[i+n]*w[i+n]
			require.InDelta(t, signal[b*n+i]*gain, out[b*n+i], 1e-9, "block %d sample %d", b, i)
		}
	}
}
