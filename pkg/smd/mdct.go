// ABOUTME: Modified discrete cosine transform used by the codec
// ABOUTME: Folds 2N samples into a DCT-IV computed with an N/2-point complex FFT
package smd

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// mdct transforms blocks of 2n samples to n coefficients and back.
//
//	X[k] = sum_{i<2n} x[i] cos(pi/n (i + 1/2 + n/2)(k + 1/2))
//	y[i] = 2/n sum_{k<n} X[k] cos(pi/n (i + 1/2 + n/2)(k + 1/2))
//
// With a symmetric window w applied before Forward and after Inverse, 50%
// overlap-add of consecutive blocks cancels the time-domain aliasing and
// leaves x[i] * (w[i]^2 + w[i+n]^2), which is 1 for a Princen-Bradley window.
//
// An mdct owns scratch space and is not safe for concurrent use.
type mdct struct {
	n    int
	fft  *fourier.CmplxFFT
	pre  []complex128
	post []complex128
	z    []complex128
	fold []float64
}

func newMDCT(n int) *mdct {
	h := n / 2
	t := &mdct{
		n:    n,
		fft:  fourier.NewCmplxFFT(h),
		pre:  make([]complex128, h),
		post: make([]complex128, h),
		z:    make([]complex128, h),
		fold: make([]float64, n),
	}
	for i := 0; i < h; i++ {
		t.pre[i] = cmplx.Exp(complex(0, -math.Pi*(float64(i)+0.25)/float64(n)))
		t.post[i] = cmplx.Exp(complex(0, -math.Pi*float64(i)/float64(n)))
	}
	return t
}

// Forward computes n coefficients from 2n (already windowed) samples.
func (t *mdct) Forward(samples, coeffs []float64) {
	n, h := t.n, t.n/2
	u := t.fold
	// (a, b, c, d) -> (-c_r - d, a - b_r)
	for i := 0; i < h; i++ {
		u[i] = -samples[3*h-1-i] - samples[3*h+i]
		u[h+i] = samples[i] - samples[n-1-i]
	}
	t.dct4(u, coeffs[:n])
}

// Inverse computes 2n time samples from n coefficients. The caller applies
// the synthesis window.
func (t *mdct) Inverse(coeffs, samples []float64) {
	n, h := t.n, t.n/2
	u := t.fold
	t.dct4(coeffs[:n], u)
	floats.Scale(2/float64(n), u)
	for i := 0; i < h; i++ {
		samples[i] = u[h+i]
		samples[h+i] = -u[n-1-i]
		samples[n+i] = -u[h-1-i]
		samples[3*h+i] = -u[i]
	}
}

// dct4 computes out[k] = sum_i in[i] cos(pi/n (i + 1/2)(k + 1/2)).
// in and out may alias.
func (t *mdct) dct4(in, out []float64) {
	n, h := t.n, t.n/2
	for i := 0; i < h; i++ {
		t.z[i] = complex(in[2*i], in[n-1-2*i]) * t.pre[i]
	}
	t.fft.Coefficients(t.z, t.z)
	for k := 0; k < h; k++ {
		w := t.z[k] * t.post[k]
		out[2*k] = real(w)
		out[n-1-2*k] = -imag(w)
	}
}
