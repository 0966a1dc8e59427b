// ABOUTME: Tests for frame geometry
// ABOUTME: Covers selector mode choice, sub-band tiling, block sizes and the window
package smd

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectorModeFor(t *testing.T) {
	tests := []struct {
		name          string
		limit, table  int
		wantBits      int
		wantIndices   int
		wantMode      SelectorMode
		wantSelectorB int
	}{
		{"small bitmap", 32, 8, 5, 64, BitmapMode, 4},
		{"default bitmap", 1024, 256, 10, 2560, BitmapMode, 128},
		{"sparse index", 1024, 8, 10, 96, IndexMode, 12},
		{"index below bound", 1024, 96, 10, 960, IndexMode, 120},
		{"bitmap at bound", 1024, 104, 10, 1056, BitmapMode, 128},
		{"odd limit bitmap", 100, 64, 7, 448, BitmapMode, 16},
		{"single coefficient", 1, 8, 0, 0, IndexMode, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGeometry(1, max(32, roundUp32(tt.limit)), tt.limit, tt.table)
			require.Equal(t, tt.wantBits, g.IndexBitSize)
			require.Equal(t, tt.wantIndices, g.IndicesSize)
			require.Equal(t, tt.wantMode, g.Mode)
			require.Equal(t, tt.wantMode, SelectorModeFor(tt.limit, tt.table))
			require.Equal(t, tt.wantSelectorB, g.SelectorBytes())
		})
	}
}

func TestSubBandsTile(t *testing.T) {
	for _, limit := range []int{1, 2, 3, 32, 100, 513, 1000, 1024, 4096} {
		g := newGeometry(1, roundUp32(limit), limit, 8)
		require.LessOrEqual(t, g.SubBands(), maxSubBands, "limit %d", limit)

		next := 0
		for j := 0; j < g.SubBands(); j++ {
			lo, hi := g.Band(j)
			require.Equal(t, next, lo, "limit %d band %d", limit, j)
			require.GreaterOrEqual(t, hi, lo, "limit %d band %d", limit, j)
			next = hi
		}
		require.Equal(t, limit, next, "bands must end at the upper limit")
	}
}

func TestSubBandEdges(t *testing.T) {
	g := newGeometry(1, 1024, 1024, 256)
	require.Equal(t, 8, g.SubBands())
	want := [][2]int{{0, 8}, {8, 16}, {16, 32}, {32, 64}, {64, 128}, {128, 256}, {256, 512}, {512, 1024}}
	for j, w := range want {
		lo, hi := g.Band(j)
		require.Equal(t, w, [2]int{lo, hi})
	}

	g = newGeometry(1, 32, 32, 8)
	require.Equal(t, 6, g.SubBands())
	lo, hi := g.Band(0)
	require.Equal(t, [2]int{0, 1}, [2]int{lo, hi})
	lo, hi = g.Band(5)
	require.Equal(t, [2]int{16, 32}, [2]int{lo, hi})
}

func TestBlockLayout(t *testing.T) {
	g := newGeometry(1, 32, 32, 8)
	require.Equal(t, 16, g.BlockSize())
	require.Equal(t, HeaderSize, g.FrameOffset(0, 0))
	require.Equal(t, HeaderSize+16, g.FrameOffset(1, 0))
	require.Equal(t, HeaderSize+32, g.DataSize(2))

	stereo := newGeometry(2, 1024, 1024, 8)
	require.Equal(t, 8+12+4, stereo.BlockSize())
	require.Equal(t, HeaderSize+24, stereo.FrameOffset(0, 1))
	require.Equal(t, HeaderSize+2*24*3+24, stereo.FrameOffset(3, 1))
	require.Equal(t, HeaderSize, stereo.DataSize(0))
}

func TestMaxFrames(t *testing.T) {
	// 32 samples and 16 bytes per frame: the sample count binds
	mono := newGeometry(1, 32, 32, 8)
	require.Equal(t, math.MaxUint32/32, mono.MaxFrames())

	// 8 channels of 16-byte blocks per frame: the data size binds
	wide := newGeometry(8, 32, 32, 8)
	require.Equal(t, (math.MaxUint32-HeaderSize)/128, wide.MaxFrames())
	require.LessOrEqual(t, int64(wide.DataSize(wide.MaxFrames())), int64(math.MaxUint32))
	require.Greater(t, int64(wide.DataSize(wide.MaxFrames()+1)), int64(math.MaxUint32))
}

func TestValidateGeometry(t *testing.T) {
	tests := []struct {
		name              string
		rng, limit, table int
		wantErr           bool
	}{
		{"defaults", 1024, 1024, 256, false},
		{"table above limit", 32, 16, 64, false},
		{"zero range", 0, 1, 8, true},
		{"range not multiple of 32", 48, 48, 8, true},
		{"range too large", 65536, 1024, 8, true},
		{"limit above range", 64, 65, 8, true},
		{"zero limit", 64, 0, 8, true},
		{"table not multiple of 8", 64, 64, 12, true},
		{"zero table", 64, 64, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGeometry(tt.rng, tt.limit, tt.table)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	for _, n := range []int{32, 1024} {
		w := buildWindow(n)
		require.Len(t, w, 2*n)
		require.Equal(t, 0.0, w[0])
		for i := 0; i < n; i++ {
			require.Equal(t, w[i], w[2*n-1-i], "window must be symmetric")
			require.GreaterOrEqual(t, w[i], 0.0)
			require.LessOrEqual(t, w[i], 1.0)

			gain := w[i]*w[i] + w[i+n]*w[i+n]
			require.LessOrEqual(t, gain, 1+1e-12)
			require.Greater(t, gain, 1-4/float64(n))
		}
	}
	require.InDelta(t, 1.0, buildWindow(1024)[1023], 1e-5)
	require.False(t, math.IsNaN(buildWindow(32)[16]))
}
