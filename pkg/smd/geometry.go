// ABOUTME: Frame geometry shared by the encoder and decoder
// ABOUTME: Selector mode choice, sub-band edges, block offsets and the window table
package smd

import (
	"fmt"
	"math"
	"math/bits"
)

// SelectorMode is how a frame block records which coefficients were kept.
type SelectorMode int

const (
	// BitmapMode stores one bit per candidate coefficient
	BitmapMode SelectorMode = iota
	// IndexMode stores a packed list of coefficient indices
	IndexMode
)

func (m SelectorMode) String() string {
	switch m {
	case BitmapMode:
		return "bitmap"
	case IndexMode:
		return "index"
	default:
		return fmt.Sprintf("SelectorMode(%d)", int(m))
	}
}

// SelectorModeFor picks the cheaper selector encoding for a stream. The
// bitmap cost is estimated by the power-of-two bound 2^indexBitSize.
func SelectorModeFor(upperLimit, tableSize int) SelectorMode {
	bitSize := indexBitSize(upperLimit)
	if 1<<bitSize <= indicesSize(bitSize, tableSize) {
		return BitmapMode
	}
	return IndexMode
}

// indexBitSize is ceil(log2(upperLimit)).
func indexBitSize(upperLimit int) int {
	if upperLimit <= 1 {
		return 0
	}
	return bits.Len(uint(upperLimit - 1))
}

// indicesSize is the packed index field size in bits, rounded up to 32-bit words.
func indicesSize(bitSize, tableSize int) int {
	return roundUp32(bitSize * tableSize)
}

func roundUp32(n int) int {
	return (n + 31) &^ 31
}

// Geometry is the frame layout derived from the stream parameters.
type Geometry struct {
	Channels            int
	FrequencyRange      int
	FrequencyUpperLimit int
	FrequencyTableSize  int

	// IndexBitSize is the width of one packed index
	IndexBitSize int
	// IndicesSize is the packed index field size in bits
	IndicesSize int
	Mode        SelectorMode

	// bandEnds[j] is the exclusive end of sub-band j
	bandEnds []int
}

func newGeometry(channels, frequencyRange, upperLimit, tableSize int) Geometry {
	bitSize := indexBitSize(upperLimit)
	g := Geometry{
		Channels:            channels,
		FrequencyRange:      frequencyRange,
		FrequencyUpperLimit: upperLimit,
		FrequencyTableSize:  tableSize,
		IndexBitSize:        bitSize,
		IndicesSize:         indicesSize(bitSize, tableSize),
		Mode:                SelectorModeFor(upperLimit, tableSize),
	}

	// Bands double in width and tile [0, upperLimit) exactly.
	shift := min(bitSize, maxSubBands-1)
	g.bandEnds = make([]int, shift+1)
	for j := range g.bandEnds {
		g.bandEnds[j] = (upperLimit << j) >> shift
	}
	return g
}

func validateGeometry(frequencyRange, upperLimit, tableSize int) error {
	switch {
	case frequencyRange <= 0 || frequencyRange > math.MaxUint16:
		return fmt.Errorf("frequency range %d out of range", frequencyRange)
	case frequencyRange%32 != 0:
		return fmt.Errorf("frequency range %d is not a multiple of 32", frequencyRange)
	case upperLimit <= 0 || upperLimit > frequencyRange:
		return fmt.Errorf("frequency upper limit %d not in (0, %d]", upperLimit, frequencyRange)
	case tableSize <= 0 || tableSize%8 != 0:
		return fmt.Errorf("frequency table size %d is not a positive multiple of 8", tableSize)
	case tableSize > math.MaxUint16:
		return fmt.Errorf("frequency table size %d out of range", tableSize)
	}
	return nil
}

// SubBands returns the number of sub-bands, at most 8.
func (g Geometry) SubBands() int {
	return len(g.bandEnds)
}

// Band returns the coefficient range [start, end) of sub-band j.
func (g Geometry) Band(j int) (start, end int) {
	if j > 0 {
		start = g.bandEnds[j-1]
	}
	return start, g.bandEnds[j]
}

// SelectorBytes is the size of the selector field in one block.
func (g Geometry) SelectorBytes() int {
	if g.Mode == IndexMode {
		return g.IndicesSize / 8
	}
	return roundUp32(g.FrequencyUpperLimit) / 8
}

// BlockSize is the size of one frame block for one channel.
func (g Geometry) BlockSize() int {
	return blockOffData + g.SelectorBytes() + g.FrequencyTableSize/2
}

// FrameOffset is the byte offset of the block for (frame, channel).
func (g Geometry) FrameOffset(frame, channel int) int {
	return HeaderSize + g.BlockSize()*(g.Channels*frame+channel)
}

// DataSize is the stream length holding the given number of frames.
func (g Geometry) DataSize(frames int) int {
	return g.FrameOffset(frames, 0)
}

// MaxFrames is the largest frame count whose data size and sample count both
// fit the header's u32 fields.
func (g Geometry) MaxFrames() int {
	perFrame := int64(g.BlockSize() * g.Channels)
	bySize := (math.MaxUint32 - HeaderSize) / perFrame
	bySamples := math.MaxUint32 / int64(g.FrequencyRange)
	return int(min(bySize, bySamples))
}

// buildWindow returns the raised-sine (Vorbis) window of length 2n.
func buildWindow(n int) []float64 {
	w := make([]float64, 2*n)
	denom := float64(2*n - 1)
	for i := 0; i < n; i++ {
		s := math.Sin(math.Pi * float64(i) / denom)
		v := math.Sin(math.Pi / 2 * s * s)
		w[i] = v
		w[2*n-1-i] = v
	}
	return w
}
