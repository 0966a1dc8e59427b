// ABOUTME: Streaming SMD encoder
// ABOUTME: Buffers PCM into blocks and packs MDCT coefficients into frame blocks
package smd

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// Config describes an encoder. Zero values select the defaults.
type Config struct {
	SampleRate int
	Channels   int

	// FrequencyRange is the block size and half-window length.
	// Default 1024; must be a positive multiple of 32.
	FrequencyRange int

	// FrequencyUpperLimit bounds the coefficients that can be kept.
	// Default FrequencyRange.
	FrequencyUpperLimit int

	// FrequencyTableSize is how many coefficients each block keeps per
	// channel. Default FrequencyRange/4; must be a positive multiple of 8.
	FrequencyTableSize int

	// InitSampleCount sizes the initial output buffer. Default 4096.
	InitSampleCount int

	// Logger receives debug output. Default is a no-op logger.
	Logger *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.FrequencyRange == 0 {
		c.FrequencyRange = DefaultFrequencyRange
	}
	if c.FrequencyUpperLimit == 0 {
		c.FrequencyUpperLimit = c.FrequencyRange
	}
	if c.FrequencyTableSize == 0 {
		c.FrequencyTableSize = c.FrequencyRange / 4
	}
	if c.InitSampleCount == 0 {
		c.InitSampleCount = DefaultInitSampleCount
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.SampleRate <= 0 || int64(c.SampleRate) > math.MaxUint32:
		return fmt.Errorf("sample rate %d out of range: %w", c.SampleRate, ErrInvalidConfig)
	case c.Channels <= 0 || c.Channels > math.MaxUint16:
		return fmt.Errorf("channel count %d out of range: %w", c.Channels, ErrInvalidConfig)
	case c.InitSampleCount < 0:
		return fmt.Errorf("initial sample count %d is negative: %w", c.InitSampleCount, ErrInvalidConfig)
	}
	if err := validateGeometry(c.FrequencyRange, c.FrequencyUpperLimit, c.FrequencyTableSize); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	return nil
}

// Encoder turns planar float PCM into an SMD0 stream. Samples are nominally
// in [-1, 1]. An Encoder is not safe for concurrent use.
type Encoder struct {
	geom   Geometry
	header Header
	buf    *growBuffer
	log    zerolog.Logger

	window    []float64
	transform *mdct

	samples   []float64
	coeffs    []float64
	powers    []float64
	flags     []bool
	subScales []uint8

	// prevInputs holds each channel's last scaled block for the overlap
	prevInputs [][]float64

	pending    [][]float32
	pendingLen int

	frameCount int
}

// NewEncoder validates cfg and returns an encoder with the header written.
func NewEncoder(cfg Config) (*Encoder, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	geom := newGeometry(cfg.Channels, cfg.FrequencyRange, cfg.FrequencyUpperLimit, cfg.FrequencyTableSize)
	n := geom.FrequencyRange
	initFrames := (cfg.InitSampleCount + n - 1) / n

	e := &Encoder{
		geom: geom,
		header: Header{
			SampleRate:          uint32(cfg.SampleRate),
			Channels:            uint16(cfg.Channels),
			FrequencyRange:      uint16(cfg.FrequencyRange),
			FrequencyUpperLimit: uint16(cfg.FrequencyUpperLimit),
			FrequencyTableSize:  uint16(cfg.FrequencyTableSize),
		},
		buf:        newGrowBuffer(geom.DataSize(initFrames)),
		log:        cfg.Logger.With().Str("component", "smd-encoder").Logger(),
		window:     buildWindow(n),
		transform:  newMDCT(n),
		samples:    make([]float64, 2*n),
		coeffs:     make([]float64, n),
		powers:     make([]float64, geom.FrequencyUpperLimit),
		flags:      make([]bool, geom.FrequencyUpperLimit),
		subScales:  make([]uint8, geom.SubBands()),
		prevInputs: make([][]float64, cfg.Channels),
		pending:    make([][]float32, cfg.Channels),
	}
	for ch := range e.prevInputs {
		e.prevInputs[ch] = make([]float64, n)
		e.pending[ch] = make([]float32, n)
	}
	e.header.put(e.buf.Bytes())

	e.log.Debug().
		Int("range", geom.FrequencyRange).
		Int("upper_limit", geom.FrequencyUpperLimit).
		Int("table_size", geom.FrequencyTableSize).
		Stringer("mode", geom.Mode).
		Int("block_size", geom.BlockSize()).
		Msg("encoder created")

	return e, nil
}

// Geometry returns the frame layout of the stream being written.
func (e *Encoder) Geometry() Geometry {
	return e.geom
}

// FrameCount returns the number of frames written so far.
func (e *Encoder) FrameCount() int {
	return e.frameCount
}

// Pending returns the number of buffered samples per channel that have not
// been encoded yet.
func (e *Encoder) Pending() int {
	return e.pendingLen
}

// Write encodes length samples per channel starting at start. Partial blocks
// are buffered until a later Write or Flush completes them.
func (e *Encoder) Write(channels [][]float32, start, length int) error {
	if err := checkChannels(channels, e.geom.Channels, start, length); err != nil {
		return fmt.Errorf("encoder write: %w", err)
	}
	n := e.geom.FrequencyRange

	if e.pendingLen > 0 {
		fill := min(n-e.pendingLen, length)
		for ch := 0; ch < e.geom.Channels; ch++ {
			copy(e.pending[ch][e.pendingLen:], channels[ch][start:start+fill])
		}
		start += fill
		length -= fill
		e.pendingLen += fill
		if e.pendingLen >= n {
			if err := e.encodeFrame(e.pending, 0, n); err != nil {
				return err
			}
			e.pendingLen = 0
		}
	}

	for length >= n {
		if err := e.encodeFrame(channels, start, n); err != nil {
			return err
		}
		start += n
		length -= n
	}

	if length > 0 {
		for ch := 0; ch < e.geom.Channels; ch++ {
			copy(e.pending[ch], channels[ch][start:start+length])
		}
		e.pendingLen = length
	}
	return nil
}

// WriteAll encodes every sample of channels; all slices must share a length.
func (e *Encoder) WriteAll(channels [][]float32) error {
	if len(channels) == 0 {
		return fmt.Errorf("encoder write: no channels: %w", ErrShortBuffer)
	}
	return e.Write(channels, 0, len(channels[0]))
}

// Flush zero-pads and encodes a pending partial block.
func (e *Encoder) Flush() error {
	if e.pendingLen == 0 {
		return nil
	}
	for ch := 0; ch < e.geom.Channels; ch++ {
		clear(e.pending[ch][e.pendingLen:])
	}
	if err := e.encodeFrame(e.pending, 0, e.geom.FrequencyRange); err != nil {
		return err
	}
	e.pendingLen = 0
	return nil
}

// DataSize returns the stream length in bytes for the frames written so far.
func (e *Encoder) DataSize() int {
	return e.geom.DataSize(e.frameCount)
}

// Header returns the header as Bytes would write it.
func (e *Encoder) Header() Header {
	h := e.header
	h.DataSize = uint32(e.DataSize())
	h.SampleCount = uint32(e.geom.FrequencyRange * e.frameCount)
	h.FrameCount = uint32(e.frameCount)
	return h
}

// Bytes refreshes the header and returns the stream. The slice aliases the
// encoder's buffer and is invalidated by the next Write or Flush.
func (e *Encoder) Bytes() []byte {
	e.header = e.Header()
	data := e.buf.Bytes()
	e.header.put(data)
	return data[:e.header.DataSize]
}

// nextFrame reserves room for one more frame. The header stores the data
// size and sample count as u32, so the stream stops at Geometry.MaxFrames.
func (e *Encoder) nextFrame() error {
	if e.frameCount >= e.geom.MaxFrames() {
		return fmt.Errorf("encoder write: frame %d: %w", e.frameCount+1, ErrStreamFull)
	}
	e.frameCount++
	if e.buf.Grow(e.DataSize()) {
		e.log.Debug().
			Int("frames", e.frameCount).
			Int("capacity", e.buf.Cap()).
			Msg("output buffer grown")
	}
	return nil
}

// encodeFrame encodes length (<= FrequencyRange) samples per channel as one frame.
func (e *Encoder) encodeFrame(input [][]float32, start, length int) error {
	if err := e.nextFrame(); err != nil {
		return err
	}
	data := e.buf.Bytes()
	for ch := 0; ch < e.geom.Channels; ch++ {
		offset := e.geom.FrameOffset(e.frameCount-1, ch)
		e.encodeBlock(data, offset, ch, input[ch][start:start+length])
	}
	return nil
}

func (e *Encoder) encodeBlock(data []byte, offset, ch int, input []float32) {
	n := e.geom.FrequencyRange
	limit := e.geom.FrequencyUpperLimit

	// Previous block in the first half, this block in the second.
	prev := e.prevInputs[ch]
	copy(e.samples[:n], prev)
	for j := 0; j < n; j++ {
		v := 0.0
		if j < len(input) {
			v = float64(input[j]) * pcmScale
		}
		e.samples[n+j] = v
		prev[j] = v
	}

	floats.Mul(e.samples, e.window)
	e.transform.Forward(e.samples, e.coeffs)

	peak := math.Max(1, floats.Norm(e.coeffs[:limit], math.Inf(1)))
	masterScale := uint32(math.Min(peak, math.MaxUint32))
	order.PutUint32(data[offset+blockOffMasterScale:], masterScale)
	scale := float64(masterScale)

	for j := range e.subScales {
		lo, hi := e.geom.Band(j)
		bandPeak := 1.0
		if hi > lo {
			bandPeak = math.Max(1, floats.Norm(e.coeffs[lo:hi], math.Inf(1)))
		}
		s := math.Floor(math.Min(-math.Log2(bandPeak/scale)*2, maxSubScale))
		sub := uint8(math.Max(s, 0))
		e.subScales[j] = sub
		writeNibble(data, offset+blockOffSubScales+j>>1, j&1, sub)
	}

	// Relative power per coefficient, with a dead zone below the smallest
	// magnitude the 3-bit mantissa can express.
	for j, sub := range e.subScales {
		lo, hi := e.geom.Band(j)
		floor := math.Exp2(deadZoneBase - float64(sub)*0.5)
		for k := lo; k < hi; k++ {
			p := math.Abs(e.coeffs[k]) / scale
			if p <= floor {
				p = 0
			}
			e.powers[k] = p
		}
	}

	picked := selectFrequencies(e.powers, e.flags, e.geom.FrequencyTableSize)

	cur := newBitCursor(data, offset+blockOffData)
	if e.geom.Mode == IndexMode {
		e.writeIndices(&cur, picked)
	} else {
		for k := 0; k < limit; k++ {
			bit := uint32(0)
			if e.flags[k] {
				bit = 1
			}
			cur.WriteBits(bit, 1)
		}
	}

	cur = newBitCursor(data, offset+blockOffData+e.geom.SelectorBytes())
	for j, sub := range e.subScales {
		lo, hi := e.geom.Band(j)
		for k := lo; k < hi; k++ {
			if !e.flags[k] {
				continue
			}
			cur.WriteBits(uint32(quantize(e.coeffs[k]/scale, sub)), 4)
		}
	}
}

// writeIndices packs the selected indices in ascending order. Unused slots
// repeat the last index so that a reader, which ORs every slot into its
// selection, stays aligned with the magnitude table.
func (e *Encoder) writeIndices(cur *bitCursor, picked int) {
	if picked == 0 {
		e.flags[0] = true
	}
	width := e.geom.IndexBitSize
	written, last := 0, 0
	for k, set := range e.flags {
		if set {
			cur.WriteBits(uint32(k), width)
			last = k
			written++
		}
	}
	for ; written < e.geom.FrequencyTableSize; written++ {
		cur.WriteBits(uint32(last), width)
	}
}

// quantize returns the 4-bit code for a coefficient relative to the master
// scale: bit 3 is the sign, bits 0-2 the magnitude in half-steps below the
// sub-band scale.
func quantize(v float64, sub uint8) uint8 {
	var sign uint8
	if v < 0 {
		sign = 0x8
	}
	m := math.Ceil(math.Min(-math.Log2(math.Abs(v))-float64(sub)*0.5, maxMantissa))
	return sign | uint8(math.Max(m, 0))
}

// dequantize is the inverse of quantize up to the rounding loss.
func dequantize(code, sub uint8, scale float64) float64 {
	v := math.Exp2(-float64(code&0x7)-float64(sub)*0.5) * scale
	if code&0x8 != 0 {
		return -v
	}
	return v
}

func checkChannels(channels [][]float32, want, start, length int) error {
	if start < 0 || length < 0 {
		return fmt.Errorf("start %d, length %d: %w", start, length, ErrInvalidArgument)
	}
	if len(channels) < want {
		return fmt.Errorf("have %d channels, need %d: %w", len(channels), want, ErrShortBuffer)
	}
	for ch := 0; ch < want; ch++ {
		if len(channels[ch]) < start+length {
			return fmt.Errorf("channel %d holds %d samples, need %d: %w",
				ch, len(channels[ch]), start+length, ErrShortBuffer)
		}
	}
	return nil
}
