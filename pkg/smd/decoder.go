// ABOUTME: Streaming SMD decoder
// ABOUTME: Unpacks frame blocks, runs the inverse MDCT and overlap-adds into PCM
package smd

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Decoder reads planar float PCM from an SMD0 stream. Decoding loops: after
// the last frame the cursor wraps to frame 0, so callers wanting a finite
// rendition stop after Header().SampleCount samples. The source buffer is
// borrowed and must not be modified while the decoder is in use. A Decoder
// is not safe for concurrent use.
type Decoder struct {
	geom   Geometry
	header Header
	data   []byte

	window    []float64
	transform *mdct

	samples   []float64
	coeffs    []float64
	flags     []bool
	subScales []uint8

	// prevOutputs holds each channel's windowed second half for overlap-add
	prevOutputs [][]float64

	work       [][]float32
	workOffset int

	frame int
}

// NewDecoder parses and validates the header of data.
func NewDecoder(data []byte) (*Decoder, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	geom := h.Geometry()
	n := geom.FrequencyRange
	d := &Decoder{
		geom:        geom,
		header:      h,
		data:        data,
		window:      buildWindow(n),
		transform:   newMDCT(n),
		samples:     make([]float64, 2*n),
		coeffs:      make([]float64, n),
		flags:       make([]bool, geom.FrequencyUpperLimit),
		subScales:   make([]uint8, geom.SubBands()),
		prevOutputs: make([][]float64, geom.Channels),
		work:        make([][]float32, geom.Channels),
		workOffset:  n,
	}
	for ch := range d.prevOutputs {
		d.prevOutputs[ch] = make([]float64, n)
		d.work[ch] = make([]float32, n)
	}
	return d, nil
}

// Header returns the parsed stream header.
func (d *Decoder) Header() Header {
	return d.header
}

// Geometry returns the frame layout of the stream.
func (d *Decoder) Geometry() Geometry {
	return d.geom
}

// Frame returns the index of the next frame to decode.
func (d *Decoder) Frame() int {
	return d.frame
}

// Latency is the number of leading output samples per channel that precede
// the first encoded input sample.
func (d *Decoder) Latency() int {
	return d.geom.FrequencyRange
}

// Seek moves the cursor to frame and drops the overlap and leftover state.
func (d *Decoder) Seek(frame int) error {
	if frame < 0 || (frame > 0 && frame >= int(d.header.FrameCount)) {
		return fmt.Errorf("seek to frame %d of %d: %w", frame, d.header.FrameCount, ErrInvalidArgument)
	}
	d.frame = frame
	d.workOffset = d.geom.FrequencyRange
	for _, prev := range d.prevOutputs {
		clear(prev)
	}
	return nil
}

// Read decodes length samples per channel into channels starting at start.
func (d *Decoder) Read(channels [][]float32, start, length int) error {
	if err := checkChannels(channels, d.geom.Channels, start, length); err != nil {
		return fmt.Errorf("decoder read: %w", err)
	}
	n := d.geom.FrequencyRange

	if d.workOffset < n {
		take := min(length, n-d.workOffset)
		for ch := 0; ch < d.geom.Channels; ch++ {
			copy(channels[ch][start:start+take], d.work[ch][d.workOffset:])
		}
		start += take
		length -= take
		d.workOffset += take
	}

	for length >= n {
		d.decodeFrame(channels, start)
		start += n
		length -= n
	}

	if length > 0 {
		d.decodeFrame(d.work, 0)
		for ch := 0; ch < d.geom.Channels; ch++ {
			copy(channels[ch][start:start+length], d.work[ch])
		}
		d.workOffset = length
	}
	return nil
}

// ReadFull fills every sample of channels; all slices must share a length.
func (d *Decoder) ReadFull(channels [][]float32) error {
	if len(channels) == 0 {
		return fmt.Errorf("decoder read: no channels: %w", ErrShortBuffer)
	}
	return d.Read(channels, 0, len(channels[0]))
}

// decodeFrame writes FrequencyRange samples per channel at out[ch][start:].
// An empty stream decodes to silence.
func (d *Decoder) decodeFrame(out [][]float32, start int) {
	n := d.geom.FrequencyRange
	if d.header.FrameCount == 0 {
		for ch := 0; ch < d.geom.Channels; ch++ {
			clear(out[ch][start : start+n])
		}
		return
	}
	for ch := 0; ch < d.geom.Channels; ch++ {
		d.decodeBlock(ch, out[ch][start:start+n])
	}
	d.frame = (d.frame + 1) % int(d.header.FrameCount)
}

func (d *Decoder) decodeBlock(ch int, out []float32) {
	n := d.geom.FrequencyRange
	limit := d.geom.FrequencyUpperLimit
	offset := d.geom.FrameOffset(d.frame, ch)

	scale := float64(order.Uint32(d.data[offset+blockOffMasterScale:]))
	for j := range d.subScales {
		d.subScales[j] = readNibble(d.data, offset+blockOffSubScales+j>>1, j&1)
	}

	clear(d.flags)
	cur := newBitCursor(d.data, offset+blockOffData)
	if d.geom.Mode == IndexMode {
		for i := 0; i < d.geom.FrequencyTableSize; i++ {
			if k := int(cur.ReadBits(d.geom.IndexBitSize)); k < limit {
				d.flags[k] = true
			}
		}
	} else {
		for k := 0; k < limit; k++ {
			d.flags[k] = cur.ReadBits(1) == 1
		}
	}

	clear(d.coeffs)
	cur = newBitCursor(d.data, offset+blockOffData+d.geom.SelectorBytes())
	for j, sub := range d.subScales {
		lo, hi := d.geom.Band(j)
		for k := lo; k < hi; k++ {
			if d.flags[k] {
				d.coeffs[k] = dequantize(uint8(cur.ReadBits(4)), sub, scale)
			}
		}
	}

	d.transform.Inverse(d.coeffs, d.samples)
	floats.Mul(d.samples, d.window)

	prev := d.prevOutputs[ch]
	for j := 0; j < n; j++ {
		out[j] = float32(prev[j] + d.samples[j]/pcmScale)
		prev[j] = d.samples[n+j] / pcmScale
	}
}
