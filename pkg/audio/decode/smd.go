// ABOUTME: SMD audio decoder adapter
// ABOUTME: Decodes a complete SMD0 stream to int32 samples aligned with the encoder input
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
	"github.com/Resonate-Protocol/smd-go/pkg/smd"
)

// SMDDecoder decodes SMD audio
type SMDDecoder struct {
	format audio.Format
	header smd.Header
}

// NewSMD creates a new SMD decoder
func NewSMD(format audio.Format) (Decoder, error) {
	if format.Codec != "smd" {
		return nil, fmt.Errorf("invalid codec for SMD decoder: %s", format.Codec)
	}
	return &SMDDecoder{format: format}, nil
}

// Decode renders the stream once. The decoder's one-block latency is
// skipped, so sample i of the output matches sample i of the encoder input.
// The last block wraps onto frame 0 for its overlap and is only fully
// reconstructed when the stream ends in silence.
func (d *SMDDecoder) Decode(data []byte) ([]int32, error) {
	dec, err := smd.NewDecoder(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open smd stream: %w", err)
	}
	h := dec.Header()
	d.header = h
	d.format.SampleRate = int(h.SampleRate)
	d.format.Channels = int(h.Channels)
	d.format.BitDepth = 24

	frames := int(h.SampleCount)
	planar := make([][]float32, h.Channels)
	for ch := range planar {
		planar[ch] = make([]float32, max(frames, dec.Latency()))
	}
	if frames == 0 {
		return []int32{}, nil
	}

	if err := dec.Read(planar, 0, dec.Latency()); err != nil {
		return nil, fmt.Errorf("smd latency: %w", err)
	}
	if err := dec.Read(planar, 0, frames); err != nil {
		return nil, fmt.Errorf("smd decode: %w", err)
	}
	return audio.Interleave(planar, 0, frames), nil
}

// Header returns the header of the last decoded stream
func (d *SMDDecoder) Header() smd.Header {
	return d.header
}

// Format returns the stream format
func (d *SMDDecoder) Format() audio.Format {
	return d.format
}

// Close releases decoder resources
func (d *SMDDecoder) Close() error {
	return nil
}
