// ABOUTME: SMD audio encoder adapter
// ABOUTME: Feeds interleaved int32 samples to the SMD encoder and emits finished frame bytes
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
	"github.com/Resonate-Protocol/smd-go/pkg/smd"
)

// SMDEncoder streams an SMD0 file. The first HeaderSize bytes of the file
// are not emitted by Encode or Flush; write Header there once flushed.
type SMDEncoder struct {
	enc      *smd.Encoder
	channels int
	emitted  int
	flushed  bool
}

// NewSMD creates a new SMD encoder. Sample rate and channel count come from
// format; the codec parameters come from cfg.
func NewSMD(format audio.Format, cfg smd.Config) (*SMDEncoder, error) {
	if format.Codec != "smd" {
		return nil, fmt.Errorf("invalid codec for SMD encoder: %s", format.Codec)
	}

	cfg.SampleRate = format.SampleRate
	cfg.Channels = format.Channels
	enc, err := smd.NewEncoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create smd encoder: %w", err)
	}

	return &SMDEncoder{
		enc:      enc,
		channels: format.Channels,
		emitted:  smd.HeaderSize,
	}, nil
}

// Encode consumes whole interleaved frames and returns the frame blocks
// they completed
func (e *SMDEncoder) Encode(samples []int32) ([]byte, error) {
	if e.flushed {
		return nil, fmt.Errorf("smd encoder already flushed")
	}
	if len(samples)%e.channels != 0 {
		return nil, fmt.Errorf("%d samples is not a whole number of %d-channel frames", len(samples), e.channels)
	}

	if err := e.enc.WriteAll(audio.Deinterleave(samples, e.channels)); err != nil {
		return nil, fmt.Errorf("smd encode: %w", err)
	}
	return e.drain(), nil
}

// Flush encodes the pending partial block followed by one silent block, so
// the decoder has an overlap partner for the final input block
func (e *SMDEncoder) Flush() ([]byte, error) {
	if e.flushed {
		return nil, nil
	}
	e.flushed = true

	if err := e.enc.Flush(); err != nil {
		return nil, fmt.Errorf("smd flush: %w", err)
	}
	if e.enc.FrameCount() > 0 {
		silence := make([][]float32, e.channels)
		for ch := range silence {
			silence[ch] = make([]float32, e.enc.Geometry().FrequencyRange)
		}
		if err := e.enc.WriteAll(silence); err != nil {
			return nil, fmt.Errorf("smd flush: %w", err)
		}
	}
	return e.drain(), nil
}

// Header returns the 36-byte file header for the frames emitted so far
func (e *SMDEncoder) Header() []byte {
	return e.enc.Header().Bytes()
}

// StreamHeader returns the parsed header for the frames emitted so far
func (e *SMDEncoder) StreamHeader() smd.Header {
	return e.enc.Header()
}

// Bytes returns the complete stream, header included
func (e *SMDEncoder) Bytes() []byte {
	return e.enc.Bytes()
}

// Close releases resources
func (e *SMDEncoder) Close() error {
	return nil
}

// drain copies out the bytes written since the last call
func (e *SMDEncoder) drain() []byte {
	data := e.enc.Bytes()
	if len(data) <= e.emitted {
		return nil
	}
	out := append([]byte(nil), data[e.emitted:]...)
	e.emitted = len(data)
	return out
}
