// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes a complete .opus file to int32 samples through libopusfile
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// opusSampleRate is the rate libopusfile always decodes at
const opusSampleRate = 48000

// opusMaxFrame is the largest Opus frame per channel (120ms at 48kHz)
const opusMaxFrame = 5760

// OpusDecoder decodes Ogg Opus files
type OpusDecoder struct {
	format audio.Format
}

// NewOpus creates a new Opus decoder
func NewOpus(format audio.Format) (Decoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus decoder: %s", format.Codec)
	}
	return &OpusDecoder{format: format}, nil
}

// Decode converts a whole Ogg Opus file to int32 samples. Opus output is
// always 16-bit at 48kHz.
func (d *OpusDecoder) Decode(data []byte) ([]int32, error) {
	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open opus stream: %w", err)
	}
	defer stream.Close()

	pcm16 := make([]int16, opusMaxFrame*channels)
	var samples []int32
	for {
		n, err := stream.Read(pcm16)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		for _, s := range pcm16[:n*channels] {
			samples = append(samples, audio.SampleFromInt16(s))
		}
	}

	d.format.SampleRate = opusSampleRate
	d.format.Channels = channels
	d.format.BitDepth = 16
	return samples, nil
}

// opusChannels reads the channel count from the OpusHead packet on the
// first Ogg page
func opusChannels(data []byte) (int, error) {
	const pageHeader = 27
	if len(data) < pageHeader || string(data[:4]) != "OggS" {
		return 0, fmt.Errorf("not an ogg stream")
	}
	start := pageHeader + int(data[26])
	if len(data) < start+19 || string(data[start:start+8]) != "OpusHead" {
		return 0, fmt.Errorf("ogg stream does not start with an OpusHead packet")
	}
	channels := int(data[start+9])
	if channels == 0 {
		return 0, fmt.Errorf("opus stream declares no channels")
	}
	return channels, nil
}

// Format returns the stream format
func (d *OpusDecoder) Format() audio.Format {
	return d.format
}

// Close releases decoder resources
func (d *OpusDecoder) Close() error {
	return nil
}
