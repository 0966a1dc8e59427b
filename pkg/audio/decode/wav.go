// ABOUTME: WAV audio decoder
// ABOUTME: Parses RIFF/WAVE PCM and float files into int32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// WAVDecoder decodes WAV audio
type WAVDecoder struct {
	format audio.Format
}

// NewWAV creates a new WAV decoder
func NewWAV(format audio.Format) (Decoder, error) {
	if format.Codec != "wav" {
		return nil, fmt.Errorf("invalid codec for WAV decoder: %s", format.Codec)
	}
	return &WAVDecoder{format: format}, nil
}

type wavFmt struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Decode parses a whole WAV file. 16- and 24-bit integer PCM and 32-bit
// float are supported.
func (d *WAVDecoder) Decode(data []byte) ([]int32, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		format  wavFmt
		haveFmt bool
		pcm     []byte
	)
	for pos := 12; pos+8 <= len(data); {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4:]))
		body := data[pos+8:]
		if size > len(body) {
			// Streaming writers leave the data size unset; take what is there.
			size = len(body)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("wav fmt chunk too short: %d bytes", size)
			}
			format = wavFmt{
				AudioFormat:   binary.LittleEndian.Uint16(body[0:]),
				NumChannels:   binary.LittleEndian.Uint16(body[2:]),
				SampleRate:    binary.LittleEndian.Uint32(body[4:]),
				ByteRate:      binary.LittleEndian.Uint32(body[8:]),
				BlockAlign:    binary.LittleEndian.Uint16(body[12:]),
				BitsPerSample: binary.LittleEndian.Uint16(body[14:]),
			}
			if format.AudioFormat == wavFormatExtensible && size >= 26 {
				// Sub-format GUID starts with the plain format code
				format.AudioFormat = binary.LittleEndian.Uint16(body[24:])
			}
			haveFmt = true
		case "data":
			pcm = body
		}
		// Chunks are padded to even sizes
		pos += 8 + size + size&1
	}

	if !haveFmt {
		return nil, fmt.Errorf("wav file has no fmt chunk")
	}
	if pcm == nil {
		return nil, fmt.Errorf("wav file has no data chunk")
	}
	if format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, fmt.Errorf("wav file has %d channels at %d Hz", format.NumChannels, format.SampleRate)
	}

	d.format.SampleRate = int(format.SampleRate)
	d.format.Channels = int(format.NumChannels)
	d.format.BitDepth = int(format.BitsPerSample)

	switch {
	case format.AudioFormat == wavFormatPCM && (format.BitsPerSample == 16 || format.BitsPerSample == 24):
		return decodePCM(pcm, int(format.BitsPerSample)), nil
	case format.AudioFormat == wavFormatFloat && format.BitsPerSample == 32:
		samples := make([]int32, len(pcm)/4)
		for i := range samples {
			v := math.Float32frombits(binary.LittleEndian.Uint32(pcm[i*4:]))
			samples[i] = audio.SampleFromFloat(v)
		}
		d.format.BitDepth = 24
		return samples, nil
	default:
		return nil, fmt.Errorf("unsupported wav encoding: format %d, %d bits", format.AudioFormat, format.BitsPerSample)
	}
}

// Format returns the stream format
func (d *WAVDecoder) Format() audio.Format {
	return d.format
}

// Close releases decoder resources
func (d *WAVDecoder) Close() error {
	return nil
}
