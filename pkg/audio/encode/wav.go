// ABOUTME: WAV audio encoder
// ABOUTME: Writes RIFF/WAVE PCM headers and sample data
package encode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
)

// wavHeaderSize is the canonical 44-byte PCM header
const wavHeaderSize = 44

// wavHeader is the canonical PCM WAV header
type wavHeader struct {
	RiffID   [4]byte // "RIFF"
	FileSize uint32  // 36 + DataSize
	WaveID   [4]byte // "WAVE"

	FmtID         [4]byte // "fmt "
	FmtSize       uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample/8
	BlockAlign    uint16 // NumChannels * BitsPerSample/8
	BitsPerSample uint16

	DataID   [4]byte // "data"
	DataSize uint32
}

// WAVEncoder encodes PCM audio into a WAV file body
type WAVEncoder struct {
	format   audio.Format
	dataSize int
}

// NewWAV creates a new WAV encoder
func NewWAV(format audio.Format) (*WAVEncoder, error) {
	if format.Codec != "wav" {
		return nil, fmt.Errorf("invalid codec for WAV encoder: %s", format.Codec)
	}
	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}
	if format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav format: %d channels at %d Hz", format.Channels, format.SampleRate)
	}
	return &WAVEncoder{format: format}, nil
}

// Encode converts samples to PCM data chunk bytes
func (e *WAVEncoder) Encode(samples []int32) ([]byte, error) {
	out := encodePCM(samples, e.format.BitDepth)
	e.dataSize += len(out)
	return out, nil
}

// Flush is a no-op; the header is written separately
func (e *WAVEncoder) Flush() ([]byte, error) {
	return nil, nil
}

// Header returns the 44-byte header for the data encoded so far
func (e *WAVEncoder) Header() []byte {
	blockAlign := e.format.Channels * e.format.BitDepth / 8
	h := wavHeader{
		RiffID:        [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      uint32(wavHeaderSize - 8 + e.dataSize),
		WaveID:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   uint16(e.format.Channels),
		SampleRate:    uint32(e.format.SampleRate),
		ByteRate:      uint32(e.format.SampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(e.format.BitDepth),
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(e.dataSize),
	}

	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail
	_ = binary.Write(&buf, binary.LittleEndian, &h)
	return buf.Bytes()
}

// Close releases resources
func (e *WAVEncoder) Close() error {
	return nil
}

// WriteWAV writes buf as a complete WAV file
func WriteWAV(w io.Writer, buf *audio.Buffer, bitDepth int) error {
	format := buf.Format
	format.Codec = "wav"
	format.BitDepth = bitDepth
	enc, err := NewWAV(format)
	if err != nil {
		return err
	}
	defer enc.Close()

	data, err := enc.Encode(audio.Interleave(buf.Samples, 0, buf.Frames()))
	if err != nil {
		return err
	}
	if _, err := w.Write(enc.Header()); err != nil {
		return fmt.Errorf("failed to write wav header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write wav data: %w", err)
	}
	return nil
}
