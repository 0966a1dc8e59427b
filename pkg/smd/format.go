// ABOUTME: SMD0 container constants and the 36-byte stream header
// ABOUTME: Header parsing, validation, serialization and the magic probe
package smd

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// Magic is the container signature, the bytes "ORPH"
	Magic uint32 = 'O' | 'R'<<8 | 'P'<<16 | 'H'<<24

	// FileTypeSMD0 tags the simple MDCT sub-format, the bytes "SMD0"
	FileTypeSMD0 uint32 = 'S' | 'M'<<8 | 'D'<<16 | '0'<<24

	// Version is the only SMD0 revision this package reads and writes
	Version uint32 = 0

	// HeaderSize is the fixed header length; frame blocks start here
	HeaderSize = 36
)

// Header field offsets
const (
	offMagic          = 0
	offDataSize       = 4
	offFileType       = 8
	offVersion        = 12
	offSampleRate     = 16
	offSampleCount    = 20
	offFrameCount     = 24
	offChannels       = 28
	offFrequencyRange = 30
	offUpperLimit     = 32
	offTableSize      = 34
)

// Frame block layout: master scale, 8 sub-band nibbles, then the selector
const (
	blockOffMasterScale = 0
	blockOffSubScales   = 4
	blockOffData        = 8
)

const (
	// DefaultFrequencyRange is the half-window size used when none is given
	DefaultFrequencyRange = 1024

	// DefaultInitSampleCount sizes the encoder's initial buffer
	DefaultInitSampleCount = 4096

	// pcmScale maps nominal [-1, 1] samples to the 16-bit integer range
	pcmScale = 1<<16 - 1

	maxSubBands  = 8
	maxSubScale  = 15
	maxMantissa  = 7
	deadZoneBase = -7
)

var order = binary.LittleEndian

// Header holds the variable fields of the stream header. Magic, file type
// and version are implied.
type Header struct {
	DataSize            uint32
	SampleRate          uint32
	SampleCount         uint32
	FrameCount          uint32
	Channels            uint16
	FrequencyRange      uint16
	FrequencyUpperLimit uint16
	FrequencyTableSize  uint16
}

// Probe reports whether buf starts with the container magic number.
func Probe(buf []byte) bool {
	return len(buf) >= 4 && order.Uint32(buf[offMagic:]) == Magic
}

// ParseHeader decodes and validates the header at the start of buf.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("header needs %d bytes, have %d: %w", HeaderSize, len(buf), ErrTruncated)
	}
	if !Probe(buf) {
		return Header{}, fmt.Errorf("magic %#08x: %w", order.Uint32(buf[offMagic:]), ErrBadMagic)
	}

	h := Header{
		DataSize:            order.Uint32(buf[offDataSize:]),
		SampleRate:          order.Uint32(buf[offSampleRate:]),
		SampleCount:         order.Uint32(buf[offSampleCount:]),
		FrameCount:          order.Uint32(buf[offFrameCount:]),
		Channels:            order.Uint16(buf[offChannels:]),
		FrequencyRange:      order.Uint16(buf[offFrequencyRange:]),
		FrequencyUpperLimit: order.Uint16(buf[offUpperLimit:]),
		FrequencyTableSize:  order.Uint16(buf[offTableSize:]),
	}

	if int64(h.DataSize) > int64(len(buf)) {
		return Header{}, fmt.Errorf("data size %d exceeds buffer length %d: %w", h.DataSize, len(buf), ErrTruncated)
	}
	if fileType := order.Uint32(buf[offFileType:]); fileType != FileTypeSMD0 {
		return Header{}, fmt.Errorf("file type %#08x: %w", fileType, ErrBadFileType)
	}
	if version := order.Uint32(buf[offVersion:]); version != Version {
		return Header{}, fmt.Errorf("version %d: %w", version, ErrBadVersion)
	}
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func (h Header) validate() error {
	if h.SampleRate == 0 {
		return fmt.Errorf("sample rate must be positive: %w", ErrInvalidHeader)
	}
	if uint64(h.SampleCount) > uint64(h.FrequencyRange)*uint64(h.FrameCount) {
		return fmt.Errorf("sample count %d exceeds %d frames of %d: %w",
			h.SampleCount, h.FrameCount, h.FrequencyRange, ErrInvalidHeader)
	}
	if h.Channels == 0 {
		return fmt.Errorf("channel count must be positive: %w", ErrInvalidHeader)
	}
	if err := validateGeometry(int(h.FrequencyRange), int(h.FrequencyUpperLimit), int(h.FrequencyTableSize)); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidHeader)
	}
	if need := h.Geometry().DataSize(int(h.FrameCount)); int64(h.DataSize) < int64(need) {
		return fmt.Errorf("data size %d too small for %d frames (%d bytes): %w",
			h.DataSize, h.FrameCount, need, ErrTruncated)
	}
	return nil
}

// put writes the full header, including the fixed fields, into buf.
func (h Header) put(buf []byte) {
	order.PutUint32(buf[offMagic:], Magic)
	order.PutUint32(buf[offDataSize:], h.DataSize)
	order.PutUint32(buf[offFileType:], FileTypeSMD0)
	order.PutUint32(buf[offVersion:], Version)
	order.PutUint32(buf[offSampleRate:], h.SampleRate)
	order.PutUint32(buf[offSampleCount:], h.SampleCount)
	order.PutUint32(buf[offFrameCount:], h.FrameCount)
	order.PutUint16(buf[offChannels:], h.Channels)
	order.PutUint16(buf[offFrequencyRange:], h.FrequencyRange)
	order.PutUint16(buf[offUpperLimit:], h.FrequencyUpperLimit)
	order.PutUint16(buf[offTableSize:], h.FrequencyTableSize)
}

// Bytes returns the serialized 36-byte header.
func (h Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)
	h.put(buf)
	return buf
}

// Geometry derives the frame layout described by the header.
func (h Header) Geometry() Geometry {
	return newGeometry(int(h.Channels), int(h.FrequencyRange), int(h.FrequencyUpperLimit), int(h.FrequencyTableSize))
}

// Duration returns the playback length of SampleCount samples.
func (h Header) Duration() time.Duration {
	if h.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(h.SampleCount) / float64(h.SampleRate) * float64(time.Second))
}

// Bitrate returns the payload rate in bits per second.
func (h Header) Bitrate() float64 {
	if h.FrequencyRange == 0 {
		return 0
	}
	g := h.Geometry()
	framesPerSecond := float64(h.SampleRate) / float64(h.FrequencyRange)
	return float64(g.BlockSize()*g.Channels*8) * framesPerSecond
}
