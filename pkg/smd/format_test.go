// ABOUTME: Tests for the SMD0 header
// ABOUTME: Covers serialization, probing and every header rejection path
package smd

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testHeader() Header {
	return Header{
		DataSize:            HeaderSize,
		SampleRate:          8000,
		Channels:            1,
		FrequencyRange:      32,
		FrequencyUpperLimit: 32,
		FrequencyTableSize:  8,
	}
}

func TestHeaderBytes(t *testing.T) {
	h := testHeader()
	h.SampleCount = 64
	h.FrameCount = 2
	h.DataSize = uint32(HeaderSize + 2*16)
	buf := h.Bytes()

	require.Len(t, buf, HeaderSize)
	require.Equal(t, []byte("ORPH"), buf[0:4])
	require.Equal(t, []byte("SMD0"), buf[8:12])
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[12:]))
	require.Equal(t, uint32(68), binary.LittleEndian.Uint32(buf[4:]))
	require.Equal(t, uint32(8000), binary.LittleEndian.Uint32(buf[16:]))
	require.Equal(t, uint32(64), binary.LittleEndian.Uint32(buf[20:]))
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[24:]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(buf[28:]))
	require.Equal(t, uint16(32), binary.LittleEndian.Uint16(buf[30:]))
	require.Equal(t, uint16(32), binary.LittleEndian.Uint16(buf[32:]))
	require.Equal(t, uint16(8), binary.LittleEndian.Uint16(buf[34:]))

	stream := append(buf, make([]byte, 32)...)
	parsed, err := ParseHeader(stream)
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestProbe(t *testing.T) {
	buf := testHeader().Bytes()
	require.True(t, Probe(buf))
	require.True(t, Probe(buf[:4]))
	require.False(t, Probe(buf[:3]))
	require.False(t, Probe(nil))

	buf[0] ^= 0xFF
	require.False(t, Probe(buf))
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(h *Header, buf []byte) []byte
		wantErr error
	}{
		{
			name:    "short buffer",
			mutate:  func(_ *Header, buf []byte) []byte { return buf[:HeaderSize-1] },
			wantErr: ErrTruncated,
		},
		{
			name: "bad magic",
			mutate: func(_ *Header, buf []byte) []byte {
				buf[0] = 'X'
				return buf
			},
			wantErr: ErrBadMagic,
		},
		{
			name: "data size past end",
			mutate: func(h *Header, buf []byte) []byte {
				h.DataSize = HeaderSize + 1
				h.put(buf)
				return buf
			},
			wantErr: ErrTruncated,
		},
		{
			name: "bad file type",
			mutate: func(_ *Header, buf []byte) []byte {
				copy(buf[8:], "SMD1")
				return buf
			},
			wantErr: ErrBadFileType,
		},
		{
			name: "bad version",
			mutate: func(_ *Header, buf []byte) []byte {
				binary.LittleEndian.PutUint32(buf[12:], 1)
				return buf
			},
			wantErr: ErrBadVersion,
		},
		{
			name: "zero sample rate",
			mutate: func(h *Header, buf []byte) []byte {
				h.SampleRate = 0
				h.put(buf)
				return buf
			},
			wantErr: ErrInvalidHeader,
		},
		{
			name: "zero channels",
			mutate: func(h *Header, buf []byte) []byte {
				h.Channels = 0
				h.put(buf)
				return buf
			},
			wantErr: ErrInvalidHeader,
		},
		{
			name: "range not multiple of 32",
			mutate: func(h *Header, buf []byte) []byte {
				h.FrequencyRange = 33
				h.put(buf)
				return buf
			},
			wantErr: ErrInvalidHeader,
		},
		{
			name: "upper limit above range",
			mutate: func(h *Header, buf []byte) []byte {
				h.FrequencyUpperLimit = 64
				h.put(buf)
				return buf
			},
			wantErr: ErrInvalidHeader,
		},
		{
			name: "table size not multiple of 8",
			mutate: func(h *Header, buf []byte) []byte {
				h.FrequencyTableSize = 7
				h.put(buf)
				return buf
			},
			wantErr: ErrInvalidHeader,
		},
		{
			name: "sample count beyond frames",
			mutate: func(h *Header, buf []byte) []byte {
				h.SampleCount = 1
				h.put(buf)
				return buf
			},
			wantErr: ErrInvalidHeader,
		},
		{
			name: "frames beyond data size",
			mutate: func(h *Header, buf []byte) []byte {
				h.FrameCount = 1
				h.put(buf)
				return buf
			},
			wantErr: ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHeader()
			buf := tt.mutate(&h, h.Bytes())
			_, err := ParseHeader(buf)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHeaderDurationAndBitrate(t *testing.T) {
	h := testHeader()
	h.SampleCount = 16000
	require.Equal(t, 2*time.Second, h.Duration())

	// 16-byte blocks, 250 frames per second
	require.InDelta(t, 32000.0, h.Bitrate(), 1e-9)

	require.Zero(t, Header{}.Duration())
	require.Zero(t, Header{}.Bitrate())
}
