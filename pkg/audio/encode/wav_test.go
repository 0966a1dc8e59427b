// ABOUTME: Tests for WAV encoder
// ABOUTME: Tests header layout and a write/load round trip
package encode

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
	"github.com/Resonate-Protocol/smd-go/pkg/audio/decode"
)

func TestWAVHeader(t *testing.T) {
	enc, err := NewWAV(audio.Format{Codec: "wav", SampleRate: 44100, Channels: 2, BitDepth: 16})
	if err != nil {
		t.Fatalf("NewWAV() failed: %v", err)
	}

	if _, err := enc.Encode(make([]int32, 10)); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	h := enc.Header()
	if len(h) != wavHeaderSize {
		t.Fatalf("header size = %d, want %d", len(h), wavHeaderSize)
	}
	if string(h[0:4]) != "RIFF" || string(h[8:12]) != "WAVE" || string(h[12:16]) != "fmt " || string(h[36:40]) != "data" {
		t.Errorf("bad chunk ids: %q", h)
	}
	if got := binary.LittleEndian.Uint32(h[4:]); got != 36+20 {
		t.Errorf("file size = %d, want %d", got, 56)
	}
	if got := binary.LittleEndian.Uint32(h[28:]); got != 44100*4 {
		t.Errorf("byte rate = %d, want %d", got, 44100*4)
	}
	if got := binary.LittleEndian.Uint32(h[40:]); got != 20 {
		t.Errorf("data size = %d, want 20", got)
	}
}

func TestNewWAV_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		format audio.Format
	}{
		{"wrong codec", audio.Format{Codec: "pcm", SampleRate: 44100, Channels: 2, BitDepth: 16}},
		{"8-bit", audio.Format{Codec: "wav", SampleRate: 44100, Channels: 2, BitDepth: 8}},
		{"no channels", audio.Format{Codec: "wav", SampleRate: 44100, BitDepth: 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWAV(tt.format); err == nil {
				t.Error("NewWAV() expected error, got nil")
			}
		})
	}
}

func TestWriteWAVRoundTrip(t *testing.T) {
	buf := audio.NewBuffer(audio.Format{Codec: "smd", SampleRate: 22050, Channels: 2}, 4)
	copy(buf.Samples[0], []float32{0, 0.5, -0.5, 0.25})
	copy(buf.Samples[1], []float32{-0.25, 0, 0.125, -1})

	for _, bitDepth := range []int{16, 24} {
		var out bytes.Buffer
		if err := WriteWAV(&out, buf, bitDepth); err != nil {
			t.Fatalf("WriteWAV(%d) failed: %v", bitDepth, err)
		}

		loaded, err := decode.LoadBytes("out.wav", out.Bytes())
		if err != nil {
			t.Fatalf("LoadBytes() failed: %v", err)
		}
		if loaded.Format.SampleRate != 22050 || loaded.Format.Channels != 2 || loaded.Format.BitDepth != bitDepth {
			t.Errorf("unexpected format %v", loaded.Format)
		}
		for ch := range buf.Samples {
			for i, want := range buf.Samples[ch] {
				if got := loaded.Samples[ch][i]; got != want {
					t.Errorf("%d-bit channel %d sample %d: got %v, want %v", bitDepth, ch, i, got, want)
				}
			}
		}
	}
}
