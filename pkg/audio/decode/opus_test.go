// ABOUTME: Tests for the Ogg Opus decoder
// ABOUTME: Tests decoder creation, OpusHead parsing and rejection of broken streams
package decode

import (
	"strings"
	"testing"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
)

// oggOpusHead builds a first Ogg page holding only an OpusHead packet. The
// page checksum is left zero.
func oggOpusHead(channels byte) []byte {
	page := make([]byte, 27)
	copy(page, "OggS")
	page[5] = 0x02 // beginning of stream
	page[26] = 1   // one segment
	page = append(page, 19)

	head := []byte("OpusHead")
	head = append(head, 1, channels, 0x38, 0x01, 0x80, 0xBB, 0, 0, 0, 0, 0)
	return append(page, head...)
}

func TestNewOpus(t *testing.T) {
	decoder, err := NewOpus(audio.Format{Codec: "opus"})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	if decoder == nil {
		t.Fatal("expected decoder to be created")
	}
}

func TestNewOpus_InvalidCodec(t *testing.T) {
	decoder, err := NewOpus(audio.Format{Codec: "mp3"})
	if err == nil {
		t.Fatal("expected error for invalid codec, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for invalid codec")
	}

	expectedError := "invalid codec for Opus decoder: mp3"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestOpusChannels(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    int
		wantErr string
	}{
		{"mono", oggOpusHead(1), 1, ""},
		{"stereo", oggOpusHead(2), 2, ""},
		{"no channels", oggOpusHead(0), 0, "no channels"},
		{"not ogg", []byte("RIFF0000WAVEfmt "), 0, "not an ogg stream"},
		{"short page", []byte("OggS\x00\x02"), 0, "not an ogg stream"},
		{"vorbis", append(oggOpusHead(2)[:28], []byte("\x01vorbis\x00\x00\x00\x00\x02\x44\xac")...), 0, "OpusHead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := opusChannels(tt.data)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d channels, got %d", tt.want, got)
			}
		})
	}
}

func TestOpusDecode_InvalidStream(t *testing.T) {
	for name, data := range map[string][]byte{
		"not ogg":     []byte("not an opus file"),
		"header only": oggOpusHead(2),
	} {
		t.Run(name, func(t *testing.T) {
			decoder, err := NewOpus(audio.Format{Codec: "opus"})
			if err != nil {
				t.Fatalf("failed to create decoder: %v", err)
			}

			if _, err := decoder.Decode(data); err == nil {
				t.Error("expected error decoding a broken stream")
			}
		})
	}
}
