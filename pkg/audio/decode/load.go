// ABOUTME: Whole-file audio loader
// ABOUTME: Picks a decoder by content or extension and returns a planar buffer
package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
	"github.com/Resonate-Protocol/smd-go/pkg/smd"
	"github.com/rs/zerolog/log"
)

// CodecFor names the codec of a file from its leading bytes, falling back to
// the extension
func CodecFor(path string, data []byte) (string, error) {
	if smd.Probe(data) {
		return "smd", nil
	}
	if len(data) >= 4 && string(data[:4]) == "fLaC" {
		return "flac", nil
	}
	if len(data) >= 4 && string(data[:4]) == "OggS" {
		return "opus", nil
	}
	if len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE" {
		return "wav", nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		return "mp3", nil
	case ".flac":
		return "flac", nil
	case ".opus":
		return "opus", nil
	case ".wav", ".wave":
		return "wav", nil
	case ".smd":
		return "smd", nil
	default:
		return "", fmt.Errorf("unrecognized audio file %s", filepath.Base(path))
	}
}

// Load reads and decodes a whole file
func Load(path string) (*audio.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return LoadBytes(path, data)
}

// LoadBytes decodes data, using path only to guess the codec
func LoadBytes(path string, data []byte) (*audio.Buffer, error) {
	codec, err := CodecFor(path, data)
	if err != nil {
		return nil, err
	}

	decoder, err := New(audio.Format{Codec: codec})
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	samples, err := decoder.Decode(data)
	if err != nil {
		return nil, err
	}

	format := decoder.Format()
	buf := &audio.Buffer{
		Format:  format,
		Samples: audio.Deinterleave(samples, format.Channels),
	}

	log.Debug().
		Str("file", filepath.Base(path)).
		Stringer("format", format).
		Int("frames", buf.Frames()).
		Dur("duration", buf.Duration()).
		Msg("audio loaded")

	return buf, nil
}
