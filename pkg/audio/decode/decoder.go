// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all audio decoders plus the codec factory
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
)

// Decoder decodes audio in various formats to interleaved PCM int32 samples
// in the 24-bit range
type Decoder interface {
	// Decode converts encoded audio data to PCM samples
	Decode(data []byte) ([]int32, error)

	// Format reports the stream format. Decoders that read it from the
	// stream update it on Decode.
	Format() audio.Format

	// Close releases decoder resources
	Close() error
}

// New creates the decoder for format.Codec
func New(format audio.Format) (Decoder, error) {
	switch format.Codec {
	case "wav":
		return NewWAV(format)
	case "mp3":
		return NewMP3(format)
	case "flac":
		return NewFLAC(format)
	case "opus":
		return NewOpus(format)
	case "smd":
		return NewSMD(format)
	default:
		return nil, fmt.Errorf("unsupported codec: %s", format.Codec)
	}
}
