// ABOUTME: Raw PCM sample packing
// ABOUTME: Writes 16-bit or 24-bit little-endian data for the WAV writer
package encode

import (
	"encoding/binary"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
)

// encodePCM packs samples as little-endian 16- or 24-bit PCM
func encodePCM(samples []int32, bitDepth int) []byte {
	if bitDepth == 24 {
		output := make([]byte, len(samples)*3)
		for i, sample := range samples {
			b := audio.SampleTo24Bit(sample)
			copy(output[i*3:], b[:])
		}
		return output
	}

	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleToInt16(sample)))
	}
	return output
}
