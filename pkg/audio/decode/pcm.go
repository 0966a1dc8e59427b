// ABOUTME: Raw PCM sample unpacking
// ABOUTME: Shared by the WAV and MP3 loaders for 16-bit and 24-bit little-endian data
package decode

import (
	"encoding/binary"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
)

// decodePCM converts little-endian 16- or 24-bit PCM. A trailing partial
// sample is ignored.
func decodePCM(data []byte, bitDepth int) []int32 {
	if bitDepth == 24 {
		numSamples := len(data) / 3
		samples := make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			b := [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
			samples[i] = audio.SampleFrom24Bit(b)
		}
		return samples
	}

	numSamples := len(data) / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return samples
}
