// ABOUTME: Sample conversion helpers
// ABOUTME: Converts between int16, packed 24-bit, int32 and float samples and layouts
package audio

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// SampleToFloat maps a 24-bit sample to [-1, 1)
func SampleToFloat(sample int32) float32 {
	return float32(sample) / (Max24Bit + 1)
}

// SampleFromFloat maps a float sample to the 24-bit range, clipping
func SampleFromFloat(sample float32) int32 {
	v := float64(sample) * (Max24Bit + 1)
	switch {
	case v >= Max24Bit:
		return Max24Bit
	case v <= Min24Bit:
		return Min24Bit
	case v < 0:
		return int32(v - 0.5)
	default:
		return int32(v + 0.5)
	}
}

// Interleave converts length planar samples starting at start into
// interleaved 24-bit samples
func Interleave(planar [][]float32, start, length int) []int32 {
	channels := len(planar)
	out := make([]int32, length*channels)
	for i := 0; i < length; i++ {
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = SampleFromFloat(planar[ch][start+i])
		}
	}
	return out
}

// Deinterleave splits interleaved 24-bit samples into planar floats. A
// trailing partial frame is dropped.
func Deinterleave(samples []int32, channels int) [][]float32 {
	if channels <= 0 {
		return nil
	}
	frames := len(samples) / channels
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out[ch][i] = SampleToFloat(samples[i*channels+ch])
		}
	}
	return out
}
