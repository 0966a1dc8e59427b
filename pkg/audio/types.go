// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats and planar float PCM buffers
package audio

import (
	"fmt"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes an audio stream
type Format struct {
	Codec      string // "mp3", "flac", "wav", "opus", "smd"
	SampleRate int
	Channels   int
	BitDepth   int
}

func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch %dbit", f.Codec, f.SampleRate, f.Channels, f.BitDepth)
}

// Buffer holds planar PCM, one slice per channel, nominally in [-1, 1]
type Buffer struct {
	Format  Format
	Samples [][]float32
}

// NewBuffer allocates a silent buffer of frames samples per channel
func NewBuffer(format Format, frames int) *Buffer {
	samples := make([][]float32, format.Channels)
	for ch := range samples {
		samples[ch] = make([]float32, frames)
	}
	return &Buffer{Format: format, Samples: samples}
}

// Frames returns the number of samples per channel
func (b *Buffer) Frames() int {
	if len(b.Samples) == 0 {
		return 0
	}
	return len(b.Samples[0])
}

// Duration returns the playback length of the buffer
func (b *Buffer) Duration() time.Duration {
	if b.Format.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Format.SampleRate)
}

// Truncate drops samples past frames in every channel
func (b *Buffer) Truncate(frames int) {
	for ch := range b.Samples {
		if len(b.Samples[ch]) > frames {
			b.Samples[ch] = b.Samples[ch][:frames]
		}
	}
}
