// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the PCM types shared by the loaders, the SMD
// adapters and playback.
//
// Audio moves through the codec as planar float32 slices, one per channel,
// nominally in [-1, 1]. Playback and the integer codecs use interleaved int32
// samples in the 24-bit range; Interleave and Deinterleave convert between
// the two.
//
// Example:
//
//	format := audio.Format{
//	    Codec:      "wav",
//	    SampleRate: 44100,
//	    Channels:   2,
//	    BitDepth:   16,
//	}
//	buf := audio.NewBuffer(format, 4096)
//	pcm := audio.Interleave(buf.Samples, 0, buf.Frames())
package audio
