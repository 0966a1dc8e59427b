// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface with oto and malgo implementations
// Package output provides audio playback backends.
//
// Oto is the default and plays 16-bit PCM. Malgo drives miniaudio through a
// callback fed from a ring buffer and can play 16-, 24- or 32-bit samples.
// Both take interleaved int32 samples in 24-bit range and apply software
// volume that is safe to change from another goroutine.
//
// Example:
//
//	out, err := output.New("oto", 16)
//	err = out.Open(44100, 2)
//	err = out.Write(samples)
package output
