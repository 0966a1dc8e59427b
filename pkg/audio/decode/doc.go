// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for WAV, FLAC, MP3, Opus, SMD
// Package decode provides audio decoders for various codecs.
//
// Supports: WAV (16-bit, 24-bit, float), FLAC, MP3, Ogg Opus and SMD.
// The Opus loader needs libopus and libopusfile at build time.
//
// All decoders implement the Decoder interface and output interleaved int32
// samples in 24-bit range. Load wraps the lot for whole files and returns
// planar float buffers ready for the SMD encoder.
//
// Example:
//
//	buf, err := decode.Load("song.flac")
//	fmt.Println(buf.Format, buf.Duration())
package decode
