// ABOUTME: Audio encoder package for encoding PCM to various formats
// ABOUTME: Provides Encoder interface and implementations for WAV and SMD
// Package encode provides audio encoders for various codecs.
//
// Supports: WAV (16-bit and 24-bit PCM) and SMD
//
// All encoders accept interleaved int32 samples in 24-bit range. File
// formats with a fixed-size header (WAV, SMD) emit body bytes from Encode
// and Flush and expose the final header through Header, so a caller can
// stream to disk and patch the header in place at the end.
//
// Example:
//
//	enc, err := encode.NewSMD(format, smd.Config{FrequencyRange: 1024})
//	f.Write(enc.Header())
//	body, err := enc.Encode(samples)
//	f.Write(body)
//	tail, err := enc.Flush()
//	f.Write(tail)
//	f.WriteAt(enc.Header(), 0)
package encode
