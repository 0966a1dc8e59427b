// ABOUTME: Lossy MDCT audio codec with a compact self-describing format
// ABOUTME: Encoder, Decoder, header parsing and the ORPH/SMD0 bit layout
// Package smd implements the SMD0 lossy audio codec.
//
// Each block of FrequencyRange samples per channel is overlapped with the
// previous block, windowed, and transformed with an MDCT. Only the
// FrequencyTableSize most significant coefficients below
// FrequencyUpperLimit are kept; their magnitudes are stored as 4-bit
// logarithmic codes relative to a per-block master scale and up to eight
// sub-band scales.
//
// Stream layout (all fields little-endian):
//
//	header (36 bytes)   magic "ORPH", data size, file type "SMD0", version,
//	                    sample rate, sample count, frame count,
//	                    channels, range, upper limit, table size
//	frames              frameCount x channels blocks, frame-major
//	  block             u32 master scale
//	                    8 x 4-bit sub-band scales
//	                    selector (bitmap or packed indices)
//	                    tableSize x 4-bit magnitude codes
//
// Decoded output lags the input by one block (see Decoder.Latency) and the
// decoder loops over the stream indefinitely.
//
// Example:
//
//	enc, err := smd.NewEncoder(smd.Config{SampleRate: 44100, Channels: 2})
//	err = enc.WriteAll(planar)
//	err = enc.Flush()
//	data := enc.Bytes()
//
//	dec, err := smd.NewDecoder(data)
//	err = dec.ReadFull(out)
package smd
