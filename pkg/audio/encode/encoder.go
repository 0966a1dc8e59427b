// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for all audio encoders
package encode

// Encoder encodes interleaved PCM int32 samples to various formats
type Encoder interface {
	// Encode converts PCM samples to encoded audio data. Stateful encoders
	// may hold samples back until a later Encode or Flush.
	Encode(samples []int32) ([]byte, error)

	// Flush returns whatever encoded data is still held back
	Flush() ([]byte, error)

	// Close releases encoder resources
	Close() error
}
