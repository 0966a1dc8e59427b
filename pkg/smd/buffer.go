// ABOUTME: Owned, zero-filled byte vector backing the encoder output
// ABOUTME: Grows by doubling; growth invalidates earlier views
package smd

type growBuffer struct {
	data []byte
}

func newGrowBuffer(size int) *growBuffer {
	return &growBuffer{data: make([]byte, max(size, HeaderSize))}
}

// Grow doubles the buffer until it holds need bytes. It reports whether the
// backing array was replaced.
func (b *growBuffer) Grow(need int) bool {
	if need <= len(b.data) {
		return false
	}
	size := len(b.data)
	for size < need {
		size <<= 1
	}
	data := make([]byte, size)
	copy(data, b.data)
	b.data = data
	return true
}

// Bytes returns the whole backing array.
func (b *growBuffer) Bytes() []byte {
	return b.data
}

// Cap returns the current capacity in bytes.
func (b *growBuffer) Cap() int {
	return len(b.data)
}
