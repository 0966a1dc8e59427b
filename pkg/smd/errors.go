// ABOUTME: Sentinel errors for the SMD codec
// ABOUTME: Returned wrapped with context; match them with errors.Is
package smd

import "errors"

var (
	// ErrInvalidConfig is returned by NewEncoder for out-of-range settings
	ErrInvalidConfig = errors.New("smd: invalid encoder config")

	// ErrBadMagic means the buffer does not start with the ORPH signature
	ErrBadMagic = errors.New("smd: bad magic number")

	// ErrBadFileType means the container holds something other than SMD0
	ErrBadFileType = errors.New("smd: unsupported file type")

	// ErrBadVersion means the SMD0 revision is not supported
	ErrBadVersion = errors.New("smd: unsupported version")

	// ErrInvalidHeader covers inconsistent header fields
	ErrInvalidHeader = errors.New("smd: invalid header")

	// ErrTruncated means the buffer is shorter than the header claims
	ErrTruncated = errors.New("smd: truncated stream")

	// ErrShortBuffer means a caller-provided sample buffer is too small
	ErrShortBuffer = errors.New("smd: short buffer")

	// ErrStreamFull means another frame would overflow the 32-bit header fields
	ErrStreamFull = errors.New("smd: stream full")

	// ErrInvalidArgument covers negative offsets and lengths
	ErrInvalidArgument = errors.New("smd: invalid argument")
)
