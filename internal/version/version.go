// ABOUTME: Version and product identification
// ABOUTME: Reported by the command-line tools
package version

const (
	// Version is the current release
	Version = "0.1.0"

	// Product is the tool name shown in help and status output
	Product = "SMD Codec"
)

// String returns the product and version, e.g. "SMD Codec 0.1.0".
func String() string {
	return Product + " " + Version
}
