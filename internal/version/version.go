// Package version exposes the build version of the ar binary.
package version

// value is overridden at build time via
// -ldflags "-X github.com/zigzalgo/autoreview/internal/version.value=v1.2.3".
var value = "dev"

// Value returns the build version string.
func Value() string {
	return value
}
