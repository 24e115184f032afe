// ABOUTME: Build and product identification
// ABOUTME: Reported by the HTTP surface, the TUI header and outbound requests
package version

import "fmt"

const (
	// Version is the release version
	Version = "0.3.0"

	// Product is the human-readable product name
	Product = "Flip It, Reverse It"

	// Manufacturer identifies who ships the build
	Manufacturer = "flipit"
)

// UserAgent is sent with remote clip fetches
func UserAgent() string {
	return fmt.Sprintf("%s/%s", Manufacturer, Version)
}
