// ABOUTME: Download naming for stored clips
// ABOUTME: Maps clip mime types to file extensions and timestamped names
package encode

import (
	"fmt"
	"strings"
	"time"
)

// ExtensionForMime picks a file extension for a clip's mime type.
// Unknown types fall back to "audio"; an empty type is assumed to be webm.
func ExtensionForMime(mime string) string {
	switch {
	case mime == "":
		return "webm"
	case strings.Contains(mime, "ogg"):
		return "ogg"
	case strings.Contains(mime, "webm"):
		return "webm"
	case strings.Contains(mime, "wav"):
		return "wav"
	default:
		return "audio"
	}
}

// Filename builds "<kind>-<unix ms>.<ext>" for a download
func Filename(kind, mime string, t time.Time) string {
	return fmt.Sprintf("%s-%d.%s", kind, t.UnixMilli(), ExtensionForMime(mime))
}
