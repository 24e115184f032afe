// ABOUTME: Remote clip fetcher with an on-disk cache
// ABOUTME: Downloads audio from URLs so they can be loaded like uploads
package remote

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/flipit/internal/version"
	"github.com/harperreed/flipit/pkg/audio/decode"
)

// MaxClipBytes bounds a single download
const MaxClipBytes = 64 << 20

// ErrTooLarge is returned when a download exceeds MaxClipBytes
var ErrTooLarge = errors.New("clip too large")

// Fetcher downloads clips and caches them by URL
type Fetcher struct {
	cacheDir string
	client   *http.Client
}

// NewFetcher creates a fetcher caching under cacheDir
func NewFetcher(cacheDir string) (*Fetcher, error) {
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "flipit-clips")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Fetcher{
		cacheDir: cacheDir,
		client:   &http.Client{},
	}, nil
}

// Fetch returns the clip bytes and best-known mime type for url
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("empty url")
	}

	// Create a cache key from URL hash
	hash := sha256.Sum256([]byte(url))
	cachePath := filepath.Join(f.cacheDir, fmt.Sprintf("%x", hash[:8]))

	if data, err := os.ReadFile(cachePath); err == nil {
		log.Printf("Clip cache hit: %s", cachePath)
		return data, f.mimeFor(data, cachePath), nil
	}

	log.Printf("Downloading clip: %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid clip url: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download clip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("clip download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxClipBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read clip: %w", err)
	}
	if len(data) > MaxClipBytes {
		return nil, "", ErrTooLarge
	}

	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		log.Printf("Warning: failed to cache clip: %v", err)
	}

	contentType := HeaderMime(resp.Header.Get("Content-Type"))
	if contentType != "" {
		if err := os.WriteFile(cachePath+".mime", []byte(contentType), 0644); err != nil {
			log.Printf("Warning: failed to cache clip mime: %v", err)
		}
	}

	log.Printf("Clip saved: %s (%d bytes)", cachePath, len(data))
	if sniffed, _ := decode.Sniff(data); sniffed != "" {
		return data, sniffed, nil
	}
	return data, contentType, nil
}

// Cleanup removes every cached clip
func (f *Fetcher) Cleanup() error {
	return os.RemoveAll(f.cacheDir)
}

// mimeFor prefers the sniffed container over the cached header
func (f *Fetcher) mimeFor(data []byte, cachePath string) string {
	if sniffed, _ := decode.Sniff(data); sniffed != "" {
		return sniffed
	}
	if b, err := os.ReadFile(cachePath + ".mime"); err == nil {
		return strings.TrimSpace(string(b))
	}
	return ""
}

// HeaderMime drops parameters other than codecs from a Content-Type
func HeaderMime(header string) string {
	if header == "" {
		return ""
	}
	mediaType, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	if codecs, ok := params["codecs"]; ok {
		return mediaType + ";codecs=" + codecs
	}
	return mediaType
}
