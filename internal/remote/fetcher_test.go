// ABOUTME: Tests for the remote clip fetcher
// ABOUTME: Tests HTTP download, caching, and error handling
package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f, err := NewFetcher(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	return f
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "flipit/") {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "audio/webm;codecs=opus")
		w.Write([]byte("fake clip data"))
	}))
	defer server.Close()

	f := newFetcher(t)
	data, mimeType, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if string(data) != "fake clip data" {
		t.Errorf("expected fake clip data, got %q", data)
	}
	if mimeType != "audio/webm;codecs=opus" {
		t.Errorf("expected audio/webm;codecs=opus, got %q", mimeType)
	}
}

func TestFetchSniffsContainer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("fLaC\x00\x00\x00\x22"))
	}))
	defer server.Close()

	f := newFetcher(t)
	_, mimeType, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if mimeType != "audio/flac" {
		t.Errorf("expected audio/flac, got %q", mimeType)
	}
}

func TestFetchCaching(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "audio/ogg")
		w.Write([]byte("cached"))
	}))
	defer server.Close()

	f := newFetcher(t)
	for i := 0; i < 3; i++ {
		data, mimeType, err := f.Fetch(context.Background(), server.URL+"/clip.ogg")
		if err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
		if string(data) != "cached" {
			t.Errorf("fetch %d: expected cached, got %q", i, data)
		}
		if mimeType != "audio/ogg" {
			t.Errorf("fetch %d: expected audio/ogg, got %q", i, mimeType)
		}
	}

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := newFetcher(t)
	_, _, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected error to mention 404, got %v", err)
	}
}

func TestFetchEmptyURL(t *testing.T) {
	f := newFetcher(t)
	if _, _, err := f.Fetch(context.Background(), ""); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestFetchCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newFetcher(t)
	if _, _, err := f.Fetch(ctx, server.URL); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestHeaderMime(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"", ""},
		{"audio/wav", "audio/wav"},
		{"audio/ogg; codecs=opus", "audio/ogg;codecs=opus"},
		{"audio/mpeg; charset=binary", "audio/mpeg"},
		{";;;", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := HeaderMime(tt.header); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
