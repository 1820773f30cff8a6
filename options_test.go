package diskkit

import (
	"testing"
	"time"
)

func TestApplyOptions(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := ApplyOptions(
		WithContentType("application/json"),
		WithMetadata(map[string]string{"owner": "billing"}),
		WithVisibility(Public),
		WithCacheControl("max-age=3600"),
		WithExpires(expires),
	)

	if o.ContentType != "application/json" {
		t.Errorf("ContentType = %q", o.ContentType)
	}
	if o.Metadata["owner"] != "billing" {
		t.Errorf("Metadata = %v", o.Metadata)
	}
	if o.Visibility != Public {
		t.Errorf("Visibility = %q", o.Visibility)
	}
	if o.CacheControl != "max-age=3600" {
		t.Errorf("CacheControl = %q", o.CacheControl)
	}
	if o.Expires == nil || !o.Expires.Equal(expires) {
		t.Errorf("Expires = %v", o.Expires)
	}
}

func TestApplyOptionsEmpty(t *testing.T) {
	o := ApplyOptions()
	if o.ContentType != "" || o.Metadata != nil || o.Visibility != "" || o.Expires != nil {
		t.Errorf("zero options not zero: %+v", o)
	}
}

func TestGuessContentType(t *testing.T) {
	tests := []struct {
		name string
		path string
		data []byte
		want string
	}{
		{"known extension", "report.csv", nil, "text/csv"},
		{"case insensitive", "PHOTO.JPG", nil, "image/jpeg"},
		{"sniffed content", "blob", []byte("<html><body>hi</body></html>"), "text/html; charset=utf-8"},
		{"unknown falls back", "mystery.qqq", nil, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessContentType(tt.path, tt.data); got != tt.want {
				t.Errorf("GuessContentType(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsTextContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/plain", true},
		{"text/csv", true},
		{"application/json", true},
		{"application/xml", true},
		{"image/png", false},
		{"application/octet-stream", false},
	}

	for _, tt := range tests {
		if got := IsTextContentType(tt.contentType); got != tt.want {
			t.Errorf("IsTextContentType(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
