package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreviewBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"short stays whole", "hello"},
		{"exactly at the limit", strings.Repeat("a", 120)},
		{"long ascii", strings.Repeat("a", 300)},
		{"cut falls mid rune", "a" + strings.Repeat("é", 100)},
		{"three byte runes", strings.Repeat("犬", 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := previewBody(tt.in)
			if !utf8.ValidString(got) {
				t.Fatalf("preview is not valid utf-8: %q", got)
			}
			if len(got) > 120 {
				t.Fatalf("preview too long: %d bytes", len(got))
			}
			if !strings.HasPrefix(tt.in, got) {
				t.Fatalf("preview is not a prefix of the body")
			}
			if len(tt.in) <= 120 && got != tt.in {
				t.Fatalf("short body was truncated: %q", got)
			}
		})
	}
}
