package tui

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	t.Run("short strings pass through", func(t *testing.T) {
		if got := truncate("answer concisely", 60); got != "answer concisely" {
			t.Errorf("truncate = %q", got)
		}
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		// 70 two-byte runes; a byte-based slice would cut one in half.
		in := strings.Repeat("é", 70)
		got := truncate(in, 60)

		if !utf8.ValidString(got) {
			t.Fatalf("truncate produced invalid UTF-8: %q", got)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("missing ellipsis: %q", got)
		}
		if n := utf8.RuneCountInString(got); n != 60 {
			t.Errorf("rune count = %d, want 60", n)
		}
	})
}
