// Package utils holds small text-safety helpers shared across the
// chunking and translation pipeline.
package utils

import (
	"strings"
	"unicode/utf8"
)

// SafeUTF8Truncate truncates a UTF-8 string to at most maxBytes without
// splitting a multi-byte rune, so a probe chunk cut at an arbitrary byte
// offset (binary-search candidate sizes, log excerpts) stays valid UTF-8.
// If str already fits, it's returned unchanged.
//
// Example:
//
//	result := SafeUTF8Truncate("你好世界", 6) // Returns "你好" (6 bytes)
func SafeUTF8Truncate(str string, maxBytes int) string {
	if len(str) <= maxBytes {
		return str
	}

	for i := maxBytes; i >= 0 && i > maxBytes-4; i-- {
		if utf8.ValidString(str[:i]) {
			return str[:i]
		}
	}

	// No byte-aligned cut found within range; fall back to rune-by-rune.
	runes := []rune(str)
	result := ""
	for _, r := range runes {
		test := result + string(r)
		if len(test) > maxBytes {
			break
		}
		result = test
	}

	return result
}

// SanitizeUTF8 drops invalid UTF-8 byte sequences from str, so request text
// arriving from an untrusted caller can't carry malformed bytes into the
// chunker or the translation backend.
func SanitizeUTF8(str string) string {
	if utf8.ValidString(str) {
		return str
	}

	// Remove or replace invalid UTF-8 characters
	var buf strings.Builder
	buf.Grow(len(str))

	for len(str) > 0 {
		r, size := utf8.DecodeRuneInString(str)
		if r == utf8.RuneError && size == 1 {
			// Skip invalid byte
			str = str[1:]
		} else {
			buf.WriteRune(r)
			str = str[size:]
		}
	}

	return buf.String()
}
