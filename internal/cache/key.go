package cache

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short, stable hash of text suitable for use in a
// cache key. blake2b-256 is used in place of the reference implementation's
// sha256 truncated to 16 hex characters, taken from golang.org/x/crypto, a
// direct dependency of this module; the first 16 hex
// characters are kept for the same reason the reference does it — a short,
// still-effectively-unique key component.
func Fingerprint(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum)[:16]
}

// String renders Key in the wire format used as the literal Redis/L1 key:
// "tr:{fingerprint}:{src}:{tgt}:{level}[:chunk_{size}][:type_{content_type}]".
func (k Key) String() string {
	var b strings.Builder
	b.WriteString("tr:")
	b.WriteString(k.Fingerprint)
	b.WriteByte(':')
	b.WriteString(k.SourceLang)
	b.WriteByte(':')
	b.WriteString(k.TargetLang)
	b.WriteByte(':')
	b.WriteString(string(k.Level))
	if k.ChunkSize > 0 {
		b.WriteString(":chunk_")
		b.WriteString(strconv.Itoa(k.ChunkSize))
	}
	if k.ContentType != "" {
		b.WriteString(":type_")
		b.WriteString(k.ContentType)
	}
	return b.String()
}

// NewKey builds a Key for text, hashing it for the fingerprint component.
func NewKey(text, sourceLang, targetLang string, level Level, chunkSize int, contentType string) Key {
	return Key{
		Fingerprint: Fingerprint(text),
		SourceLang:  sourceLang,
		TargetLang:  targetLang,
		Level:       level,
		ChunkSize:   chunkSize,
		ContentType: contentType,
	}
}
