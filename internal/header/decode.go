// Package header decodes and extracts routing headers from raw messages
// without touching bodies.
package header

import (
	"mime"

	"github.com/emersion/go-message/charset"

	"github.com/randelsr/mbox-navigator/internal/textutil"
)

// wordDecoder handles RFC 2047 encoded words. go-message's charset table
// covers far more legacy encodings than the stdlib default.
var wordDecoder = mime.WordDecoder{CharsetReader: charset.Reader}

// Decode returns the human-readable form of a raw header value. Encoded
// words are expanded when possible; values that fail to decode fall back to
// the raw text repaired into valid UTF-8. The result is always printable,
// possibly lossy.
func Decode(raw string) string {
	if raw == "" {
		return ""
	}
	decoded, err := wordDecoder.DecodeHeader(raw)
	if err != nil {
		return textutil.EnsureUTF8(raw)
	}
	return textutil.EnsureUTF8(decoded)
}
