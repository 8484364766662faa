package fieldtext

import (
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Missing is the sentinel rendered for absent, unreadable, or blank fields.
const Missing = "_"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FirstLine reads path and returns its first line, trimmed. It returns
// Missing for an empty path, a missing or unreadable file, and a first
// line that is blank after trimming. Later lines never substitute for a
// blank first line.
func FirstLine(path string) string {
	content, ok := read(path)
	if !ok {
		return Missing
	}
	if idx := strings.IndexAny(content, "\r\n"); idx >= 0 {
		content = content[:idx]
	}
	line := strings.TrimSpace(content)
	if line == "" {
		return Missing
	}
	return line
}

// All reads path and returns its entire content, trimmed. Absence rules
// match FirstLine.
func All(path string) string {
	content, ok := read(path)
	if !ok {
		return Missing
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Missing
	}
	return content
}

func read(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return Decode(raw), true
}

// Decode converts raw bytes to a string using a three-tier cascade:
// strict UTF-8, BOM-tolerant UTF-8, then lossy replacement of invalid
// bytes. The final tier always succeeds, so Decode never fails.
func Decode(raw []byte) string {
	if utf8.Valid(raw) && !bytes.HasPrefix(raw, utf8BOM) {
		return string(raw)
	}
	if out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw); err == nil && utf8.Valid(out) {
		return string(out)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
