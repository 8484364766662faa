package fieldtext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestMissingSentinel(t *testing.T) {
	cases := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"nonexistent", filepath.Join(t.TempDir(), "absent.txt")},
		{"empty file", writeFile(t, "empty.txt", nil)},
		{"whitespace only", writeFile(t, "ws.txt", []byte(" \n\t \n"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FirstLine(tc.path); got != Missing {
				t.Errorf("FirstLine = %q, want %q", got, Missing)
			}
			if got := All(tc.path); got != Missing {
				t.Errorf("All = %q, want %q", got, Missing)
			}
		})
	}
}

func TestFirstLineTrimsAndStops(t *testing.T) {
	path := writeFile(t, "postcode.txt", []byte("  123456  \nsecond line\n"))
	if got := FirstLine(path); got != "123456" {
		t.Fatalf("FirstLine = %q, want %q", got, "123456")
	}
}

func TestFirstLineBlankFirstLineIsMissing(t *testing.T) {
	// Later lines never substitute for a blank first line.
	path := writeFile(t, "blankfirst.txt", []byte("   \n123456\n"))
	if got := FirstLine(path); got != Missing {
		t.Fatalf("FirstLine = %q, want %q", got, Missing)
	}
	if got := All(path); got != "123456" {
		t.Fatalf("All = %q, want %q", got, "123456")
	}
}

func TestFirstLineHandlesCRLF(t *testing.T) {
	path := writeFile(t, "crlf.txt", []byte("123456\r\nrest\r\n"))
	if got := FirstLine(path); got != "123456" {
		t.Fatalf("FirstLine = %q, want %q", got, "123456")
	}
}

func TestAllReturnsTrimmedContent(t *testing.T) {
	path := writeFile(t, "words.txt", []byte("\nسلام دنیا\nخیابان انقلاب\n"))
	got := All(path)
	if got != "سلام دنیا\nخیابان انقلاب" {
		t.Fatalf("All = %q", got)
	}
}

func TestDecodeStripsBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("123456")...)
	if got := Decode(raw); got != "123456" {
		t.Fatalf("Decode = %q, want %q", got, "123456")
	}
	path := writeFile(t, "bom.txt", raw)
	if got := FirstLine(path); got != "123456" {
		t.Fatalf("FirstLine = %q, want %q", got, "123456")
	}
}

func TestDecodeReplacesInvalidBytes(t *testing.T) {
	raw := []byte{'a', 0xFF, 0xFE, 'b'}
	got := Decode(raw)
	if !strings.HasPrefix(got, "a") || !strings.HasSuffix(got, "b") {
		t.Fatalf("Decode = %q, expected surrounding runes preserved", got)
	}
	if !strings.ContainsRune(got, '�') {
		t.Fatalf("Decode = %q, expected replacement rune", got)
	}
}

func TestDecodeNeverEmptyForValidInput(t *testing.T) {
	if got := Decode([]byte("سلام")); got != "سلام" {
		t.Fatalf("Decode = %q", got)
	}
}
