package archive_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"postmark/internal/archive"
	"postmark/internal/logging"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	path := filepath.Join(t.TempDir(), "dataset.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	return path
}

func writeTarGz(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range entries {
		header := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("write tar header %s: %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write tar entry %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	path := filepath.Join(t.TempDir(), "dataset.tar.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write tar.gz: %v", err)
	}
	return path
}

func TestUnpackZip(t *testing.T) {
	path := writeZip(t, map[string]string{
		"root/falses_normalized_rotated/A1.jpg": "img",
		"root/read_words/A1_words.txt":          "سلام",
	})
	dest := t.TempDir()

	if err := archive.Unpack(path, dest, 0, logging.NewNop()); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(dest, "root", "read_words", "A1_words.txt"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(content) != "سلام" {
		t.Fatalf("extracted content = %q", content)
	}
}

func TestUnpackTarGz(t *testing.T) {
	path := writeTarGz(t, map[string]string{
		"ds/read_postcode/A1_postcode.txt": "123456",
	})
	dest := t.TempDir()

	if err := archive.Unpack(path, dest, 0, logging.NewNop()); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(dest, "ds", "read_postcode", "A1_postcode.txt"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(content) != "123456" {
		t.Fatalf("extracted content = %q", content)
	}
}

func TestUnpackRejectsTraversal(t *testing.T) {
	path := writeZip(t, map[string]string{"../evil.txt": "nope"})
	dest := t.TempDir()

	if err := archive.Unpack(path, dest, 0, logging.NewNop()); err == nil {
		t.Fatal("expected traversal rejection")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "evil.txt")); err == nil {
		t.Fatal("traversal entry was written outside staging dir")
	}
}

func TestUnpackEnforcesSizeLimit(t *testing.T) {
	path := writeZip(t, map[string]string{"big.txt": string(bytes.Repeat([]byte("x"), 4096))})
	dest := t.TempDir()

	err := archive.Unpack(path, dest, 1024, logging.NewNop())
	if !errors.Is(err, archive.ErrArchiveTooLarge) {
		t.Fatalf("expected ErrArchiveTooLarge, got %v", err)
	}
}

func TestUnpackUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.rar")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	err := archive.Unpack(path, t.TempDir(), 0, logging.NewNop())
	if !errors.Is(err, archive.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFingerprintStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.zip")
	if err := os.WriteFile(path, []byte("same bytes"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	first, err := archive.Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	second, err := archive.Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if first == "" || first != second {
		t.Fatalf("fingerprints differ: %q vs %q", first, second)
	}
}

func TestFingerprintDiffers(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.zip")
	b := filepath.Join(dir, "b.zip")
	if err := os.WriteFile(a, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	fa, err := archive.Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := archive.Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}
	if fa == fb {
		t.Fatal("expected distinct fingerprints")
	}
}
