package testsupport

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"postmark/internal/dataset"
)

// ZipFixture writes a zip archive with the given entries. An entry name
// ending in "/" becomes a directory entry.
func ZipFixture(t testing.TB, name string, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for entry, content := range entries {
		if entry[len(entry)-1] == '/' {
			if _, err := zw.Create(entry); err != nil {
				t.Fatalf("create zip dir %s: %v", entry, err)
			}
			continue
		}
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", entry, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", entry, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	return path
}

// A1Archive zips the canonical single-record fixture under a "ds/" root.
func A1Archive(t testing.TB) string {
	t.Helper()
	entries := map[string]string{
		"ds/" + dataset.FolderImages + "/A1.jpg":                "img",
		"ds/" + dataset.FolderPostcodeCrop + "/a1.png":          "crop",
		"ds/" + dataset.FolderReceiverCrop + "/a1.png":          "crop",
		"ds/" + dataset.FolderReadPostcode + "/A1_postcode.txt": "123456\n",
		"ds/" + dataset.FolderReadWords + "/A1_words.txt":       "سلام\n",
		"ds/" + dataset.FolderRegion + "/":                      "",
	}
	return ZipFixture(t, "dataset.zip", entries)
}
