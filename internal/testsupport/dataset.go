package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"postmark/internal/dataset"
)

// NewDatasetRoot creates the six required dataset folders under a fresh
// temp directory and returns the root.
func NewDatasetRoot(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	MakeDatasetDirs(t, root)
	return root
}

// MakeDatasetDirs creates the six required dataset folders under root.
func MakeDatasetDirs(t testing.TB, root string) {
	t.Helper()
	for _, dir := range dataset.RequiredFolders() {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
}

// WriteFile writes content to root/parts..., creating parent directories.
func WriteFile(t testing.TB, root string, content string, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// A1Dataset populates root with the canonical single-record fixture:
// reference A1.jpg, lowercase crops, postcode and words text, no region
// text. It returns the root for chaining.
func A1Dataset(t testing.TB, root string) string {
	t.Helper()
	WriteFile(t, root, "img", dataset.FolderImages, "A1.jpg")
	WriteFile(t, root, "crop", dataset.FolderPostcodeCrop, "a1.png")
	WriteFile(t, root, "crop", dataset.FolderReceiverCrop, "a1.png")
	WriteFile(t, root, "123456\n", dataset.FolderReadPostcode, "A1_postcode.txt")
	WriteFile(t, root, "سلام\n", dataset.FolderReadWords, "A1_words.txt")
	return root
}
