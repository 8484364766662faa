package archive_test

import (
	"errors"
	"path/filepath"
	"testing"

	"postmark/internal/archive"
	"postmark/internal/dataset"
	"postmark/internal/testsupport"
)

func TestLocateDirectRoot(t *testing.T) {
	root := testsupport.NewDatasetRoot(t)
	got, err := archive.Locate(root)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if got != root {
		t.Fatalf("Locate = %q, want %q", got, root)
	}
}

func TestLocateNestedRoot(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "upload", "dataset_v2")
	testsupport.MakeDatasetDirs(t, nested)

	got, err := archive.Locate(base)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if got != nested {
		t.Fatalf("Locate = %q, want %q", got, nested)
	}
}

func TestLocatePicksFirstQualifyingInLexicalOrder(t *testing.T) {
	base := t.TempDir()
	first := filepath.Join(base, "a")
	second := filepath.Join(base, "b")
	testsupport.MakeDatasetDirs(t, first)
	testsupport.MakeDatasetDirs(t, second)

	got, err := archive.Locate(base)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if got != first {
		t.Fatalf("Locate = %q, want %q", got, first)
	}
}

func TestLocateMissingFolderFails(t *testing.T) {
	base := t.TempDir()
	incomplete := filepath.Join(base, "partial")
	for _, dir := range dataset.RequiredFolders()[:5] {
		testsupport.WriteFile(t, incomplete, "", dir, ".keep")
	}

	_, err := archive.Locate(base)
	if !errors.Is(err, archive.ErrLayoutNotFound) {
		t.Fatalf("expected ErrLayoutNotFound, got %v", err)
	}
}

func TestLayoutErrorKind(t *testing.T) {
	var classifier interface{ ErrorKind() string }
	if !errors.As(archive.ErrLayoutNotFound, &classifier) {
		t.Fatal("ErrLayoutNotFound should classify itself")
	}
	if classifier.ErrorKind() != "configuration" {
		t.Fatalf("ErrorKind = %q", classifier.ErrorKind())
	}
}
