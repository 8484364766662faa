package archive

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"postmark/internal/dataset"
)

// ErrLayoutNotFound indicates the extracted tree contains no directory
// with all six required dataset folders. This is terminal for a session.
var ErrLayoutNotFound = &layoutError{}

type layoutError struct{}

func (*layoutError) Error() string {
	return "archive layout: no directory contains all required folders (" +
		strings.Join(dataset.RequiredFolders(), ", ") + ")"
}

// ErrorKind classifies the failure for status mapping.
func (*layoutError) ErrorKind() string { return "configuration" }

var errFound = errors.New("found")

// Locate returns the first directory within extractedRoot (in lexical
// preorder, extractedRoot itself tested first) that contains all six
// required dataset folders as direct subdirectories.
func Locate(extractedRoot string) (string, error) {
	if hasRequiredFolders(extractedRoot) {
		return extractedRoot, nil
	}

	var found string
	err := filepath.WalkDir(extractedRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if hasRequiredFolders(path) {
			found = path
			return errFound
		}
		return nil
	})
	if errors.Is(err, errFound) {
		return found, nil
	}
	return "", ErrLayoutNotFound
}

func hasRequiredFolders(dir string) bool {
	for _, name := range dataset.RequiredFolders() {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}
