package dataset

import (
	"path/filepath"
	"strings"
)

// Required dataset folder names inside an extracted archive. Fixed and
// case-sensitive; the upstream pipeline produces exactly these.
const (
	FolderImages       = "falses_normalized_rotated"
	FolderPostcodeCrop = "postcode_img_preprocessed"
	FolderReceiverCrop = "receiver_img_preprocessed"
	FolderReadPostcode = "read_postcode"
	FolderReadWords    = "read_words"
	FolderRegion       = "address_region_pred"
)

// RequiredFolders lists the six folders a dataset root must contain.
func RequiredFolders() []string {
	return []string{
		FolderImages,
		FolderPostcodeCrop,
		FolderReceiverCrop,
		FolderReadPostcode,
		FolderReadWords,
		FolderRegion,
	}
}

// Text artifact filename suffixes, matched exactly.
const (
	suffixPostcodeText = "_postcode.txt"
	suffixWordsText    = "_words.txt"
	suffixRegionText   = "_words_region_by_addr.txt"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// IsImage reports whether name carries a supported image extension
// (case-insensitive).
func IsImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Stem returns the base filename without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Record is one correlated dataset item: the primary envelope scan plus
// its crops and derived text artifacts. Absent artifacts hold an empty
// path, never a path to a nonexistent file.
type Record struct {
	// Key is the display identifier: the original-case stem of the
	// primary image filename.
	Key string
	// IndexKey is the lowercased key used for matching and ordering.
	IndexKey string

	Image        string
	PostcodeCrop string
	ReceiverCrop string
	PostcodeText string
	WordsText    string
	RegionText   string
}

// Collision records a case-insensitive key collapse in the reference
// folder scan. Exactly one survivor remains in the index.
type Collision struct {
	Key      string   // lowercased key
	Survivor string   // path that won (lexicographically last)
	Shadowed []string // paths displaced by the survivor, scan order
}

// Index is the ordered record set built over one dataset root. Records
// and their keys are fixed at construction.
type Index struct {
	Root       string
	Records    []Record
	Collisions []Collision
}

// Len returns the number of records.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Records)
}

// Keys returns the display keys in index order.
func (idx *Index) Keys() []string {
	keys := make([]string, 0, idx.Len())
	for _, rec := range idx.Records {
		keys = append(keys, rec.Key)
	}
	return keys
}
