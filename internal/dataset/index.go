package dataset

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"postmark/internal/logging"
)

// BuildIndex scans the reference folder under root and correlates every
// primary image with its crops and text artifacts in the other five
// folders. It never fails: an unreadable reference folder yields an
// empty index, and permission errors in optional folders degrade to
// missing artifacts for the affected folder only.
func BuildIndex(root string, logger *slog.Logger) *Index {
	log := logging.NewComponentLogger(logger, "dataset")

	primaries, collisions := scanPrimaries(filepath.Join(root, FolderImages))

	keys := make([]string, 0, len(primaries))
	for key := range primaries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	postcodeCropDir := filepath.Join(root, FolderPostcodeCrop)
	receiverCropDir := filepath.Join(root, FolderReceiverCrop)
	readPostcodeDir := filepath.Join(root, FolderReadPostcode)
	readWordsDir := filepath.Join(root, FolderReadWords)
	regionDir := filepath.Join(root, FolderRegion)

	records := make([]Record, 0, len(keys))
	for _, indexKey := range keys {
		image := primaries[indexKey]
		displayKey := Stem(image)
		records = append(records, Record{
			Key:          displayKey,
			IndexKey:     indexKey,
			Image:        image,
			PostcodeCrop: findByStem(postcodeCropDir, indexKey),
			ReceiverCrop: findByStem(receiverCropDir, indexKey),
			PostcodeText: probe(filepath.Join(readPostcodeDir, displayKey+suffixPostcodeText)),
			WordsText:    probe(filepath.Join(readWordsDir, displayKey+suffixWordsText)),
			RegionText:   probe(filepath.Join(regionDir, displayKey+suffixRegionText)),
		})
	}

	for _, c := range collisions {
		log.Warn("reference key collision",
			logging.String(logging.FieldRecordKey, c.Key),
			logging.String("survivor", c.Survivor),
			logging.Int("shadowed", len(c.Shadowed)),
			logging.String(logging.FieldEventType, "index_key_collision"),
			logging.String(logging.FieldErrorHint, "rename reference files so stems differ case-insensitively"))
	}
	log.Info("index built",
		logging.String("root", root),
		logging.Int("records", len(records)),
		logging.Int("collisions", len(collisions)))

	return &Index{Root: root, Records: records, Collisions: collisions}
}

// scanPrimaries walks the reference folder in lexical order and collapses
// image stems case-insensitively. WalkDir's deterministic ordering makes
// the collision survivor (the last path seen) deterministic too.
func scanPrimaries(dir string) (map[string]string, []Collision) {
	candidates := map[string][]string{}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsImage(d.Name()) {
			return nil
		}
		key := strings.ToLower(Stem(path))
		candidates[key] = append(candidates[key], path)
		return nil
	})

	primaries := make(map[string]string, len(candidates))
	var collisions []Collision
	for key, paths := range candidates {
		survivor := paths[len(paths)-1]
		primaries[key] = survivor
		if len(paths) > 1 {
			collisions = append(collisions, Collision{
				Key:      key,
				Survivor: survivor,
				Shadowed: paths[:len(paths)-1],
			})
		}
	}
	sort.Slice(collisions, func(i, j int) bool { return collisions[i].Key < collisions[j].Key })
	return primaries, collisions
}

// findByStem resolves an image in dir whose stem matches indexKey
// case-insensitively. Direct children are scanned first; only when none
// match does it fall back to a recursive walk. The first match in each
// pass wins. Errors degrade to "no match".
func findByStem(dir, indexKey string) string {
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if matchesStem(entry.Name(), indexKey) {
				return filepath.Join(dir, entry.Name())
			}
		}
	}

	var found string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matchesStem(d.Name(), indexKey) {
			return nil
		}
		found = path
		return fs.SkipAll
	})
	return found
}

func matchesStem(name, indexKey string) bool {
	return IsImage(name) && strings.ToLower(Stem(name)) == indexKey
}

// probe returns path when it names an existing regular file, else "".
func probe(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}
