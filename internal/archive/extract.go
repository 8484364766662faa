package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"postmark/internal/logging"
)

// ErrUnsupportedFormat indicates the archive extension is not recognized.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// ErrArchiveTooLarge indicates extraction exceeded the configured size cap.
var ErrArchiveTooLarge = errors.New("archive exceeds extraction size limit")

// Unpack extracts the archive at path into destDir. Supported formats:
// .zip, .tar, .tar.gz/.tgz, .tar.xz/.txz. Entry names are confined to
// destDir and the total extracted size is capped at maxBytes (<= 0 means
// no cap).
func Unpack(path, destDir string, maxBytes int64, logger *slog.Logger) error {
	log := logging.NewComponentLogger(logger, "archive")

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}

	budget := newByteBudget(maxBytes)
	lower := strings.ToLower(path)
	var err error
	switch {
	case strings.HasSuffix(lower, ".zip"):
		err = unpackZip(path, destDir, budget)
	case strings.HasSuffix(lower, ".tar"):
		err = unpackTarFile(path, destDir, budget, func(r io.Reader) (io.Reader, error) { return r, nil })
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		err = unpackTarFile(path, destDir, budget, func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) })
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		err = unpackTarFile(path, destDir, budget, func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) })
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	log.Info("archive extracted",
		logging.String("archive", path),
		logging.String("dest", destDir),
		logging.Int64("bytes", budget.used))
	return nil
}

type byteBudget struct {
	limit int64
	used  int64
}

func newByteBudget(limit int64) *byteBudget {
	return &byteBudget{limit: limit}
}

func (b *byteBudget) add(n int64) error {
	b.used += n
	if b.limit > 0 && b.used > b.limit {
		return fmt.Errorf("%w: extracted %d bytes, limit %d", ErrArchiveTooLarge, b.used, b.limit)
	}
	return nil
}

func unpackZip(path, destDir string, budget *byteBudget) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		target, err := securePath(destDir, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", file.Name, err)
			}
			continue
		}
		src, err := file.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", file.Name, err)
		}
		_, err = writeEntry(target, src, budget)
		src.Close()
		if err != nil {
			return fmt.Errorf("extract %s: %w", file.Name, err)
		}
	}
	return nil
}

func unpackTarFile(path, destDir string, budget *byteBudget, wrap func(io.Reader) (io.Reader, error)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	stream, err := wrap(file)
	if err != nil {
		return fmt.Errorf("open compressed stream: %w", err)
	}
	if closer, ok := stream.(io.Closer); ok {
		defer closer.Close()
	}

	reader := tar.NewReader(stream)
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}
		target, err := securePath(destDir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", header.Name, err)
			}
		case tar.TypeReg:
			if _, err := writeEntry(target, reader, budget); err != nil {
				return fmt.Errorf("extract %s: %w", header.Name, err)
			}
		default:
			// Symlinks and specials are dropped: a dataset archive has no
			// business containing them and they defeat the path guards.
		}
	}
}

// securePath joins name under destDir, rejecting absolute paths and any
// traversal outside the staging directory.
func securePath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes staging directory: %s", name)
	}
	return filepath.Join(destDir, cleaned), nil
}

func writeEntry(target string, src io.Reader, budget *byteBudget) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if err := budget.add(int64(n)); err != nil {
				return written, err
			}
			if _, err := out.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return written, readErr
		}
	}
	return written, out.Close()
}
