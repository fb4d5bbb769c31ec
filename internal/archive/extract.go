package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

var (
	// errUnsupportedFormat is returned for archives outside the tar family.
	errUnsupportedFormat = errors.New("unsupported archive format")
	// errUnsafePath is returned when an entry would land outside the destination.
	errUnsafePath = errors.New("archive entry escapes destination")
)

// defaultDirMode is applied to directories implied by file entries.
const defaultDirMode os.FileMode = 0o755

// Extract unpacks a tar-family archive into dest.
// The compression is picked from the file name (.tar, .tar.gz/.tgz, .tar.xz);
// content sniffing is deliberately not attempted. stripComponents drops that
// many leading path segments from every entry; entries with fewer segments
// are skipped entirely.
func Extract(archivePath, dest string, stripComponents int) error {
	inputFile, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = inputFile.Close()
	}()

	var reader io.Reader

	name := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(name, ".tar.xz"):
		xzReader, xzErr := xz.NewReader(inputFile)
		if xzErr != nil {
			return fmt.Errorf("open xz stream in %s: %w", archivePath, xzErr)
		}

		reader = xzReader
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		gzReader, gzErr := gzip.NewReader(inputFile)
		if gzErr != nil {
			return fmt.Errorf("open gzip stream in %s: %w", archivePath, gzErr)
		}

		defer func() {
			_ = gzReader.Close()
		}()

		reader = gzReader
	case strings.HasSuffix(name, ".tar"):
		reader = inputFile
	default:
		return fmt.Errorf("%s: %w", archivePath, errUnsupportedFormat)
	}

	if err = untar(tar.NewReader(reader), dest, stripComponents); err != nil {
		return fmt.Errorf("extract %s: %w", archivePath, err)
	}

	return nil
}

// untar materializes tar entries under dest.
func untar(tarReader *tar.Reader, dest string, stripComponents int) error {
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read entry: %w", err)
		}

		entryName, keep := stripPath(header.Name, stripComponents)
		if !keep {
			continue
		}

		if !filepath.IsLocal(entryName) {
			return fmt.Errorf("%s: %w", header.Name, errUnsafePath)
		}

		target := filepath.Join(dest, filepath.FromSlash(entryName))

		switch header.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(target, header.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("create directory %s: %w", entryName, err)
			}
		case tar.TypeReg:
			if err = writeEntry(tarReader, target, header.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", entryName, err)
			}
		case tar.TypeSymlink:
			if err = writeSymlink(header.Linkname, target); err != nil {
				return fmt.Errorf("symlink %s: %w", entryName, err)
			}
		default:
			// Hard links, devices and the like do not occur in upstream
			// release tarballs; skip them instead of failing the run.
			continue
		}
	}
}

// writeEntry streams one regular file entry to disk.
func writeEntry(contents io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), defaultDirMode); err != nil {
		return err
	}

	outputFile, err := os.OpenFile(filepath.Clean(target), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(outputFile, contents); err != nil {
		_ = outputFile.Close()

		return err
	}

	return outputFile.Close()
}

// writeSymlink creates a symlink entry, replacing an existing one.
func writeSymlink(linkname, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), defaultDirMode); err != nil {
		return err
	}

	if _, err := os.Lstat(target); err == nil {
		if err = os.Remove(target); err != nil {
			return err
		}
	}

	return os.Symlink(linkname, target)
}

// stripPath normalizes an entry name and removes the leading path segments.
// The second return value is false when the entry should be skipped.
func stripPath(name string, stripComponents int) (string, bool) {
	name = path.Clean(strings.TrimPrefix(name, "./"))
	if name == "." || name == "/" {
		return "", false
	}

	if stripComponents <= 0 {
		return name, true
	}

	segments := strings.Split(name, "/")
	if len(segments) <= stripComponents {
		return "", false
	}

	return path.Join(segments[stripComponents:]...), true
}
