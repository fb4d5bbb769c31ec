package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Pack archives the contents of sourceDir (not the directory entry itself)
// into a gzip-compressed tarball at outPath, overwriting any previous output.
// The archive is written to a temporary file beside outPath first and renamed
// into place, so a failed run never leaves a half-written artifact.
func Pack(sourceDir, outPath string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), filepath.Base(outPath)+".*")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}

	tmpName := tmpFile.Name()

	if err = writeTarball(tmpFile, sourceDir); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)

		return err
	}

	if err = tmpFile.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("close staging file: %w", err)
	}

	if err = os.Rename(tmpName, outPath); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("move archive into place: %w", err)
	}

	return nil
}

// writeTarball streams sourceDir's contents as a gzip tar stream into output.
func writeTarball(output io.Writer, sourceDir string) error {
	gzWriter := gzip.NewWriter(output)
	tarWriter := tar.NewWriter(gzWriter)

	err := filepath.WalkDir(sourceDir, func(currentPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relative, err := filepath.Rel(sourceDir, currentPath)
		if err != nil {
			return err
		}

		if relative == "." {
			return nil
		}

		return writeTarEntry(tarWriter, currentPath, filepath.ToSlash(relative), entry)
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", sourceDir, err)
	}

	if err = tarWriter.Close(); err != nil {
		return fmt.Errorf("finish tar stream: %w", err)
	}

	if err = gzWriter.Close(); err != nil {
		return fmt.Errorf("finish gzip stream: %w", err)
	}

	return nil
}

// writeTarEntry appends one filesystem entry to the tar stream.
func writeTarEntry(tarWriter *tar.Writer, currentPath, name string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}

	var linkname string
	if info.Mode()&os.ModeSymlink != 0 {
		if linkname, err = os.Readlink(currentPath); err != nil {
			return err
		}
	}

	header, err := tar.FileInfoHeader(info, linkname)
	if err != nil {
		return err
	}

	header.Name = name
	if info.IsDir() {
		header.Name += "/"
	}

	if err = tarWriter.WriteHeader(header); err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	inputFile, err := os.Open(filepath.Clean(currentPath))
	if err != nil {
		return err
	}

	if _, err = io.Copy(tarWriter, inputFile); err != nil {
		_ = inputFile.Close()

		return err
	}

	return inputFile.Close()
}
