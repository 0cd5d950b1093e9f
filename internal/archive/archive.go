// Package archive wraps zip reading and writing for the .ssp and .fmu
// containers produced by the pipeline. Compression goes through the klauspost
// deflate implementation instead of the standard one.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
)

// NewWriter returns a zip writer with the deflate method backed by
// klauspost/compress.
func NewWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	return zw
}

// Create opens path for writing and returns a zip writer over it. The caller
// must Close the writer before the file handle.
func Create(path string) (*zip.Writer, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating archive %s: %w", path, err)
	}
	return NewWriter(f), f, nil
}

// AddBytes stores data under arcname with deflate compression.
func AddBytes(zw *zip.Writer, arcname string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: arcname, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("adding %s: %w", arcname, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", arcname, err)
	}
	return nil
}

// AddFile copies the file at path into the archive under arcname.
func AddFile(zw *zip.Writer, arcname, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return AddBytes(zw, arcname, data)
}

// WriteSingleFile creates a zip archive at dst containing exactly one entry.
func WriteSingleFile(dst, arcname, srcPath string) error {
	zw, f, err := Create(dst)
	if err != nil {
		return err
	}
	if err := AddFile(zw, arcname, srcPath); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("closing archive %s: %w", dst, err)
	}
	return f.Close()
}

// ZipDir packs every regular file under dir into a new archive at dst, with
// arcnames relative to dir using forward slashes.
func ZipDir(dst, dir string) error {
	zw, f, err := Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return AddFile(zw, filepath.ToSlash(rel), path)
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("packing %s: %w", dir, err)
	}
	return zw.Close()
}

// Unzip extracts the archive at src into dstDir, refusing entries that would
// escape the destination.
func Unzip(src, dstDir string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", src, err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		name := filepath.Clean(entry.Name)
		if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("archive entry escapes destination: %s", entry.Name)
		}
		target := filepath.Join(dstDir, name)
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractEntry(entry, target); err != nil {
			return fmt.Errorf("extracting %s: %w", entry.Name, err)
		}
	}
	return nil
}

func extractEntry(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
