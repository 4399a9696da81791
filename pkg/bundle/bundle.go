// Package bundle unpacks generated loader archives.
package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrIllegalPath is returned for archive entries that would land outside the
// destination directory.
var ErrIllegalPath = errors.New("bundle: illegal entry path")

// Extract unpacks every entry of the zip archive at archivePath into destDir and
// returns the slash-separated relative paths of the extracted files, sorted.
// destDir and any intermediate directories are created as needed.
func Extract(archivePath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return nil, fmt.Errorf("%w: %v", ErrIllegalPath, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %q: %w", archivePath, err)
	}
	defer r.Close()

	return ExtractReader(&r.Reader, destDir)
}

// ExtractReader is Extract for an already opened archive.
func ExtractReader(r *zip.Reader, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %q: %w", destDir, err)
	}

	files := make([]string, 0, len(r.File))
	for _, f := range r.File {
		target, err := entryPath(destDir, f.Name)
		if err != nil {
			return nil, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory %q: %w", target, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return nil, err
		}
		files = append(files, f.Name)
	}

	sort.Strings(files)
	return files, nil
}

// entryPath maps an archive entry name to a path below destDir.
func entryPath(destDir, name string) (string, error) {
	if name == "" || strings.Contains(name, "\\") || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrIllegalPath, name)
	}

	target := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrIllegalPath, name)
	}

	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", filepath.Dir(target), err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %q: %w", f.Name, err)
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", target, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to write file %q: %w", target, err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close file %q: %w", target, err)
	}

	return nil
}
