package provision

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vidtree/pybox/internal/model"
)

// extractZip extracts every entry of the zip at zipPath into dstDir. Existing
// files are overwritten. Entries escaping dstDir are rejected.
func extractZip(zipPath, dstDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w: %w", zipPath, err, model.ErrExtractionFailed)
	}
	defer zr.Close()

	base, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w: %w", dstDir, err, model.ErrExtractionFailed)
	}

	for _, f := range zr.File {
		if err := extractZipEntry(f, base); err != nil {
			return fmt.Errorf("extracting %s from %s: %w: %w", f.Name, zipPath, err, model.ErrExtractionFailed)
		}
	}

	return nil
}

func extractZipEntry(f *zip.File, base string) error {
	target := filepath.Join(base, filepath.FromSlash(f.Name))
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return fmt.Errorf("entry path escapes destination directory")
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}

	return dst.Close()
}
