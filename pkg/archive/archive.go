// Package archive unpacks downloaded data products that arrive compressed or
// bundled: plain compression (a.fits.gz) is decompressed in place, container
// archives (tar.gz, zip) are extracted into a directory.
package archive

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/skyarchive/voaccess/pkg/errors"
	"github.com/skyarchive/voaccess/pkg/fsutil"
)

// Manager handles extraction of downloaded products.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// Unpack inspects the file and extracts it next to itself: an archive goes
// into a directory named after the file, a compressed single file loses its
// compression suffix. It returns the resulting path. Files that are neither
// come back unchanged.
func (am *Manager) Unpack(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", path)
	}
	format, _, err := archives.Identify(ctx, filepath.Base(path), file)
	_ = file.Close()
	if err != nil {
		// not a recognized archive or compression format
		return path, nil
	}

	if _, ok := format.(archives.Extractor); ok {
		destDir := strings.TrimSuffix(path, format.Extension())
		if destDir == path {
			destDir = strings.TrimSuffix(path, filepath.Ext(path))
		}
		if destDir == path {
			destDir = path + ".d"
		}
		if err := am.ExtractAll(ctx, path, destDir); err != nil {
			return "", err
		}
		return destDir, nil
	}
	if decomp, ok := format.(archives.Decompressor); ok {
		return am.decompress(path, format.Extension(), decomp)
	}
	return path, nil
}

// ExtractAll extracts all files from an archive to the specified destination directory.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return errors.Wrapf(errors.ErrExtractionFailed, "failed to open %s: %v", archivePath, err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := fsutil.EnsureDir(destDir); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}

	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return am.extractEntry(fsys, path, destDir, d)
	})
}

// decompress writes the decompressed content next to the source, dropping the
// compression suffix.
func (am *Manager) decompress(path, ext string, decomp archives.Decompressor) (string, error) {
	destPath := strings.TrimSuffix(path, ext)
	if destPath == path {
		destPath = path + ".out"
	}

	src, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() { _ = src.Close() }()

	reader, err := decomp.OpenReader(src)
	if err != nil {
		return "", errors.Wrapf(errors.ErrExtractionFailed, "%s: %v", path, err)
	}
	defer func() { _ = reader.Close() }()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", destPath)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, reader); err != nil {
		_ = os.Remove(destPath)
		return "", errors.Wrapf(errors.ErrExtractionFailed, "%s: %v", path, err)
	}
	return destPath, nil
}

// extractEntry processes a single archive entry and writes it to destDir.
func (am *Manager) extractEntry(fsys fs.FS, path, destDir string, d fs.DirEntry) error {
	if path == "." {
		return nil
	}

	targetPath := filepath.Join(destDir, path)

	if d.IsDir() {
		return os.MkdirAll(targetPath, fsutil.DirModeDefault)
	}

	info, err := d.Info()
	if err != nil {
		return errors.Wrapf(err, "failed to get file info for %s", path)
	}

	srcFile, err := fsys.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open archive entry %s", path)
	}
	defer func() { _ = srcFile.Close() }()

	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return errors.Wrapf(err, "failed to create parent directory for %s", path)
	}

	dstFile, err := fsutil.CreateFilePerm(targetPath, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "failed to create destination file %s", targetPath)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.Wrapf(err, "failed to copy file %s", path)
	}
	return nil
}
