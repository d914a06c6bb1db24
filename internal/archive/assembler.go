package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrArchive reports an I/O failure while assembling the bundle. The
// job's deliverable is the archive, so callers treat this as fatal to
// the whole job even when every file transcoded cleanly.
var ErrArchive = errors.New("archive assembly failed")

// Assemble writes a zip at dest containing the named folders under
// root, preserving each folder's internal structure. Callers pass only
// completed package folders; anything else under root (the upload
// staging dir, partial output from failed files) never enters the
// bundle.
func Assemble(dest, root string, folders []string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrArchive, dest, err)
	}

	zw := zip.NewWriter(out)
	for _, folder := range folders {
		if err := addFolder(zw, root, folder); err != nil {
			_ = zw.Close()
			_ = out.Close()
			_ = os.Remove(dest)
			return err
		}
	}

	if err := zw.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("%w: finalize: %v", ErrArchive, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("%w: close %s: %v", ErrArchive, dest, err)
	}
	return nil
}

func addFolder(zw *zip.Writer, root, folder string) error {
	base := filepath.Join(root, folder)
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		return fmt.Errorf("%w: folder %s: %v", ErrArchive, folder, err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
