package blankscan

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// destinationPath mirrors path's location under src beneath dst:
// src/a/b/c.png -> dst/a/b/c.png.
func destinationPath(src, dst, path string) (string, error) {
	rel, err := filepath.Rel(src, path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dst, rel), nil
}

// fileOps holds the filesystem calls a move can fail on.
type fileOps struct {
	rename func(oldpath, newpath string) error
	remove func(name string) error
}

var osOps = fileOps{rename: os.Rename, remove: os.Remove}

// moveFile relocates src to dst, creating dst's parent directories as needed.
// It renames when possible and falls back to copy+remove across devices.
// Unless overwrite is set, an existing dst is left alone and an error returned.
// It returns the number of bytes moved.
func moveFile(src, dst string, overwrite bool) (int64, error) {
	return osOps.move(src, dst, overwrite)
}

func (ops fileOps) move(src, dst string, overwrite bool) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, &FilesystemError{Op: "stat", Path: src, Err: err}
	}

	// MkdirAll succeeds when the directory already exists, including when
	// another worker created it a moment ago.
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, &FilesystemError{Op: "mkdir", Path: filepath.Dir(dst), Err: err}
	}

	if !overwrite {
		if _, err := os.Lstat(dst); err == nil {
			return 0, &FilesystemError{Op: "move", Path: dst, Err: fs.ErrExist}
		}
	}

	err = ops.rename(src, dst)
	if err == nil {
		return info.Size(), nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return 0, &FilesystemError{Op: "rename", Path: src, Err: err}
	}

	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return 0, &FilesystemError{Op: "copy", Path: src, Err: err}
	}
	// The copy is complete at this point; a failed remove leaves both files.
	if err := ops.remove(src); err != nil {
		return info.Size(), &FilesystemError{Op: "remove", Path: src, Err: err}
	}
	return info.Size(), nil
}

// copyFile writes src to a temporary file next to dst, syncs it and renames it
// into place, so dst never holds a partial copy.
func copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".blankscan-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
