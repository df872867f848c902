package fileutil

import (
	"os"
	"path/filepath"

	"github.com/rohmanhakim/product-aggregator/pkg/failure"
)

// EnsureDir creates dir joined with path, including parents, if missing.
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := append([]string{dir}, path...)

	full := filepath.Join(targetPath...)
	if err := os.MkdirAll(full, 0755); err != nil {
		return &FileError{Cause: ErrCausePathError, Path: full, Err: err}
	}
	return nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) failure.ClassifiedError {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return writeError(ErrCauseTempError, path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return writeError(ErrCauseWriteError, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return writeError(ErrCauseWriteError, path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return writeError(ErrCauseWriteError, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return writeError(ErrCauseRenameError, path, err)
	}
	return nil
}

func writeError(cause FileErrorCause, path string, err error) *FileError {
	return &FileError{Cause: cause, Path: path, Retryable: true, Err: err}
}
