package util

import (
	"os"

	"github.com/pkg/errors"
)

// Exists reports whether the given path is present on disk
func Exists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

// CreateDirectoryIfNotExists makes the directory, parents included,
// unless it is already there
func CreateDirectoryIfNotExists(path string, mode os.FileMode) error {
	if Exists(path) {
		return nil
	}

	if err := os.MkdirAll(path, mode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}

	return nil
}
