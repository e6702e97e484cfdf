package utils

import (
	"os"

	"github.com/pkg/errors"
)

// FileExist reports whether 'filePath' exists. Errors other than not-exist are returned.
func FileExist(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, errors.Wrapf(err, "stat %v", filePath)
	}

	return true, nil
}

// EnsureDir creates 'dir' and any missing parents.
func EnsureDir(dir string) error {
	return errors.Wrapf(os.MkdirAll(dir, 0755), "create dir %v", dir)
}
