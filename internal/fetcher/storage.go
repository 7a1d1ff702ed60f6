package fetcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// imageFileMode is the permission of saved images.
const imageFileMode = 0o644

// EnsureOutputDir creates dir and its parents if they do not exist.
// Calling it on an existing directory does nothing and leaves its files untouched.
func EnsureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// writeImage writes data to path through a temporary file in the same
// directory, then renames it into place. A failed write leaves no partial
// image at path. The returned bool reports whether an existing file was replaced.
func writeImage(path string, data []byte) (bool, error) {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) (bool, error) {
		_ = tmp.Close()        //nolint:errcheck // Already failing
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return false, cause
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(imageFileMode); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return false, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return false, err
	}
	return existed, nil
}
