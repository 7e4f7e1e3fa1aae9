package core

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is the error resulting if a lookup failed to find an executable file.
var ErrNotFound = errors.New("command not found")

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); m.IsRegular() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath resolves an executable named file inside binDir. There is no PATH
// search: the result is always binDir joined with file.
func LookPath(binDir, file string) (string, error) {
	if file == "" {
		return "", ErrNotFound
	}

	path := filepath.Join(binDir, file)
	switch err := findExecutable(path); {
	case err == nil:
		return path, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", ErrNotFound
	default:
		return "", err
	}
}
