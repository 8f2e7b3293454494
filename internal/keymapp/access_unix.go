//go:build unix

package keymapp

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func checkReadable(path string) error {
	err := unix.Access(path, unix.R_OK)
	if errors.Is(err, unix.ENOENT) {
		return os.ErrNotExist
	}
	if err != nil {
		return &os.PathError{Op: "access", Path: path, Err: err}
	}
	return nil
}
