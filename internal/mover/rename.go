package mover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"stackwalker/internal/fileutil"
)

// renameChecked refuses to replace an existing destination before renaming.
// The check and the rename are not atomic.
func renameChecked(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(src, dst)
}

// relocate moves src to dst without overwriting dst. Cross-device moves copy,
// verify and then remove the source when allowed.
func relocate(src, dst string, crossDevice bool) error {
	err := renameNoReplace(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	if !crossDevice {
		return fmt.Errorf("cross-device move disabled: %w", err)
	}
	if _, err := fileutil.CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after cross-device copy: %w", err)
	}
	return nil
}

// sameFile reports whether src and dst are the same file on disk.
func sameFile(src, dst string) bool {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return os.SameFile(srcInfo, dstInfo)
}
