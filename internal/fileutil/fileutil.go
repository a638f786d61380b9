// Package fileutil holds file copy helpers used when a rename cannot cross
// filesystems.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrVerification is returned when a copy does not match its source.
var ErrVerification = errors.New("copy verification failed")

// CopyFileVerified streams src to dst, then re-reads dst from disk and
// compares its size and SHA-256 with the source. It returns the number of
// bytes written. dst must not exist; it is created with the source
// permissions and removed on any failure.
func CopyFileVerified(src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return 0, fmt.Errorf("copy %s: not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return 0, err
	}
	success := false
	defer func() {
		if !success {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	srcHasher := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHasher))
	if err != nil {
		return 0, err
	}
	if err := out.Sync(); err != nil {
		return 0, fmt.Errorf("sync %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	if written != srcInfo.Size() {
		return 0, fmt.Errorf("%w: source %d bytes, copied %d bytes", ErrVerification, srcInfo.Size(), written)
	}
	if err := verifyAgainst(dst, written, srcHasher.Sum(nil)); err != nil {
		return 0, err
	}
	_ = os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())

	success = true
	return written, nil
}

// verifyAgainst re-reads path and reports ErrVerification when its size or
// SHA-256 differ from the expected values.
func verifyAgainst(path string, size int64, sum []byte) error {
	gotSize, gotSum, err := hashFile(path)
	if err != nil {
		return fmt.Errorf("%w: re-read %s: %w", ErrVerification, path, err)
	}
	if gotSize != size {
		return fmt.Errorf("%w: %s has %d bytes, want %d", ErrVerification, path, gotSize, size)
	}
	if !bytes.Equal(gotSum, sum) {
		return fmt.Errorf("%w: %s hash mismatch", ErrVerification, path)
	}
	return nil
}

func hashFile(path string) (int64, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, nil, err
	}
	return n, h.Sum(nil), nil
}
