// Package fileutil writes files atomically so readers never observe a
// half-written file.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteAtomic replaces path with data. The bytes go to a temporary file in
// the same directory, are read back and verified by SHA256, and the file is
// then renamed over path. An existing file keeps its permissions; a new one
// gets mode.
func WriteAtomic(path string, data []byte, mode fs.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := verify(tmpName, data); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	committed = true
	return nil
}

func verify(path string, want []byte) error {
	got, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read back temp file: %w", err)
	}
	if len(got) != len(want) {
		return fmt.Errorf("write size mismatch: wanted %d bytes, wrote %d bytes", len(want), len(got))
	}
	gotSum, wantSum := sha256.Sum256(got), sha256.Sum256(want)
	if !bytes.Equal(gotSum[:], wantSum[:]) {
		return errors.New("write hash mismatch: file corrupted during write")
	}
	return nil
}
