package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Permission modes for files and directories created from scratch.
const (
	DefaultFileMode os.FileMode = 0o644
	DefaultDirMode  os.FileMode = 0o755
)

// WriteAtomic replaces path with content. The content goes to a hidden temp file
// beside path, which is synced and renamed over it, so readers see the old or the
// new file and never a partial one. Missing parent directories are created. A zero
// mode means DefaultFileMode.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmpPath, err := writeTemp(dir, "."+filepath.Base(path)+".tmp.*", content, mode)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// writeTemp writes content to a new temp file in dir and returns its path. The file
// is removed again when any step fails.
func writeTemp(dir, pattern string, content []byte, mode os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	_, err = tmp.Write(content)
	if err == nil {
		err = tmp.Sync()
	}
	err = errors.Join(err, tmp.Close())
	if err == nil {
		err = os.Chmod(tmp.Name(), mode)
	}

	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("temp file: %w", err)
	}
	return tmp.Name(), nil
}
