// Package fsutil provides the file system safety primitives used when writing merged
// output: snapshots for concurrent-modification detection, atomic writes and backups.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNilSnapshot is returned when a nil Snapshot is passed.
	ErrNilSnapshot = errors.New("nil snapshot")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")
)

// Snapshot records the state of a file, or its absence, at a point in time.
type Snapshot struct {
	Path    string
	Exists  bool
	Mode    os.FileMode
	ModTime time.Time
	Size    int64

	// Hash is the SHA-256 hash of the content.
	Hash [sha256.Size]byte
}

// ReadFile reads a file and returns its content with a snapshot.
func ReadFile(ctx context.Context, path string) ([]byte, *Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("read file: %w", ctx.Err())
	default:
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, classify(path, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, classify(path, err)
	}

	return content, &Snapshot{
		Path:    path,
		Exists:  true,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, nil
}

// ReadIfExists is like ReadFile but reports a missing file as an empty snapshot.
func ReadIfExists(ctx context.Context, path string) ([]byte, *Snapshot, error) {
	content, snap, err := ReadFile(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return nil, &Snapshot{Path: path}, nil
	}
	return content, snap, err
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
}

// CheckModified reports whether the file changed since snap was taken.
// Creation and deletion count as modifications. Size and mod time are compared
// first; equal metadata falls back to a content hash.
func CheckModified(ctx context.Context, snap *Snapshot) (bool, error) {
	if snap == nil {
		return false, ErrNilSnapshot
	}

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("check modified: %w", ctx.Err())
	default:
	}

	stat, err := os.Stat(snap.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return snap.Exists, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", snap.Path, err)
	}
	if !snap.Exists {
		return true, nil
	}

	if !stat.ModTime().Equal(snap.ModTime) || stat.Size() != snap.Size {
		return true, nil
	}

	content, err := os.ReadFile(snap.Path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", snap.Path, err)
	}

	return sha256.Sum256(content) != snap.Hash, nil
}
