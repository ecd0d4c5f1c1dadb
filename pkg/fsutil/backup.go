package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupMode selects where the previous content of an overwritten output file goes.
type BackupMode string

const (
	// BackupModeSidecar keeps the previous content next to the file, with
	// BackupSuffix appended to its name.
	BackupModeSidecar BackupMode = "sidecar"

	// BackupModeNone keeps nothing.
	BackupModeNone BackupMode = "none"
)

// BackupSuffix is appended to the name of sidecar backups.
const BackupSuffix = ".gopreserve.bak"

// BackupConfig controls backups of overwritten output files.
type BackupConfig struct {
	Enabled bool
	Mode    BackupMode
}

// DefaultBackupConfig returns a disabled sidecar configuration.
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{Mode: BackupModeSidecar}
}

// BackupPath returns where the backup of path goes, or "" when mode keeps none.
func BackupPath(path string, mode BackupMode) string {
	if mode == BackupModeNone {
		return ""
	}
	return path + BackupSuffix
}

// CreateBackup saves content, the state of snap.Path when snap was taken, to the
// backup location before the file is overwritten. A backup that already exists is
// left alone, so it keeps the content from before the first overwrite. Files that
// did not exist get no backup. It reports whether a backup was written.
func CreateBackup(ctx context.Context, snap *Snapshot, content []byte, cfg BackupConfig) (bool, error) {
	if snap == nil {
		return false, ErrNilSnapshot
	}
	if !cfg.Enabled || !snap.Exists {
		return false, nil
	}

	backupPath := BackupPath(snap.Path, cfg.Mode)
	if backupPath == "" {
		return false, nil
	}

	switch _, err := os.Stat(backupPath); {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat backup %s: %w", backupPath, err)
	}

	if err := WriteAtomic(ctx, backupPath, content, snap.Mode.Perm()); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}

// BackupExists reports whether path has a backup.
func BackupExists(path string, mode BackupMode) bool {
	backupPath := BackupPath(path, mode)
	if backupPath == "" {
		return false
	}
	_, err := os.Stat(backupPath)
	return err == nil
}
