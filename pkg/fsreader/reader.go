// Package fsreader implements registry.FileReader on the local file system.
package fsreader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yaklabco/gopreserve/pkg/fsutil"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

// DefaultSlot is the name of the main output directory.
const DefaultSlot = "default"

// ErrUnknownSlot indicates a slot name without a configured directory.
var ErrUnknownSlot = errors.New("unknown output slot")

// Reader maps output slots to directories and reads files below them.
type Reader struct {
	slots          map[string]string
	exclude        *registry.GlobFilter
	skipDirs       map[string]struct{}
	followSymlinks bool
}

var _ registry.FileReader = (*Reader)(nil)

// Option configures a Reader.
type Option func(*Reader) error

// WithSlot adds a named output directory.
func WithSlot(name, dir string) Option {
	return func(r *Reader) error {
		if name == "" {
			return fmt.Errorf("%w: empty slot name", ErrUnknownSlot)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve slot %s: %w", name, err)
		}
		r.slots[name] = abs
		return nil
	}
}

// WithExclude skips files and directories whose path relative to the listed
// directory matches one of patterns.
func WithExclude(patterns ...string) Option {
	return func(r *Reader) error {
		if len(patterns) == 0 {
			return nil
		}
		f, err := registry.NewGlobFilter(patterns...)
		if err != nil {
			return err
		}
		r.exclude = f
		return nil
	}
}

// WithSkipDirs makes ListFiles ignore the given directories, e.g. a staging
// directory nested in an output directory.
func WithSkipDirs(dirs ...string) Option {
	return func(r *Reader) error {
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve skipped directory %s: %w", dir, err)
			}
			r.skipDirs[abs] = struct{}{}
			if resolved, err := filepath.EvalSymlinks(abs); err == nil {
				r.skipDirs[resolved] = struct{}{}
			}
		}
		return nil
	}
}

// WithFollowSymlinks makes ListFiles descend into symlinked directories.
func WithFollowSymlinks(follow bool) Option {
	return func(r *Reader) error {
		r.followSymlinks = follow
		return nil
	}
}

// New returns a Reader whose default slot is output.
func New(output string, opts ...Option) (*Reader, error) {
	r := &Reader{
		slots:    make(map[string]string),
		skipDirs: make(map[string]struct{}),
	}

	if err := WithSlot(DefaultSlot, output)(r); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Slots returns the configured slot names, sorted.
func (r *Reader) Slots() []string {
	names := make([]string, 0, len(r.slots))
	for name := range r.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SlotDir returns the directory of slot. An empty slot means DefaultSlot.
func (r *Reader) SlotDir(slot string) (string, error) {
	if slot == "" {
		slot = DefaultSlot
	}
	dir, ok := r.slots[slot]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	return dir, nil
}

// Resolve implements registry.FileReader. Absolute paths are returned cleaned.
func (r *Reader) Resolve(relPath, slot string) (string, error) {
	dir, err := r.SlotDir(slot)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(relPath) {
		return filepath.Clean(relPath), nil
	}
	return filepath.Join(dir, filepath.FromSlash(relPath)), nil
}

// Exists implements registry.FileReader.
func (r *Reader) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir implements registry.FileReader.
func (r *Reader) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ReadFile implements registry.FileReader.
func (r *Reader) ReadFile(path string) (string, error) {
	content, _, err := fsutil.ReadFile(context.Background(), path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// CanonicalPath implements registry.FileReader.
func (r *Reader) CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("evaluate symlinks: %w", err)
	}
	return resolved, nil
}

// ListFiles implements registry.FileReader. Hidden files and directories are skipped,
// as are broken symlinks and unreadable directories. The result is sorted.
func (r *Reader) ListFiles(ctx context.Context, dir string, filter registry.PathFilter) ([]string, error) {
	if filter == nil {
		filter = registry.AcceptAll
	}

	root := dir
	if target, err := filepath.EvalSymlinks(dir); err == nil {
		root = target
	}

	files, err := r.walk(ctx, root, dir, filter, map[string]struct{}{})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// walk lists root. Paths are reported below display so symlinked directories keep
// the path they were reached through; active guards against symlink cycles.
func (r *Reader) walk(
	ctx context.Context,
	root, display string,
	filter registry.PathFilter,
	active map[string]struct{},
) ([]string, error) {
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		if _, cycle := active[resolved]; cycle {
			return nil, nil
		}
		active[resolved] = struct{}{}
		defer delete(active, resolved)
	}

	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		shown := filepath.Join(display, rel)

		if entry.IsDir() {
			if path != root && (hidden(entry.Name()) || r.excluded(rel) || r.skipped(path, shown)) {
				return filepath.SkipDir
			}
			return nil
		}

		if hidden(entry.Name()) || r.excluded(rel) {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			if info.IsDir() {
				if !r.followSymlinks {
					return nil
				}
				target, evalErr := filepath.EvalSymlinks(path)
				if evalErr != nil || r.skipped(target, shown) {
					return nil //nolint:nilerr // unreadable targets are skipped
				}
				sub, err := r.walk(ctx, target, shown, filter, active)
				if err != nil {
					return err
				}
				files = append(files, sub...)
				return nil
			}
		}

		if filter.Accept(shown) {
			files = append(files, shown)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}

func (r *Reader) excluded(rel string) bool {
	return r.exclude != nil && r.exclude.Accept(rel)
}

func (r *Reader) skipped(paths ...string) bool {
	for _, p := range paths {
		if _, ok := r.skipDirs[filepath.Clean(p)]; ok {
			return true
		}
	}
	return false
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
