package registry

import "context"

// FileReader gives the registry access to previously generated files.
//
// Paths returned by Resolve and ListFiles are opaque to the registry and are passed
// back unchanged to the other methods and to path filters.
type FileReader interface {
	// Resolve maps a path relative to an output slot to a reader path.
	Resolve(relPath, slot string) (string, error)

	// Exists reports whether path exists.
	Exists(path string) bool

	// IsDir reports whether path is a directory.
	IsDir(path string) bool

	// ReadFile returns the content of a file.
	ReadFile(path string) (string, error)

	// ListFiles returns the files below dir accepted by filter, in a stable order.
	ListFiles(ctx context.Context, dir string, filter PathFilter) ([]string, error)

	// CanonicalPath returns a unique form of path used to detect repeated reads.
	CanonicalPath(path string) (string, error)
}
