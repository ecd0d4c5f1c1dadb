// Package registry collects marked regions from previously generated files and merges
// them into newly generated content.
//
// A Registry has two phases. Parsers are registered first; the first Read ends
// registration. Reads accumulate a pool of marked regions whose ids must be unique
// across all files. Merge then recombines generated content with the pool, or with the
// existing file for inverse parsers.
package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/region"
)

// Sentinel errors for registry misuse and fatal read conditions.
var (
	// ErrAddParserAfterRead indicates AddParser was called after reading began.
	ErrAddParserAfterRead = errors.New("addParser not allowed after read")

	// ErrNoParsers indicates a read before any parser was registered.
	ErrNoParsers = errors.New("parsers have to be added before reading")

	// ErrNilParser indicates AddParser was called without a parser.
	ErrNilParser = errors.New("parser cannot be nil")

	// ErrNoExtensions indicates AddParserForExtensions was called without extensions.
	ErrNoExtensions = errors.New("file extensions cannot be empty")

	// ErrNotDirectory indicates a read path that exists but is not a directory.
	ErrNotDirectory = errors.New("no directory")

	// ErrGlobalDuplicateID indicates the same id was found in two files.
	ErrGlobalDuplicateID = errors.New("duplicate region id across files")

	// ErrParse wraps parse failures of previously generated files.
	ErrParse = errors.New("parse failed")
)

type phase uint8

const (
	phaseConfiguring phase = iota
	phaseLocked
)

type entry struct {
	parser *parser.Parser
	filter PathFilter
}

// Registry owns the parser list, the region pool and the set of visited paths.
// Read is not safe for concurrent use. Once reading is finished, Merge only reads
// registry state and may be called from several goroutines.
type Registry struct {
	reader  FileReader
	logger  *log.Logger
	cache   *parser.Cache
	phase   phase
	entries []entry
	pool    region.Pool
	origins map[string]string
	visited []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default logger is used otherwise.
func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCache shares a parse cache between reads and merges.
func WithCache(cache *parser.Cache) Option {
	return func(r *Registry) {
		r.cache = cache
	}
}

// New returns a Registry in the configuring phase.
func New(reader FileReader, opts ...Option) *Registry {
	r := &Registry{
		reader:  reader,
		logger:  logging.Default(),
		pool:    make(region.Pool),
		origins: make(map[string]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AddParser registers p for the files accepted by filter. A nil filter accepts all files.
// Parsers are consulted in registration order.
func (r *Registry) AddParser(p *parser.Parser, filter PathFilter) error {
	if r.phase != phaseConfiguring {
		return ErrAddParserAfterRead
	}
	if p == nil {
		return ErrNilParser
	}
	if filter == nil {
		filter = AcceptAll
	}

	r.entries = append(r.entries, entry{parser: p, filter: filter})

	return nil
}

// AddParserForExtensions registers p for files ending in one of exts.
func (r *Registry) AddParserForExtensions(p *parser.Parser, exts ...string) error {
	if len(exts) == 0 {
		return ErrNoExtensions
	}
	return r.AddParser(p, ExtensionFilter(exts))
}

// AddBindings registers each binding with AddParser, in order.
func (r *Registry) AddBindings(bindings ...Binding) error {
	for _, b := range bindings {
		if err := r.AddParser(b.Parser, b.Filter); err != nil {
			return err
		}
	}
	return nil
}

// Parsers returns the registered parsers in order.
func (r *Registry) Parsers() []*parser.Parser {
	out := make([]*parser.Parser, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.parser)
	}
	return out
}

// Locked reports whether registration has ended.
func (r *Registry) Locked() bool {
	return r.phase == phaseLocked
}

// Read collects the marked regions of every file below relPath in slot.
//
// A missing path, or a path at or below an already read path, is logged and skipped.
// Unreadable files are logged and skipped. Parse failures and ids found in two
// different files are fatal.
func (r *Registry) Read(ctx context.Context, relPath, slot string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("read cancelled: %w", ctx.Err())
	default:
	}

	if len(r.entries) == 0 {
		return ErrNoParsers
	}
	r.phase = phaseLocked

	root, err := r.reader.Resolve(relPath, slot)
	if err != nil {
		return fmt.Errorf("resolving %q in slot %q: %w", relPath, slot, err)
	}

	if !r.reader.Exists(root) {
		r.logger.Warn("path does not exist", logging.FieldPath, root)
		return nil
	}
	if !r.reader.IsDir(root) {
		return fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	canonical, err := r.reader.CanonicalPath(root)
	if err != nil {
		return fmt.Errorf("canonicalizing %s: %w", root, err)
	}
	if r.isVisited(canonical) {
		r.logger.Warn("skipping already visited path", logging.FieldPath, root)
		return nil
	}

	if err := r.readTree(ctx, root); err != nil {
		return err
	}

	r.visited = append(r.visited, canonical)

	return nil
}

func (r *Registry) isVisited(canonical string) bool {
	for _, v := range r.visited {
		if within(canonical, v) {
			return true
		}
	}
	return false
}

// within reports whether path equals root or lies below it.
func within(path, root string) bool {
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, "/") && !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}

func (r *Registry) readTree(ctx context.Context, root string) error {
	filters := make(anyOf, 0, len(r.entries))
	for _, e := range r.entries {
		filters = append(filters, e.filter)
	}

	files, err := r.reader.ListFiles(ctx, root, filters)
	if err != nil {
		return fmt.Errorf("listing %s: %w", root, err)
	}

	r.logger.Debug("reading regions", logging.FieldPath, root, logging.FieldFiles, len(files))

	for _, file := range files {
		select {
		case <-ctx.Done():
			return fmt.Errorf("read cancelled: %w", ctx.Err())
		default:
		}

		if err := r.readFile(file); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) readFile(file string) error {
	var (
		content string
		loaded  bool
		seen    = make(map[string]struct{})
	)

	for _, e := range r.entries {
		if !e.filter.Accept(file) {
			continue
		}

		if !loaded {
			text, err := r.reader.ReadFile(file)
			if err != nil {
				r.logger.Warn("cannot read file", logging.FieldPath, file, logging.FieldError, err)
				return nil
			}
			content, loaded = text, true
		}

		doc, err := r.cache.Parse(e.parser, content)
		if err != nil {
			return fmt.Errorf("%w: %s failed parsing %s: %w", ErrParse, e.parser.Name(), file, err)
		}

		r.logger.Debug("parsed file",
			logging.FieldPath, file,
			logging.FieldParser, e.parser.Name(),
			logging.FieldRegions, len(doc.MarkedIDs()))

		for _, id := range doc.MarkedIDs() {
			if _, dup := seen[id]; dup {
				r.logger.Warn("region already found by another parser",
					logging.FieldParser, e.parser.Name(),
					logging.FieldRegionID, id,
					logging.FieldPath, file)
				continue
			}
			seen[id] = struct{}{}

			if origin, exists := r.origins[id]; exists {
				return fmt.Errorf("%w: %q in %s and %s: region ids have to be globally unique",
					ErrGlobalDuplicateID, id, origin, file)
			}

			reg, _ := doc.Lookup(id)
			r.pool[id] = reg
			r.origins[id] = file
		}
	}

	return nil
}

// Pool returns a copy of the collected regions.
func (r *Registry) Pool() region.Pool {
	out := make(region.Pool, len(r.pool))
	for id, reg := range r.pool {
		out[id] = reg
	}
	return out
}

// Lookup returns the pooled region with the given id.
func (r *Registry) Lookup(id string) (region.Region, bool) {
	reg, ok := r.pool[id]
	return reg, ok
}

// Origin returns the file a pooled region was read from.
func (r *Registry) Origin(id string) (string, bool) {
	file, ok := r.origins[id]
	return file, ok
}

// Clear drops the pool and the visited paths. Registration stays locked.
func (r *Registry) Clear() {
	r.pool = make(region.Pool)
	r.origins = make(map[string]string)
	r.visited = nil
}
