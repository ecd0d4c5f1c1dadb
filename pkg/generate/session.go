package generate

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/config"
	"github.com/yaklabco/gopreserve/pkg/fsreader"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

// Session wires a resolved configuration into a reader, a registry and a runner.
// A session may run any number of passes; each pass re-collects the regions.
type Session struct {
	Config   *config.Config
	Reader   *fsreader.Reader
	Registry *registry.Registry
	Runner   *Runner

	logger *log.Logger
}

// NewSession builds a session for cfg with the given parser bindings.
// Directories in cfg are expected to be absolute or relative to the working directory.
func NewSession(cfg *config.Config, bindings []registry.Binding, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Default()
	}

	staging := make([]string, 0, len(cfg.StagingDirs()))
	for _, dir := range cfg.StagingDirs() {
		staging = append(staging, dir)
	}

	readerOpts := []fsreader.Option{
		fsreader.WithExclude(cfg.Ignore...),
		fsreader.WithFollowSymlinks(cfg.FollowSymlinks),
		fsreader.WithSkipDirs(staging...),
	}
	for name, slot := range cfg.Slots {
		readerOpts = append(readerOpts, fsreader.WithSlot(name, slot.Output))
	}

	reader, err := fsreader.New(cfg.Output, readerOpts...)
	if err != nil {
		return nil, fmt.Errorf("configure output slots: %w", err)
	}

	cache, err := parser.NewCache(parser.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	reg := registry.New(reader, registry.WithLogger(logger), registry.WithCache(cache))
	if err := reg.AddBindings(bindings...); err != nil {
		return nil, fmt.Errorf("register parsers: %w", err)
	}

	pipeline := NewPipeline(reg)
	pipeline.Logger = logger

	return &Session{
		Config:   cfg,
		Reader:   reader,
		Registry: reg,
		Runner:   NewRunner(pipeline),
		logger:   logger,
	}, nil
}

// Collect clears the region pool and reads every configured read target.
func (s *Session) Collect(ctx context.Context) error {
	s.Registry.Clear()

	for _, target := range s.Config.ReadTargets() {
		slot := target.Slot
		if slot == "" {
			slot = config.DefaultSlot
		}
		if err := s.Registry.Read(ctx, target.Path, slot); err != nil {
			return fmt.Errorf("collect regions from %q in slot %q: %w", target.Path, slot, err)
		}
	}

	s.logger.Debug("collected regions", logging.FieldPoolSize, len(s.Registry.Pool()))
	return nil
}

// Slots returns the slots with a staging directory, sorted by name.
func (s *Session) Slots() []string {
	dirs := s.Config.StagingDirs()
	names := make([]string, 0, len(dirs))
	for name := range dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StagingDirs returns the staging directories in slot order.
func (s *Session) StagingDirs() []string {
	dirs := s.Config.StagingDirs()
	out := make([]string, 0, len(dirs))
	for _, name := range s.Slots() {
		out = append(out, dirs[name])
	}
	return out
}

// Apply runs one pass: collect regions, then merge every staging directory into its
// slot. Results are returned in slot order.
func (s *Session) Apply(ctx context.Context) ([]*Result, error) {
	if err := s.Collect(ctx); err != nil {
		return nil, err
	}

	dirs := s.Config.StagingDirs()
	results := make([]*Result, 0, len(dirs))

	for _, slot := range s.Slots() {
		opts := OptionsFromConfig(s.Config, slot, dirs[slot])

		result, err := s.Runner.Run(logging.WithFields(ctx, logging.FieldSlot, slot), opts)
		if err != nil {
			return results, fmt.Errorf("slot %s: %w", slot, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// TotalStats sums the statistics of results.
func TotalStats(results []*Result) Stats {
	var total Stats
	for _, r := range results {
		if r != nil {
			total.Add(r.Stats)
		}
	}
	return total
}
