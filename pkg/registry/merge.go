package registry

import (
	"context"
	"fmt"

	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/region"
)

// MergeResult is the outcome of merging one generated file.
type MergeResult struct {
	// Content is the merged text.
	Content string

	// Path is the reader path of the target file.
	Path string

	// Parsers lists the parsers that accepted the file, in order.
	Parsers []string

	// Preserved lists the ids carried over from the pool or kept from the existing file.
	Preserved []string

	// Filled lists the ids refreshed from generated content by inverse parsers.
	Filled []string
}

// Merge recombines generated contents for relPath in slot with collected regions.
//
// Every parser accepting the target path re-parses the running result in registration
// order. Inverse parsers fill generated regions into the existing file; other parsers
// restore enabled regions from the pool. Without an accepting parser the contents are
// returned unchanged.
func (r *Registry) Merge(ctx context.Context, relPath, slot, contents string) (*MergeResult, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("merge cancelled: %w", ctx.Err())
	default:
	}

	path, err := r.reader.Resolve(relPath, slot)
	if err != nil {
		return nil, fmt.Errorf("resolving %q in slot %q: %w", relPath, slot, err)
	}

	result := &MergeResult{Content: contents, Path: path}

	for _, e := range r.entries {
		if !e.filter.Accept(path) {
			continue
		}
		result.Parsers = append(result.Parsers, e.parser.Name())

		doc, err := r.cache.Parse(e.parser, result.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %s failed parsing generated %s: %w", ErrParse, e.parser.Name(), relPath, err)
		}

		if e.parser.IsInverse() {
			doc, err = r.fillIn(e.parser, path, doc, result)
		} else {
			doc, err = r.mergePool(doc, result)
		}
		if err != nil {
			return nil, err
		}

		result.Content = doc.Content()
	}

	r.logger.Debug("merged file",
		logging.FieldPath, path,
		logging.FieldParsers, result.Parsers,
		logging.FieldRegions, len(result.Preserved)+len(result.Filled))

	return result, nil
}

func (r *Registry) mergePool(doc *region.Document, result *MergeResult) (*region.Document, error) {
	for _, id := range doc.MarkedIDs() {
		if prev, ok := r.pool[id]; ok && prev.Enabled() {
			result.Preserved = append(result.Preserved, id)
		}
	}

	merged, err := region.Merge(doc, r.pool)
	if err != nil {
		return nil, fmt.Errorf("merging regions: %w", err)
	}
	return merged, nil
}

func (r *Registry) fillIn(p *parser.Parser, path string, generated *region.Document, result *MergeResult) (*region.Document, error) {
	if !r.reader.Exists(path) {
		return generated, nil
	}

	existing, err := r.reader.ReadFile(path)
	if err != nil {
		r.logger.Warn("cannot read file", logging.FieldPath, path, logging.FieldError, err)
		return generated, nil
	}

	previous, err := r.cache.Parse(p, existing)
	if err != nil {
		return nil, fmt.Errorf("%w: %s failed parsing existing %s: %w", ErrParse, p.Name(), path, err)
	}

	for _, reg := range previous.Regions() {
		if !reg.IsMarked() {
			continue
		}
		if _, ok := generated.Lookup(reg.ID()); ok && reg.Enabled() {
			result.Filled = append(result.Filled, reg.ID())
		} else {
			result.Preserved = append(result.Preserved, reg.ID())
		}
	}

	filled, err := region.FillIn(generated, previous)
	if err != nil {
		return nil, fmt.Errorf("filling in regions: %w", err)
	}
	return filled, nil
}
