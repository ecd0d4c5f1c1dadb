package parser

import (
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yaklabco/gopreserve/pkg/region"
)

// DefaultCacheSize is the number of documents kept by NewCache when size is not positive.
const DefaultCacheSize = 1024

type cacheKey struct {
	parser *Parser
	sum    [sha256.Size]byte
}

// Cache memoizes parse results by parser and content hash.
// Documents are immutable, so cached values are shared between callers.
// Cache is safe for concurrent use.
type Cache struct {
	docs *lru.Cache[cacheKey, *region.Document]
}

// NewCache returns a cache holding up to size documents.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	docs, err := lru.New[cacheKey, *region.Document](size)
	if err != nil {
		return nil, fmt.Errorf("creating document cache: %w", err)
	}

	return &Cache{docs: docs}, nil
}

// Parse returns the cached document for text or parses and stores it.
// Failed parses are not cached.
func (c *Cache) Parse(p *Parser, text string) (*region.Document, error) {
	if c == nil {
		return p.Parse(text)
	}

	key := cacheKey{parser: p, sum: sha256.Sum256([]byte(text))}
	if doc, ok := c.docs.Get(key); ok {
		return doc, nil
	}

	doc, err := p.Parse(text)
	if err != nil {
		return nil, err
	}

	c.docs.Add(key, doc)

	return doc, nil
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.docs.Len()
}

// Purge drops all cached documents.
func (c *Cache) Purge() {
	if c != nil {
		c.docs.Purge()
	}
}
