package region

import (
	"fmt"
	"strings"
)

// Source provides marked regions by id.
type Source interface {
	Lookup(id string) (Region, bool)
}

// Document is an ordered, immutable sequence of regions.
// Marked region ids are unique within a document.
type Document struct {
	regions []Region
	index   map[string]int
}

// NewDocument assembles a document from regions in order.
// It fails with ErrDuplicateID when two marked regions share an id.
func NewDocument(regions ...Region) (*Document, error) {
	doc := &Document{
		regions: make([]Region, 0, len(regions)),
		index:   make(map[string]int),
	}

	for _, r := range regions {
		if err := doc.append(r); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func (d *Document) append(r Region) error {
	if r.IsMarked() {
		if _, exists := d.index[r.id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateID, r.id)
		}
		d.index[r.id] = len(d.regions)
	}

	d.regions = append(d.regions, r)

	return nil
}

// Regions returns a copy of the document's regions.
func (d *Document) Regions() []Region {
	out := make([]Region, len(d.regions))
	copy(out, d.regions)
	return out
}

// Len returns the number of regions.
func (d *Document) Len() int { return len(d.regions) }

// At returns the region at position i.
func (d *Document) At(i int) Region { return d.regions[i] }

// Lookup returns the marked region with the given id. A nil document has none.
func (d *Document) Lookup(id string) (Region, bool) {
	if d == nil {
		return Region{}, false
	}
	i, ok := d.index[id]
	if !ok {
		return Region{}, false
	}
	return d.regions[i], true
}

// MarkedIDs returns the ids of all marked regions in document order.
func (d *Document) MarkedIDs() []string {
	ids := make([]string, 0, len(d.index))
	for _, r := range d.regions {
		if r.IsMarked() {
			ids = append(ids, r.id)
		}
	}
	return ids
}

// Content concatenates the text of all regions.
func (d *Document) Content() string {
	var sb strings.Builder
	for _, r := range d.regions {
		sb.WriteString(r.text)
	}
	return sb.String()
}

// Pool is a flat set of marked regions keyed by id.
type Pool map[string]Region

// Lookup returns the region stored under id.
func (p Pool) Lookup(id string) (Region, bool) {
	r, ok := p[id]
	return r, ok
}
