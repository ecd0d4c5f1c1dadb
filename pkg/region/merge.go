package region

// Merge carries hand-written content into a freshly generated document.
//
// The result follows the region order of generated. A marked region is replaced by the
// region of the same id from previous when that region exists and is enabled.
// Every other region is kept as generated.
func Merge(generated *Document, previous Source) (*Document, error) {
	out := &Document{
		regions: make([]Region, 0, len(generated.regions)),
		index:   make(map[string]int, len(generated.index)),
	}

	for _, r := range generated.regions {
		if r.IsMarked() && previous != nil {
			if prev, ok := previous.Lookup(r.id); ok && prev.Enabled() {
				r = prev
			}
		}

		if err := out.append(r); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// FillIn refreshes generator-owned regions of an existing document.
//
// The result follows the region order of previous. A marked, enabled region of previous
// is replaced by the region of the same id from generated when it exists there.
// Every other region is kept as previously written.
func FillIn(generated, previous *Document) (*Document, error) {
	out := &Document{
		regions: make([]Region, 0, len(previous.regions)),
		index:   make(map[string]int, len(previous.index)),
	}

	for _, r := range previous.regions {
		if r.Enabled() {
			if gen, ok := generated.Lookup(r.id); ok {
				r = gen
			}
		}

		if err := out.append(r); err != nil {
			return nil, err
		}
	}

	return out, nil
}
