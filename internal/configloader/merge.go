package configloader

import "github.com/yaklabco/gopreserve/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The result shares no memory with either input.
//   - Scalars: override wins when non-zero.
//   - Slots: merged by name.
//   - Slices (read, parsers, ignore): override replaces base when non-nil.
//   - Booleans without a pointer can only be switched on by an override.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override.Clone()
	}
	if override == nil {
		return base.Clone()
	}

	result := base.Clone()
	extra := override.Clone()

	if override.Generated != "" {
		result.Generated = override.Generated
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	if override.DryRun {
		result.DryRun = true
	}
	if override.Watch {
		result.Watch = true
	}
	if override.FollowSymlinks {
		result.FollowSymlinks = true
	}

	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if extra.Backups.Enabled != nil {
		result.Backups.Enabled = extra.Backups.Enabled
	}

	result.Slots = mergeSlots(base.Slots, override.Slots)

	if extra.Read != nil {
		result.Read = extra.Read
	}
	if extra.Parsers != nil {
		result.Parsers = extra.Parsers
	}
	if extra.Ignore != nil {
		result.Ignore = extra.Ignore
	}

	return result
}

func mergeSlots(base, override map[string]config.SlotConfig) map[string]config.SlotConfig {
	if base == nil && override == nil {
		return nil
	}

	result := make(map[string]config.SlotConfig, len(base)+len(override))
	for name, slot := range base {
		result[name] = slot
	}
	for name, slot := range override {
		existing := result[name]
		if slot.Output != "" {
			existing.Output = slot.Output
		}
		if slot.Generated != "" {
			existing.Generated = slot.Generated
		}
		result[name] = existing
	}
	return result
}

// MergeAll merges configurations in order, later ones taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0].Clone()
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
