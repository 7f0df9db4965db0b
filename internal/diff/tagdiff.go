package diff

import "github.com/Smarty-Pants-Inc/letta-sync/internal/tags"

// DiffTags is the tag diff engine (spec.md §4.3, §4.7): a thin adapter over
// internal/tags.Diff so every per-kind engine lives under one package.
func DiffTags(desired, existing []string, opts tags.DiffOptions) tags.DiffResult {
	return tags.Diff(desired, existing, opts)
}
