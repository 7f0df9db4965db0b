package tags

import "strings"

// DiffResult is the set-difference between a desired and an existing tag
// set (spec.md §4.7).
type DiffResult struct {
	ToAdd     []string
	ToRemove  []string
	Unchanged []string
}

// DiffOptions restricts which namespaces participate in a Diff call.
type DiffOptions struct {
	IncludeNamespaces []string
	ExcludeNamespaces []string
	ManagementOnly    bool
}

func (o DiffOptions) included(raw string) bool {
	t, err := Parse(raw)
	if err != nil {
		return true
	}
	if o.ManagementOnly && !IsManagementNamespace(t.Namespace) {
		return false
	}
	if len(o.IncludeNamespaces) > 0 && !contains(o.IncludeNamespaces, t.Namespace) {
		return false
	}
	if contains(o.ExcludeNamespaces, t.Namespace) {
		return false
	}
	return true
}

// Diff computes toAdd/toRemove/unchanged between desired and existing tag
// sets, restricted to the namespaces selected by opts.
func Diff(desired, existing []string, opts DiffOptions) DiffResult {
	desiredSet := toSet(desired)
	existingSet := toSet(existing)

	var result DiffResult
	for d := range desiredSet {
		if !opts.included(d) {
			continue
		}
		if existingSet[d] {
			result.Unchanged = append(result.Unchanged, d)
		} else {
			result.ToAdd = append(result.ToAdd, d)
		}
	}
	for e := range existingSet {
		if !opts.included(e) {
			continue
		}
		if !desiredSet[e] {
			result.ToRemove = append(result.ToRemove, e)
		}
	}
	sortStrings(result.ToAdd)
	sortStrings(result.ToRemove)
	sortStrings(result.Unchanged)
	return result
}

// MergeOptions configures Merge.
type MergeOptions struct {
	PreserveUserTags bool
}

// DefaultMergeOptions matches spec.md §4.7's documented default.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{PreserveUserTags: true}
}

// Merge returns the sorted union of desiredManagementTags with every
// non-management tag from existingTags (spec.md §4.7:
// "mergeTags(desiredManagementTags, existingTags, {preserveUserTags=true})").
func Merge(desiredManagementTags, existingTags []string, opts MergeOptions) []string {
	out := toSet(desiredManagementTags)
	if opts.PreserveUserTags {
		for _, e := range existingTags {
			t, err := Parse(e)
			if err != nil || !IsManagementNamespace(t.Namespace) {
				out[e] = true
			}
		}
	}
	result := make([]string, 0, len(out))
	for k := range out {
		result = append(result, k)
	}
	sortStrings(result)
	return result
}

// RemoveManagedMarker returns errCannotRemoveManagementTags when
// existingTags carries the `managed:<reconciler-id>` tag, nextTags drops it
// and allowRemoveManaged is false; otherwise it returns nil.
func RemoveManagedMarker(existingTags, nextTags []string, allowRemoveManaged bool) error {
	marker := Tag{Namespace: "managed", Value: ReconcilerID}.String()
	hadMarker := contains(existingTags, marker)
	hasMarker := contains(nextTags, marker)
	if hadMarker && !hasMarker && !allowRemoveManaged {
		return errCannotRemoveManagementTags
	}
	return nil
}

// UpdateAppliedTags strips any prior `applied:<layer>@*` tag and appends a
// fresh `applied:<layer>@<newSha>` (spec.md §4.7).
func UpdateAppliedTags(existing []string, layer, newSha string) []string {
	prefix := "applied:" + layer + "@"
	stalePrefix := "applied:" + layer
	out := make([]string, 0, len(existing)+1)
	for _, e := range existing {
		if strings.HasPrefix(e, stalePrefix) {
			continue
		}
		out = append(out, e)
	}
	out = append(out, prefix+newSha)
	sortStrings(out)
	return out
}

func toSet(s []string) map[string]bool {
	out := make(map[string]bool, len(s))
	for _, v := range s {
		out[v] = true
	}
	return out
}
