package merge

import "strings"

// AppendMerge implements spec.md §4.2's append semantics for primitive
// string arrays: concatenate then dedupe; an element prefixed with "!"
// removes the matching (unprefixed) element from the combined set instead
// of being added itself.
func AppendMerge(base, overlay []string) []string {
	present := make(map[string]bool, len(base)+len(overlay))
	order := make([]string, 0, len(base)+len(overlay))

	add := func(v string) {
		if !present[v] {
			present[v] = true
			order = append(order, v)
		}
	}
	for _, v := range base {
		add(v)
	}

	var removals []string
	for _, v := range overlay {
		if strings.HasPrefix(v, "!") {
			removals = append(removals, strings.TrimPrefix(v, "!"))
			continue
		}
		add(v)
	}

	if len(removals) == 0 {
		return order
	}
	removeSet := make(map[string]bool, len(removals))
	for _, r := range removals {
		removeSet[r] = true
	}
	out := make([]string, 0, len(order))
	for _, v := range order {
		if !removeSet[v] {
			out = append(out, v)
		}
	}
	return out
}

// ReplaceMerge implements the "replace" strategy: the overlay wins outright
// when non-nil, otherwise the base is kept.
func ReplaceMerge(base, overlay []string) []string {
	if overlay != nil {
		return overlay
	}
	return base
}
