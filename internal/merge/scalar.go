package merge

import "dario.cat/mergo"

// mergeScalars deep-merges overlay's non-zero scalar fields onto acc using
// mergo.WithOverride: a zero-valued overlay field means "no opinion" and
// keeps acc's value, matching spec.md §4.2's scalar merge rule. Array
// fields on T are expected to already be cleared by the caller before
// invoking this (each kind's merge function handles its own arrays by
// hand; see arrays.go).
func mergeScalars[T any](acc *T, overlay T) error {
	return mergo.Merge(acc, overlay, mergo.WithOverride)
}
