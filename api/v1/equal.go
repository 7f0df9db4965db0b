package v1

import "reflect"

// deepEqualAny compares two decoded-JSON values (map[string]any, []any,
// scalars) for equality. Used by mapsEqual, which JSONSchema.equal calls to
// compare tool parameter schemas.
func deepEqualAny(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
