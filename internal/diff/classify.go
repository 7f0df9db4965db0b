// Package diff implements the per-kind diff engines that compare a merged
// DesiredState against remote listings and classify ownership (spec.md
// §4.3).
package diff

import v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"

// Options are the shared diff options every per-kind engine accepts
// (spec.md §4.3).
type Options struct {
	IncludeOrphans bool
	ChangesOnly    bool
	Layer          v1.Layer
	Names          []string
	PackageVersion string
}

// DefaultOptions matches spec.md's documented defaults.
func DefaultOptions() Options {
	return Options{IncludeOrphans: true}
}

func (o Options) nameAllowed(name string) bool {
	if len(o.Names) == 0 {
		return true
	}
	for _, n := range o.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Classify buckets a remote resource against the manifest index (spec.md
// §3): hasMarker is whether the remote carries this engine's management
// marker; inManifest is whether its name appears among the desired
// entries of the same kind.
func Classify(hasMarker, inManifest bool) v1.OwnershipClass {
	switch {
	case hasMarker && inManifest:
		return v1.Managed
	case hasMarker && !inManifest:
		return v1.Orphaned
	case !hasMarker && inManifest:
		return v1.Adopted
	default:
		return v1.Unmanaged
	}
}

// desiredByName indexes desired resources of one kind by metadata.name.
func desiredByName(desired []*v1.Resource) map[string]*v1.Resource {
	out := make(map[string]*v1.Resource, len(desired))
	for _, r := range desired {
		out[r.Metadata.Name] = r
	}
	return out
}
