package diff

import (
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/google/uuid"
)

// canonicalAdoptionLabels and layerAdoptionPrefixes are the fixed label
// vocabulary that qualifies an unmarked remote block as adoption-eligible
// (spec.md §4.3).
var canonicalAdoptionLabels = map[string]bool{
	"project":       true,
	"decisions":     true,
	"conventions":   true,
	"glossary":      true,
	"human":         true,
	"persona":       true,
	"managed_state": true,
}

var layerAdoptionPrefixes = []string{"base_", "org_", "project_", "user_", "lane_"}

func isAdoptionEligibleLabel(label string) bool {
	if canonicalAdoptionLabels[label] {
		return true
	}
	for _, p := range layerAdoptionPrefixes {
		if len(label) > len(p) && label[:len(p)] == p {
			return true
		}
	}
	return false
}

// reconcilerManagedBy reads the `managed_by` field a Block's remote
// metadata object carries.
func reconcilerManagedBy(remote v1.RemoteEntry) string {
	if v, ok := remote.Metadata["managed_by"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// DiffBlocks computes the block diff engine's result (spec.md §4.3).
func DiffBlocks(desired []*v1.Resource, actual []v1.RemoteEntry, reconcilerID string, opts Options) *v1.DiffResult {
	byName := desiredByName(desired)
	result := &v1.DiffResult{
		ID:           uuid.NewString(),
		Kind:         v1.KindBlock,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		DriftDetails: map[string][]v1.Drift{},
	}

	remoteNames := map[string]bool{}
	for _, remote := range actual {
		if opts.Layer != "" {
			if l, ok := remote.Fields["layer"].(string); ok && v1.Layer(l) != opts.Layer {
				continue
			}
		}
		if !opts.nameAllowed(remote.Name) {
			continue
		}
		remoteNames[remote.Name] = true

		desiredEntry, inManifest := byName[remote.Name]
		hasMarker := reconcilerManagedBy(remote) == reconcilerID
		class := Classify(hasMarker, inManifest)
		if class == v1.Adopted {
			if label, _ := remote.Fields["label"].(string); !isAdoptionEligibleLabel(label) {
				class = v1.Unmanaged
			}
		}
		result.Classified = append(result.Classified, v1.ClassifiedEntry{Remote: remote, Class: class})

		switch class {
		case v1.Managed, v1.Adopted:
			drifts := blockDrift(desiredEntry.Block, remote, opts)
			if len(drifts) > 0 {
				result.DriftDetails[remote.Name] = drifts
			}
			action := v1.PlanAction{ResourceKind: v1.KindBlock, ResourceName: remote.Name, RemoteID: remote.RemoteID}
			switch {
			case class == v1.Adopted:
				action.Type = v1.ActionAdopt
				action.Reason = "adopting unmarked block matching manifest entry"
			case len(drifts) > 0:
				action.Type = v1.ActionUpdate
				action.Changes = driftsToChanges(drifts)
			default:
				action.Type = v1.ActionSkip
				action.Reason = "in sync"
				if opts.ChangesOnly {
					continue
				}
			}
			result.Actions = append(result.Actions, action)
		case v1.Orphaned:
			if opts.IncludeOrphans {
				result.Actions = append(result.Actions, v1.PlanAction{
					Type: v1.ActionSkip, ResourceKind: v1.KindBlock, ResourceName: remote.Name,
					RemoteID: remote.RemoteID, Reason: "orphaned; opt in with --allow-delete",
				})
			}
		case v1.Unmanaged:
			// excluded entirely, per spec.md §4.4.
		}
	}

	for name, r := range byName {
		if remoteNames[name] {
			continue
		}
		result.Actions = append(result.Actions, v1.PlanAction{
			Type: v1.ActionCreate, ResourceKind: v1.KindBlock, ResourceName: name,
			Changes: []v1.FieldChange{{Field: "value", NewValue: r.Block.Value}},
		})
	}

	return result
}

func blockDrift(desired *v1.BlockSpec, remote v1.RemoteEntry, opts Options) []v1.Drift {
	var drifts []v1.Drift
	if actual, _ := remote.Fields["value"].(string); actual != desired.Value {
		drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "value", Actual: actual, Desired: desired.Value})
	}
	if actualDesc, _ := remote.Fields["description"].(string); actualDesc != desired.Description {
		drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "description", Actual: actualDesc, Desired: desired.Description})
	}
	if desired.Limit != nil {
		actualLimit, _ := remote.Fields["limit"].(int)
		if actualLimit != *desired.Limit {
			drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "limit", Actual: actualLimit, Desired: *desired.Limit})
		}
	}
	if opts.PackageVersion != "" {
		if actualVer, _ := remote.Fields["package_version"].(string); actualVer != opts.PackageVersion {
			drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "package_version", Actual: actualVer, Desired: opts.PackageVersion})
		}
	}
	return drifts
}

func driftsToChanges(drifts []v1.Drift) []v1.FieldChange {
	out := make([]v1.FieldChange, 0, len(drifts))
	for _, d := range drifts {
		out = append(out, v1.FieldChange{Field: d.Field, OldValue: d.Actual, NewValue: d.Desired})
	}
	return out
}
