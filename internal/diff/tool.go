package diff

import (
	"encoding/json"
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/tags"
	"github.com/google/uuid"
)

func hasManagedByTag(remoteTags []string, reconcilerID string) bool {
	marker := tags.Tag{Namespace: tags.NamespaceManagedBy, Value: reconcilerID}.String()
	for _, t := range remoteTags {
		if t == marker {
			return true
		}
	}
	return false
}

func userTags(remoteTags []string) []string {
	var out []string
	for _, raw := range remoteTags {
		t, err := tags.Parse(raw)
		if err != nil || !tags.IsManagementNamespace(t.Namespace) {
			out = append(out, raw)
		}
	}
	return out
}

// DiffTools computes the tool diff engine's result (spec.md §4.3).
func DiffTools(desired []*v1.Resource, actual []v1.RemoteEntry, reconcilerID string, opts Options) *v1.DiffResult {
	byName := desiredByName(desired)
	result := &v1.DiffResult{
		ID:           uuid.NewString(),
		Kind:         v1.KindTool,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		DriftDetails: map[string][]v1.Drift{},
	}

	remoteNames := map[string]bool{}
	for _, remote := range actual {
		if !opts.nameAllowed(remote.Name) {
			continue
		}
		remoteNames[remote.Name] = true

		desiredEntry, inManifest := byName[remote.Name]
		hasMarker := hasManagedByTag(remote.Tags, reconcilerID)
		class := Classify(hasMarker, inManifest)
		result.Classified = append(result.Classified, v1.ClassifiedEntry{Remote: remote, Class: class})

		switch class {
		case v1.Managed, v1.Adopted:
			drifts := toolDrift(desiredEntry.Tool, remote, opts)
			if len(drifts) > 0 {
				result.DriftDetails[remote.Name] = drifts
			}
			action := v1.PlanAction{ResourceKind: v1.KindTool, ResourceName: remote.Name, RemoteID: remote.RemoteID}
			switch {
			case class == v1.Adopted:
				action.Type = v1.ActionAdopt
				action.Reason = "adopting unmarked tool matching manifest entry"
			case len(drifts) > 0:
				action.Type = v1.ActionUpdate
				action.Changes = driftsToChanges(drifts)
			default:
				if opts.ChangesOnly {
					continue
				}
				action.Type = v1.ActionSkip
				action.Reason = "in sync"
			}
			result.Actions = append(result.Actions, action)
		case v1.Orphaned:
			if opts.IncludeOrphans {
				result.Actions = append(result.Actions, v1.PlanAction{
					Type: v1.ActionSkip, ResourceKind: v1.KindTool, ResourceName: remote.Name,
					RemoteID: remote.RemoteID, Reason: "orphaned; opt in with --allow-delete",
				})
			}
		}
	}

	for name, r := range byName {
		if remoteNames[name] {
			continue
		}
		result.Actions = append(result.Actions, v1.PlanAction{
			Type: v1.ActionCreate, ResourceKind: v1.KindTool, ResourceName: name,
			Changes: []v1.FieldChange{{Field: "sourceCode", NewValue: r.Tool.SourceCode}},
		})
	}

	return result
}

func toolDrift(desired *v1.ToolSpec, remote v1.RemoteEntry, opts Options) []v1.Drift {
	var drifts []v1.Drift

	if actual, _ := remote.Fields["sourceCode"].(string); actual != desired.SourceCode {
		drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "sourceCode", Actual: actual, Desired: desired.SourceCode})
	}

	if actualSchema, ok := remote.Fields["jsonSchema"]; ok {
		actualBytes, _ := json.Marshal(actualSchema)
		desiredBytes, _ := json.Marshal(desired.JSONSchema)
		if string(actualBytes) != string(desiredBytes) {
			drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "jsonSchema", Actual: actualSchema, Desired: desired.JSONSchema})
		}
	}

	desiredUser := userTags(desired.Tags)
	actualUser := userTags(remote.Tags)
	if !stringSliceSetEqual(desiredUser, actualUser) {
		drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "tags", Actual: actualUser, Desired: desiredUser})
	}

	if actualType, _ := remote.Fields["toolType"].(string); actualType != desired.ToolType {
		drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "toolType", Actual: actualType, Desired: desired.ToolType})
	}

	if opts.PackageVersion != "" {
		if actualVer, _ := remote.Fields["package_version"].(string); actualVer != opts.PackageVersion {
			drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "package_version", Actual: actualVer, Desired: opts.PackageVersion})
		}
	}

	return drifts
}

func stringSliceSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := map[string]bool{}
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}
