package diff

import (
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/google/uuid"
)

// DiffFolders computes the folder diff engine's result (spec.md §4.3).
func DiffFolders(desired []*v1.Resource, actual []v1.RemoteEntry, reconcilerID string, opts Options) *v1.DiffResult {
	byName := desiredByName(desired)
	result := &v1.DiffResult{
		ID:           uuid.NewString(),
		Kind:         v1.KindFolder,
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
		hasMarker := reconcilerManagedBy(remote) == reconcilerID
		class := Classify(hasMarker, inManifest)
		result.Classified = append(result.Classified, v1.ClassifiedEntry{Remote: remote, Class: class})

		switch class {
		case v1.Managed, v1.Adopted:
			drifts := folderDrift(desiredEntry.Folder, remote, opts)
			if len(drifts) > 0 {
				result.DriftDetails[remote.Name] = drifts
			}
			action := v1.PlanAction{ResourceKind: v1.KindFolder, ResourceName: remote.Name, RemoteID: remote.RemoteID}
			switch {
			case class == v1.Adopted:
				action.Type = v1.ActionAdopt
				action.Reason = "adopting unmarked folder matching manifest entry"
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
					Type: v1.ActionSkip, ResourceKind: v1.KindFolder, ResourceName: remote.Name,
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
			Type: v1.ActionCreate, ResourceKind: v1.KindFolder, ResourceName: name,
			Changes: []v1.FieldChange{{Field: "embeddingConfig.model", NewValue: r.Folder.EmbeddingConfig.Model}},
		})
	}

	return result
}

func folderDrift(desired *v1.FolderSpec, remote v1.RemoteEntry, opts Options) []v1.Drift {
	var drifts []v1.Drift
	if actual, _ := remote.Fields["description"].(string); actual != desired.Description {
		drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "description", Actual: actual, Desired: desired.Description})
	}
	if actual, _ := remote.Fields["instructions"].(string); actual != desired.Instructions {
		drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "instructions", Actual: actual, Desired: desired.Instructions})
	}
	if actualModel, _ := remote.Fields["embeddingModel"].(string); actualModel != desired.EmbeddingConfig.Model {
		drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "embeddingConfig.model", Actual: actualModel, Desired: desired.EmbeddingConfig.Model})
	}
	if desired.EmbeddingConfig.ChunkSize != nil {
		actualChunk, _ := remote.Fields["chunkSize"].(int)
		if actualChunk != *desired.EmbeddingConfig.ChunkSize {
			drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "embeddingConfig.chunkSize", Actual: actualChunk, Desired: *desired.EmbeddingConfig.ChunkSize})
		}
	}
	if opts.PackageVersion != "" {
		if actualVer, _ := remote.Fields["package_version"].(string); actualVer != opts.PackageVersion {
			drifts = append(drifts, v1.Drift{Type: v1.DriftFieldChanged, Field: "package_version", Actual: actualVer, Desired: opts.PackageVersion})
		}
	}
	return drifts
}
