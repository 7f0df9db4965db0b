package apply

import (
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
)

// stampMetadata builds the ManagedMetadata fields every create/update/adopt
// call writes (spec.md §4.4's action execution contracts), preserving
// adoption provenance across re-applies.
func stampMetadata(reconcilerID string, meta v1.ManagedMetadata, action v1.PlanAction, remoteName string, now time.Time) v1.ManagedMetadata {
	meta.ManagedBy = reconcilerID
	meta.LastSynced = now.UTC().Format(time.RFC3339)
	if action.Type == v1.ActionAdopt {
		if meta.AdoptedAt == "" {
			meta.AdoptedAt = now.UTC().Format(time.RFC3339)
		}
		if meta.OriginalName == "" {
			meta.OriginalName = remoteName
		}
	}
	return meta
}

func metadataToMap(meta v1.ManagedMetadata) map[string]any {
	m := map[string]any{
		"managed_by": meta.ManagedBy,
		"layer":      string(meta.Layer),
	}
	if meta.Org != "" {
		m["org"] = meta.Org
	}
	if meta.Project != "" {
		m["project"] = meta.Project
	}
	if meta.PackageVersion != "" {
		m["package_version"] = meta.PackageVersion
	}
	if meta.LastSynced != "" {
		m["last_synced"] = meta.LastSynced
	}
	if meta.Description != "" {
		m["description"] = meta.Description
	}
	if meta.SourcePath != "" {
		m["source_path"] = meta.SourcePath
	}
	if meta.AdoptedAt != "" {
		m["adopted_at"] = meta.AdoptedAt
	}
	if meta.OriginalName != "" {
		m["original_name"] = meta.OriginalName
	}
	return m
}

// blockBody builds the blocks.create/update request body (spec.md §4.4).
func blockBody(name string, spec *v1.BlockSpec, meta v1.ManagedMetadata) map[string]any {
	body := map[string]any{
		"label": spec.Label,
		"value": spec.Value,
	}
	if spec.Description != "" {
		body["description"] = spec.Description
	}
	if spec.Limit != nil {
		body["limit"] = *spec.Limit
	}
	body["metadata"] = metadataToMap(meta)
	return body
}

// toolBody builds the tools.create/update request body. Tools carry
// ManagedMetadata as namespaced tags rather than a metadata object
// (spec.md §3), so the caller merges tags separately via internal/tags.
func toolBody(name string, spec *v1.ToolSpec) map[string]any {
	body := map[string]any{
		"sourceType": string(spec.SourceType),
		"sourceCode": spec.SourceCode,
		"toolType":   spec.ToolType,
	}
	body["jsonSchema"] = map[string]any{
		"type": spec.JSONSchema.Type,
		"function": map[string]any{
			"name":        spec.JSONSchema.Function.Name,
			"description": spec.JSONSchema.Function.Description,
			"parameters":  spec.JSONSchema.Function.Parameters,
		},
	}
	return body
}

// folderBody builds the folders.create/update request body.
func folderBody(name string, spec *v1.FolderSpec, meta v1.ManagedMetadata) map[string]any {
	body := map[string]any{
		"description":  spec.Description,
		"instructions": spec.Instructions,
	}
	ec := map[string]any{"model": spec.EmbeddingConfig.Model}
	if spec.EmbeddingConfig.ChunkSize != nil {
		ec["chunkSize"] = *spec.EmbeddingConfig.ChunkSize
	}
	body["embeddingConfig"] = ec
	body["metadata"] = metadataToMap(meta)
	return body
}
