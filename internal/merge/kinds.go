package merge

import v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"

// mergeBlock layers overlay onto acc, treating Tags with append semantics
// and everything else as scalar (spec.md §4.2).
func mergeBlock(acc, overlay *v1.BlockSpec) (*v1.BlockSpec, error) {
	if acc == nil {
		return overlay.Copy(), nil
	}
	if overlay == nil {
		return acc, nil
	}
	tags := AppendMerge(acc.Tags, overlay.Tags)
	scalarOverlay := *overlay
	scalarOverlay.Tags = nil
	if err := mergeScalars(acc, scalarOverlay); err != nil {
		return nil, err
	}
	acc.Tags = tags
	return acc, nil
}

func mergeTool(acc, overlay *v1.ToolSpec) (*v1.ToolSpec, error) {
	if acc == nil {
		return overlay.Copy(), nil
	}
	if overlay == nil {
		return acc, nil
	}
	tags := AppendMerge(acc.Tags, overlay.Tags)
	scalarOverlay := *overlay
	scalarOverlay.Tags = nil
	if err := mergeScalars(acc, scalarOverlay); err != nil {
		return nil, err
	}
	acc.Tags = tags
	return acc, nil
}

func mergeMCPServer(acc, overlay *v1.MCPServerSpec) (*v1.MCPServerSpec, error) {
	if acc == nil {
		return overlay.Copy(), nil
	}
	if overlay == nil {
		return acc, nil
	}
	env := make(map[string]string, len(acc.Env)+len(overlay.Env))
	for k, v := range acc.Env {
		env[k] = v
	}
	for k, v := range overlay.Env {
		env[k] = v
	}
	scalarOverlay := *overlay
	scalarOverlay.Env = nil
	if err := mergeScalars(acc, scalarOverlay); err != nil {
		return nil, err
	}
	acc.Env = env
	return acc, nil
}

func mergeFolder(acc, overlay *v1.FolderSpec) (*v1.FolderSpec, error) {
	if acc == nil {
		return overlay.Copy(), nil
	}
	if overlay == nil {
		return acc, nil
	}
	if err := mergeScalars(acc, *overlay); err != nil {
		return nil, err
	}
	return acc, nil
}

func mergeTemplate(acc, overlay *v1.TemplateSpec) (*v1.TemplateSpec, error) {
	if acc == nil {
		return overlay.Copy(), nil
	}
	if overlay == nil {
		return acc, nil
	}
	tags := AppendMerge(acc.Tags, overlay.Tags)
	blockIDs := AppendMerge(acc.BlockIDs, overlay.BlockIDs)
	toolIDs := AppendMerge(acc.ToolIDs, overlay.ToolIDs)
	folderIDs := AppendMerge(acc.FolderIDs, overlay.FolderIDs)
	scalarOverlay := *overlay
	scalarOverlay.Tags = nil
	scalarOverlay.BlockIDs = nil
	scalarOverlay.ToolIDs = nil
	scalarOverlay.FolderIDs = nil
	if err := mergeScalars(acc, scalarOverlay); err != nil {
		return nil, err
	}
	acc.Tags = tags
	acc.BlockIDs = blockIDs
	acc.ToolIDs = toolIDs
	acc.FolderIDs = folderIDs
	return acc, nil
}

func mergeIdentity(acc, overlay *v1.IdentitySpec) (*v1.IdentitySpec, error) {
	if acc == nil {
		return overlay.Copy(), nil
	}
	if overlay == nil {
		return acc, nil
	}
	props := make(map[string]any, len(acc.Properties)+len(overlay.Properties))
	for k, v := range acc.Properties {
		props[k] = v
	}
	for k, v := range overlay.Properties {
		props[k] = v
	}
	scalarOverlay := *overlay
	scalarOverlay.Properties = nil
	if err := mergeScalars(acc, scalarOverlay); err != nil {
		return nil, err
	}
	acc.Properties = props
	return acc, nil
}

func mergeAgentPolicy(acc, overlay *v1.AgentPolicySpec) (*v1.AgentPolicySpec, error) {
	if acc == nil {
		return overlay.Copy(), nil
	}
	if overlay == nil {
		return acc, nil
	}
	allowedRoles := AppendMerge(acc.AllowedRoles, overlay.AllowedRoles)
	requiredTags := AppendMerge(acc.RequiredTags, overlay.RequiredTags)
	scalarOverlay := *overlay
	scalarOverlay.AllowedRoles = nil
	scalarOverlay.RequiredTags = nil
	if err := mergeScalars(acc, scalarOverlay); err != nil {
		return nil, err
	}
	acc.AllowedRoles = allowedRoles
	acc.RequiredTags = requiredTags
	return acc, nil
}
