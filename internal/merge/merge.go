// Package merge implements the three-layer merge engine: composing base,
// org and project Packages into a single DesiredState (spec.md §4.2).
package merge

import (
	"fmt"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/errorsx"
)

// Options configures MergePackages.
type Options struct {
	// AddLayerTags appends `_layer:<source>` to spec.tags on each block,
	// tool and template, preserving provenance for downstream tag diffs.
	// Defaults to true (spec.md §4.2).
	AddLayerTags bool
}

// DefaultOptions matches spec.md §4.2's documented default.
func DefaultOptions() Options {
	return Options{AddLayerTags: true}
}

// Result is MergePackages's output.
type Result struct {
	DesiredState *v1.DesiredState
	Warnings     []string
}

// MergePackages composes the provided layers into a DesiredState, applying
// precedence (project > org > base), append semantics for array fields (a
// "!"-prefixed element removes a value) and deletion semantics. `_merge`
// directives are carried onto the merged resource but do not change how
// its fields merge: no replace or merge-by-key strategy is applied. Fails
// with *errorsx.MergeConflicts if any conflict is detected.
func MergePackages(layers *v1.LayeredPackages, opts Options) (*Result, error) {
	conflicts := &errorsx.MergeConflicts{}
	result := &Result{DesiredState: v1.NewDesiredState()}

	for _, kind := range v1.AllKinds {
		grouped := groupByName(layers, kind)
		for name, entries := range grouped {
			merged, deleted, warning := mergeGroup(kind, name, entries, conflicts)
			if warning != "" {
				result.Warnings = append(result.Warnings, warning)
			}
			if deleted || merged == nil {
				continue
			}
			if opts.AddLayerTags {
				stampLayerTag(merged)
			}
			if err := checkConstraints(merged); err != nil {
				conflicts.Add(&errorsx.MergeConflict{
					Kind:         errorsx.ConflictConstraintViolated,
					ResourceName: fmt.Sprintf("%s/%s", kind, name),
					Detail:       err.Error(),
				})
				continue
			}
			result.DesiredState.Append(merged)
		}
	}

	if conflicts.HasErrors() {
		return nil, conflicts
	}
	return result, nil
}

// layeredEntry is one layer's resource for a given (kind, name), in
// base/org/project order; a nil entry means that layer didn't define it.
type layeredEntry struct {
	layer v1.Layer
	r     *v1.Resource
}

func groupByName(layers *v1.LayeredPackages, kind v1.Kind) map[string][]layeredEntry {
	out := map[string][]layeredEntry{}
	for _, pkg := range layers.ByLayer() {
		for _, r := range pkg.Resources {
			if r.Kind != kind {
				continue
			}
			out[r.Metadata.Name] = append(out[r.Metadata.Name], layeredEntry{layer: r.Layer(), r: r})
		}
	}
	return out
}

// mergeGroup composes one (kind, name)'s layered entries into a single
// merged Resource, honoring top-level _delete semantics.
func mergeGroup(kind v1.Kind, name string, entries []layeredEntry, conflicts *errorsx.MergeConflicts) (merged *v1.Resource, deleted bool, warning string) {
	// The highest-precedence layer where this (kind, name) appears is the
	// last entry, since entries are gathered in base/org/project order.
	last := entries[len(entries)-1]
	if last.r.Delete {
		if len(entries) == 1 {
			return nil, true, fmt.Sprintf("%s/%s: deletion has no effect (no lower layer defines it)", kind, name)
		}
		return nil, true, ""
	}

	var acc *v1.Resource
	for _, e := range entries {
		if e.r.Delete {
			// A non-highest-precedence _delete is superseded by a later
			// layer redefining the resource; simply skip this layer.
			continue
		}
		if acc == nil {
			acc = e.r.Copy()
			continue
		}
		if err := mergeInto(acc, e.r); err != nil {
			conflicts.Add(&errorsx.MergeConflict{
				Kind:         errorsx.ConflictResourceIdentity,
				ResourceName: fmt.Sprintf("%s/%s", kind, name),
				Detail:       err.Error(),
			})
		}
		acc.Metadata = e.r.Metadata.Copy()
	}
	return acc, false, ""
}

func mergeInto(acc, overlay *v1.Resource) error {
	switch acc.Kind {
	case v1.KindBlock:
		merged, err := mergeBlock(acc.Block, overlay.Block)
		if err != nil {
			return err
		}
		acc.Block = merged
	case v1.KindTool:
		if acc.Tool != nil && overlay.Tool != nil && acc.Tool.ToolType != "" && overlay.Tool.ToolType != "" && acc.Tool.ToolType != overlay.Tool.ToolType {
			return fmt.Errorf("conflicting toolType: %q vs %q", acc.Tool.ToolType, overlay.Tool.ToolType)
		}
		merged, err := mergeTool(acc.Tool, overlay.Tool)
		if err != nil {
			return err
		}
		acc.Tool = merged
	case v1.KindMCPServer:
		merged, err := mergeMCPServer(acc.MCPServer, overlay.MCPServer)
		if err != nil {
			return err
		}
		acc.MCPServer = merged
	case v1.KindFolder:
		merged, err := mergeFolder(acc.Folder, overlay.Folder)
		if err != nil {
			return err
		}
		acc.Folder = merged
	case v1.KindTemplate:
		merged, err := mergeTemplate(acc.Template, overlay.Template)
		if err != nil {
			return err
		}
		acc.Template = merged
	case v1.KindIdentity:
		merged, err := mergeIdentity(acc.Identity, overlay.Identity)
		if err != nil {
			return err
		}
		acc.Identity = merged
	case v1.KindAgentPolicy:
		merged, err := mergeAgentPolicy(acc.AgentPolicy, overlay.AgentPolicy)
		if err != nil {
			return err
		}
		acc.AgentPolicy = merged
	default:
		return fmt.Errorf("unsupported kind %q", acc.Kind)
	}
	if acc.MergeDirectives == nil {
		acc.MergeDirectives = overlay.MergeDirectives
	}
	return nil
}

func stampLayerTag(r *v1.Resource) {
	tags := r.Tags()
	if tags == nil {
		return
	}
	tag, ok := v1.LayerTags[r.Layer()]
	if !ok {
		return
	}
	*tags = AppendMerge(*tags, []string{tag})
}

// checkConstraints validates the post-merge constraint set spec.md §4.2
// lists as fatal conflicts.
func checkConstraints(r *v1.Resource) error {
	switch r.Kind {
	case v1.KindTool:
		if r.Tool.JSONSchema.Function.Name != r.Metadata.Name {
			return fmt.Errorf("jsonSchema.function.name %q must equal metadata.name %q", r.Tool.JSONSchema.Function.Name, r.Metadata.Name)
		}
	case v1.KindBlock:
		if r.Block.IsTemplate && r.Block.TemplateName == "" {
			return fmt.Errorf("isTemplate=true requires templateName")
		}
	case v1.KindFolder:
		if r.Folder.Layer == v1.LayerBase {
			return fmt.Errorf("folder must not be layer=base")
		}
	case v1.KindIdentity:
		if r.Identity.Layer == v1.LayerBase {
			return fmt.Errorf("identity must not be layer=base")
		}
	case v1.KindMCPServer:
		if r.MCPServer.Layer != v1.LayerOrg {
			return fmt.Errorf("mcpServer must be layer=org")
		}
	}
	return nil
}
