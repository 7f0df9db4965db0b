// Package v1 defines the typed resource model the reconciliation engine
// operates over: manifests loaded from layered packages, the merged desired
// state, and the ownership/plan records produced while reconciling that
// state against a remote agent-platform tenant.
package v1

// APIVersion is the only apiVersion value the loader accepts. A manifest
// carrying any other value fails validation (spec.md §4.1).
const APIVersion = "letta-sync.smarty-pants.dev/v1"

// Kind discriminates the resource variants the engine understands.
type Kind string

const (
	KindBlock       Kind = "Block"
	KindTool        Kind = "Tool"
	KindMCPServer   Kind = "MCPServer"
	KindTemplate    Kind = "Template"
	KindFolder      Kind = "Folder"
	KindIdentity    Kind = "Identity"
	KindAgentPolicy Kind = "AgentPolicy"
)

// AllKinds lists every resource kind the loader/merger/differ dispatch over,
// in a fixed order used wherever kinds must be iterated deterministically.
var AllKinds = []Kind{
	KindBlock,
	KindTool,
	KindMCPServer,
	KindTemplate,
	KindFolder,
	KindIdentity,
	KindAgentPolicy,
}

// Layer is the manifest layer a resource belongs to; layers compose with
// precedence project > org > base (spec.md §4.2).
type Layer string

const (
	LayerBase    Layer = "base"
	LayerOrg     Layer = "org"
	LayerProject Layer = "project"
)

// LayerTags is the fixed provenance tag stamped on every merged resource
// that carries tags, keyed by source layer (spec.md §3).
var LayerTags = map[Layer]string{
	LayerBase:    "_layer:base",
	LayerOrg:     "_layer:org",
	LayerProject: "_layer:project",
}

func (l Layer) Valid() bool {
	switch l {
	case LayerBase, LayerOrg, LayerProject:
		return true
	default:
		return false
	}
}

// Metadata is the common envelope every Resource carries regardless of kind.
type Metadata struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations map[string]any    `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Status is the optional, read-only remote-state mirror a Resource may
// carry after being reconciled at least once. The loader never populates
// it from a manifest; the engine fills it in from listings when useful for
// reporting.
type Status struct {
	RemoteID  string `json:"remoteId,omitempty" yaml:"remoteId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// MergeStrategy names the per-field collection merge behavior a resource may
// request via `_merge` (spec.md §4.2).
type MergeStrategy string

const (
	MergeAppend     MergeStrategy = "append"
	MergeReplace    MergeStrategy = "replace"
	MergeByKey      MergeStrategy = "merge-by-key"
	MergeUnspecified MergeStrategy = ""
)

// Resource is the tagged-sum envelope every manifest document decodes into.
// Exactly one of the Spec fields is populated, matching Kind. This mirrors
// the corpus's re-architecture note (spec.md §9): a single struct with a
// discriminator tag rather than an interface hierarchy, so the loader,
// merger and differs can all switch on Kind without type assertions at
// every call site.
type Resource struct {
	APIVersion string   `json:"apiVersion" yaml:"apiVersion"`
	Kind       Kind     `json:"kind" yaml:"kind"`
	Metadata   Metadata `json:"metadata" yaml:"metadata"`
	Status     *Status  `json:"status,omitempty" yaml:"status,omitempty"`

	// Raw merge directives read straight off the document, applied by the
	// merge engine and never inspected by the loader itself.
	MergeDirectives map[string]MergeStrategy `json:"_merge,omitempty" yaml:"_merge,omitempty"`
	Delete          bool                     `json:"_delete,omitempty" yaml:"_delete,omitempty"`

	Block       *BlockSpec       `json:"-"`
	Tool        *ToolSpec        `json:"-"`
	MCPServer   *MCPServerSpec   `json:"-"`
	Template    *TemplateSpec    `json:"-"`
	Folder      *FolderSpec      `json:"-"`
	Identity    *IdentitySpec    `json:"-"`
	AgentPolicy *AgentPolicySpec `json:"-"`
}

// Key identifies a resource within a package and, after merge, globally.
type Key struct {
	Kind Kind
	Name string
}

func (r *Resource) Key() Key { return Key{Kind: r.Kind, Name: r.Metadata.Name} }

// Layer returns the resource's effective layer, regardless of which
// kind-specific spec carries the field.
func (r *Resource) Layer() Layer {
	switch r.Kind {
	case KindBlock:
		if r.Block != nil {
			return r.Block.Layer
		}
	case KindTool:
		if r.Tool != nil {
			return r.Tool.Layer
		}
	case KindMCPServer:
		if r.MCPServer != nil {
			return r.MCPServer.Layer
		}
	case KindTemplate:
		if r.Template != nil {
			return r.Template.Layer
		}
	case KindFolder:
		if r.Folder != nil {
			return r.Folder.Layer
		}
	case KindIdentity:
		if r.Identity != nil {
			return r.Identity.Layer
		}
	case KindAgentPolicy:
		if r.AgentPolicy != nil {
			return r.AgentPolicy.Layer
		}
	}
	return ""
}

// SetLayer assigns the layer onto whichever kind-specific spec is present.
// Used by the loader to apply the caller's default layer when a resource's
// spec.layer is unset.
func (r *Resource) SetLayer(l Layer) {
	switch r.Kind {
	case KindBlock:
		if r.Block != nil {
			r.Block.Layer = l
		}
	case KindTool:
		if r.Tool != nil {
			r.Tool.Layer = l
		}
	case KindMCPServer:
		if r.MCPServer != nil {
			r.MCPServer.Layer = l
		}
	case KindTemplate:
		if r.Template != nil {
			r.Template.Layer = l
		}
	case KindFolder:
		if r.Folder != nil {
			r.Folder.Layer = l
		}
	case KindIdentity:
		if r.Identity != nil {
			r.Identity.Layer = l
		}
	case KindAgentPolicy:
		if r.AgentPolicy != nil {
			r.AgentPolicy.Layer = l
		}
	}
}

// Tags returns the mutable tag slice for kinds that carry one, or nil for
// kinds that don't (Folder, Identity, AgentPolicy, MCPServer have no tag
// array in this model; management metadata for those rides on Metadata
// fields instead).
func (r *Resource) Tags() *[]string {
	switch r.Kind {
	case KindBlock:
		if r.Block != nil {
			return &r.Block.Tags
		}
	case KindTool:
		if r.Tool != nil {
			return &r.Tool.Tags
		}
	case KindTemplate:
		if r.Template != nil {
			return &r.Template.Tags
		}
	}
	return nil
}

// Copy returns a deep structural copy of the resource, element-wise for any
// slices/maps it carries. Used by the merge engine instead of reflection-
// based deep-copy (spec.md §9).
func (r *Resource) Copy() *Resource {
	if r == nil {
		return nil
	}
	out := *r
	out.Metadata = r.Metadata.copy()
	out.MergeDirectives = copyMergeDirectives(r.MergeDirectives)
	if r.Status != nil {
		s := *r.Status
		out.Status = &s
	}
	out.Block = r.Block.copy()
	out.Tool = r.Tool.copy()
	out.MCPServer = r.MCPServer.copy()
	out.Template = r.Template.copy()
	out.Folder = r.Folder.copy()
	out.Identity = r.Identity.copy()
	out.AgentPolicy = r.AgentPolicy.copy()
	return &out
}

func (m Metadata) copy() Metadata {
	out := m
	out.Labels = copyStringMap(m.Labels)
	if m.Annotations != nil {
		out.Annotations = make(map[string]any, len(m.Annotations))
		for k, v := range m.Annotations {
			out.Annotations[k] = v
		}
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyMergeDirectives(m map[string]MergeStrategy) map[string]MergeStrategy {
	if m == nil {
		return nil
	}
	out := make(map[string]MergeStrategy, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
