package v1

// ManagedMetadata is the management marker and provenance stamp the engine
// writes onto remote resources it owns (spec.md §3, §6.2). Blocks and
// folders carry it as a metadata object; tools lack a metadata field on the
// remote side and so encode the same fields as namespaced tags instead (see
// internal/tags).
type ManagedMetadata struct {
	ManagedBy      string         `json:"managed_by"`
	Layer          Layer          `json:"layer"`
	Org            string         `json:"org,omitempty"`
	Project        string         `json:"project,omitempty"`
	PackageVersion string         `json:"package_version,omitempty"`
	LastSynced     string         `json:"last_synced,omitempty"`
	Description    string         `json:"description,omitempty"`
	SourcePath     string         `json:"source_path,omitempty"`
	AdoptedAt      string         `json:"adopted_at,omitempty"`
	OriginalName   string         `json:"original_name,omitempty"`
	Extras         map[string]any `json:"extras,omitempty"`
}

func (m *ManagedMetadata) copy() *ManagedMetadata {
	if m == nil {
		return nil
	}
	out := *m
	if m.Extras != nil {
		out.Extras = make(map[string]any, len(m.Extras))
		for k, v := range m.Extras {
			out.Extras[k] = v
		}
	}
	return &out
}

// BlockSpec is a memory block: a labeled, versioned chunk of persistent
// context an agent can read or write.
type BlockSpec struct {
	Layer        Layer    `json:"layer" yaml:"layer"`
	Managed      *bool    `json:"managed,omitempty" yaml:"managed,omitempty"`
	Label        string   `json:"label" yaml:"label"`
	Value        string   `json:"value" yaml:"value"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Limit        *int     `json:"limit,omitempty" yaml:"limit,omitempty"`
	IsTemplate   bool     `json:"isTemplate,omitempty" yaml:"isTemplate,omitempty"`
	TemplateName string   `json:"templateName,omitempty" yaml:"templateName,omitempty"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	PackageVer   string   `json:"packageVersion,omitempty" yaml:"packageVersion,omitempty"`
}

func (s *BlockSpec) copy() *BlockSpec {
	if s == nil {
		return nil
	}
	out := *s
	out.Tags = copyStringSlice(s.Tags)
	if s.Managed != nil {
		m := *s.Managed
		out.Managed = &m
	}
	if s.Limit != nil {
		l := *s.Limit
		out.Limit = &l
	}
	return &out
}

func (s *BlockSpec) IsManaged() bool { return s == nil || s.Managed == nil || *s.Managed }

// SourceType is the language a Tool's source code is written in.
type SourceType string

const (
	SourcePython     SourceType = "python"
	SourceTypeScript SourceType = "typescript"
)

// JSONSchemaFunction is the `function` member of a Tool's jsonSchema,
// required to match the tool's own name (spec.md §4.1, §4.2 constraints).
type JSONSchemaFunction struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type JSONSchema struct {
	Type     string             `json:"type" yaml:"type"`
	Function JSONSchemaFunction `json:"function" yaml:"function"`
}

func (s JSONSchema) equal(o JSONSchema) bool {
	return s.Type == o.Type && s.Function.Name == o.Function.Name &&
		s.Function.Description == o.Function.Description &&
		mapsEqual(s.Function.Parameters, o.Function.Parameters)
}

// ToolSpec is an executable function an agent can call.
type ToolSpec struct {
	Layer      Layer      `json:"layer" yaml:"layer"`
	Managed    *bool      `json:"managed,omitempty" yaml:"managed,omitempty"`
	SourceType SourceType `json:"sourceType" yaml:"sourceType"`
	SourceCode string     `json:"sourceCode" yaml:"sourceCode"`
	JSONSchema JSONSchema `json:"jsonSchema" yaml:"jsonSchema"`
	ToolType   string     `json:"toolType,omitempty" yaml:"toolType,omitempty"`
	Tags       []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	PackageVer string     `json:"packageVersion,omitempty" yaml:"packageVersion,omitempty"`
}

func (s *ToolSpec) copy() *ToolSpec {
	if s == nil {
		return nil
	}
	out := *s
	out.Tags = copyStringSlice(s.Tags)
	if s.JSONSchema.Function.Parameters != nil {
		out.JSONSchema.Function.Parameters = copyAnyMap(s.JSONSchema.Function.Parameters)
	}
	if s.Managed != nil {
		m := *s.Managed
		out.Managed = &m
	}
	return &out
}

func (s *ToolSpec) IsManaged() bool { return s == nil || s.Managed == nil || *s.Managed }

// MCPServerProtocol is the transport an MCPServerSpec speaks.
type MCPServerProtocol string

const (
	MCPProtocolStdio           MCPServerProtocol = "stdio"
	MCPProtocolSSE             MCPServerProtocol = "sse"
	MCPProtocolStreamableHTTP  MCPServerProtocol = "streamable-http"
)

// CredentialRef points at a secret held by the credential provider chain,
// generalized from the teacher's `CredentialsSecretRef`/`CredentialsSecretKey`
// pattern (SPEC_FULL.md, Supplemented Features).
type CredentialRef struct {
	SecretRef string `json:"secretRef" yaml:"secretRef"`
	SecretKey string `json:"secretKey,omitempty" yaml:"secretKey,omitempty"`
}

type StdioConfig struct {
	Command string   `json:"command" yaml:"command"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// MCPServerSpec describes an MCP tool server an agent can attach to.
// Observe-only: the diff engine for this kind never mutates (spec.md §4.3).
type MCPServerSpec struct {
	Layer         Layer             `json:"layer" yaml:"layer"`
	Managed       *bool             `json:"managed,omitempty" yaml:"managed,omitempty"`
	Protocol      MCPServerProtocol `json:"protocol" yaml:"protocol"`
	ServerURL     string            `json:"serverUrl,omitempty" yaml:"serverUrl,omitempty"`
	StdioConfig   *StdioConfig      `json:"stdioConfig,omitempty" yaml:"stdioConfig,omitempty"`
	TokenRef      *CredentialRef    `json:"tokenRef,omitempty" yaml:"tokenRef,omitempty"`
	Env           map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
}

func (s *MCPServerSpec) copy() *MCPServerSpec {
	if s == nil {
		return nil
	}
	out := *s
	if s.StdioConfig != nil {
		sc := *s.StdioConfig
		sc.Args = copyStringSlice(s.StdioConfig.Args)
		out.StdioConfig = &sc
	}
	if s.TokenRef != nil {
		tr := *s.TokenRef
		out.TokenRef = &tr
	}
	out.Env = copyStringMap(s.Env)
	if s.Managed != nil {
		m := *s.Managed
		out.Managed = &m
	}
	return &out
}

func (s *MCPServerSpec) IsManaged() bool { return s == nil || s.Managed == nil || *s.Managed }

// EmbeddingConfig configures the embedding model a Folder indexes with.
type EmbeddingConfig struct {
	Model     string `json:"model" yaml:"model"`
	ChunkSize *int   `json:"chunkSize,omitempty" yaml:"chunkSize,omitempty"`
}

// FolderSpec is a knowledge-source folder (must not be layer=base, spec.md
// §4.2 constraint).
type FolderSpec struct {
	Layer           Layer           `json:"layer" yaml:"layer"`
	Managed         *bool           `json:"managed,omitempty" yaml:"managed,omitempty"`
	Description     string          `json:"description,omitempty" yaml:"description,omitempty"`
	Instructions    string          `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	EmbeddingConfig EmbeddingConfig `json:"embeddingConfig" yaml:"embeddingConfig"`
	PackageVer      string          `json:"packageVersion,omitempty" yaml:"packageVersion,omitempty"`
}

func (s *FolderSpec) copy() *FolderSpec {
	if s == nil {
		return nil
	}
	out := *s
	if s.EmbeddingConfig.ChunkSize != nil {
		c := *s.EmbeddingConfig.ChunkSize
		out.EmbeddingConfig.ChunkSize = &c
	}
	if s.Managed != nil {
		m := *s.Managed
		out.Managed = &m
	}
	return &out
}

func (s *FolderSpec) IsManaged() bool { return s == nil || s.Managed == nil || *s.Managed }

// ModelConfig is the opaque model reference an agent Template carries. This
// spec never talks to a model provider directly (SPEC_FULL.md, Dropped
// teacher dependencies) so `Model` is a pass-through string.
type ModelConfig struct {
	Model string `json:"model" yaml:"model"`
}

type TemplateAgent struct {
	Name        string      `json:"name" yaml:"name"`
	ModelConfig ModelConfig `json:"modelConfig" yaml:"modelConfig"`
}

// TemplateSpec is an agent template: the blueprint new agents of a role are
// instantiated from.
type TemplateSpec struct {
	Layer          Layer         `json:"layer" yaml:"layer"`
	Managed        *bool         `json:"managed,omitempty" yaml:"managed,omitempty"`
	BaseTemplateID string        `json:"baseTemplateId" yaml:"baseTemplateId"`
	TemplateID     string        `json:"templateId" yaml:"templateId"`
	Agent          TemplateAgent `json:"agent" yaml:"agent"`
	Tags           []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	BlockIDs       []string      `json:"blockIds,omitempty" yaml:"blockIds,omitempty"`
	ToolIDs        []string      `json:"toolIds,omitempty" yaml:"toolIds,omitempty"`
	FolderIDs      []string      `json:"folderIds,omitempty" yaml:"folderIds,omitempty"`
}

func (s *TemplateSpec) copy() *TemplateSpec {
	if s == nil {
		return nil
	}
	out := *s
	out.Tags = copyStringSlice(s.Tags)
	out.BlockIDs = copyStringSlice(s.BlockIDs)
	out.ToolIDs = copyStringSlice(s.ToolIDs)
	out.FolderIDs = copyStringSlice(s.FolderIDs)
	if s.Managed != nil {
		m := *s.Managed
		out.Managed = &m
	}
	return &out
}

func (s *TemplateSpec) IsManaged() bool { return s == nil || s.Managed == nil || *s.Managed }

// IdentitySpec is an external-identity binding (must not be layer=base).
type IdentitySpec struct {
	Layer       Layer          `json:"layer" yaml:"layer"`
	Managed     *bool          `json:"managed,omitempty" yaml:"managed,omitempty"`
	IdentityType string        `json:"identityType,omitempty" yaml:"identityType,omitempty"`
	Properties  map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

func (s *IdentitySpec) copy() *IdentitySpec {
	if s == nil {
		return nil
	}
	out := *s
	out.Properties = copyAnyMap(s.Properties)
	if s.Managed != nil {
		m := *s.Managed
		out.Managed = &m
	}
	return &out
}

func (s *IdentitySpec) IsManaged() bool { return s == nil || s.Managed == nil || *s.Managed }

// AgentPolicySpec is a tag-governance policy resource (e.g. allowed
// namespaces for a role).
type AgentPolicySpec struct {
	Layer           Layer    `json:"layer" yaml:"layer"`
	Managed         *bool    `json:"managed,omitempty" yaml:"managed,omitempty"`
	AllowedRoles    []string `json:"allowedRoles,omitempty" yaml:"allowedRoles,omitempty"`
	RequiredTags    []string `json:"requiredTags,omitempty" yaml:"requiredTags,omitempty"`
}

func (s *AgentPolicySpec) copy() *AgentPolicySpec {
	if s == nil {
		return nil
	}
	out := *s
	out.AllowedRoles = copyStringSlice(s.AllowedRoles)
	out.RequiredTags = copyStringSlice(s.RequiredTags)
	if s.Managed != nil {
		m := *s.Managed
		out.Managed = &m
	}
	return &out
}

func (s *AgentPolicySpec) IsManaged() bool { return s == nil || s.Managed == nil || *s.Managed }

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if !deepEqualAny(v, bv) {
			return false
		}
	}
	return true
}

func copyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Copy wrappers so external packages (e.g. internal/merge) can deep-copy a
// kind-specific spec without reaching into the unexported copy() methods
// directly.
func (s *BlockSpec) Copy() *BlockSpec             { return s.copy() }
func (s *ToolSpec) Copy() *ToolSpec               { return s.copy() }
func (s *MCPServerSpec) Copy() *MCPServerSpec     { return s.copy() }
func (s *FolderSpec) Copy() *FolderSpec           { return s.copy() }
func (s *TemplateSpec) Copy() *TemplateSpec       { return s.copy() }
func (s *IdentitySpec) Copy() *IdentitySpec       { return s.copy() }
func (s *AgentPolicySpec) Copy() *AgentPolicySpec { return s.copy() }

// Copy returns a deep copy of Metadata for external packages.
func (m Metadata) Copy() Metadata { return m.copy() }
