package manifest

import (
	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/errorsx"
)

// ValidatePackage enforces spec.md §4.1's per-kind required-field rules and
// returns an aggregated *errorsx.PackageValidationError if any resource
// fails.
func ValidatePackage(pkg *v1.Package) error {
	ve := &errorsx.PackageValidationError{Path: pkg.SourcePath}

	seen := map[v1.Key]bool{}
	for _, r := range pkg.Resources {
		if r.APIVersion != v1.APIVersion {
			ve.Add("%s/%s: unsupported apiVersion %q (want %q)", r.Kind, r.Metadata.Name, r.APIVersion, v1.APIVersion)
			continue
		}
		key := r.Key()
		if seen[key] {
			ve.Add("duplicate resource %s/%s", r.Kind, r.Metadata.Name)
		}
		seen[key] = true

		validateResource(r, ve)
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateResource(r *v1.Resource, ve *errorsx.PackageValidationError) {
	name := r.Metadata.Name
	switch r.Kind {
	case v1.KindBlock:
		b := r.Block
		if b == nil {
			ve.Add("Block/%s: missing spec", name)
			return
		}
		if b.Label == "" {
			ve.Add("Block/%s: spec.label is required", name)
		}
		if b.Value == "" {
			ve.Add("Block/%s: spec.value is required", name)
		}
		if b.IsTemplate && b.TemplateName == "" {
			ve.Add("Block/%s: spec.templateName is required when isTemplate is true", name)
		}

	case v1.KindTool:
		t := r.Tool
		if t == nil {
			ve.Add("Tool/%s: missing spec", name)
			return
		}
		if t.SourceType != v1.SourcePython && t.SourceType != v1.SourceTypeScript {
			ve.Add("Tool/%s: spec.sourceType must be 'python' or 'typescript', got %q", name, t.SourceType)
		}
		if t.SourceCode == "" {
			ve.Add("Tool/%s: spec.sourceCode is required", name)
		}
		if t.JSONSchema.Type != "function" {
			ve.Add("Tool/%s: spec.jsonSchema.type must be 'function'", name)
		}
		if t.JSONSchema.Function.Name != name {
			ve.Add("Tool/%s: spec.jsonSchema.function.name (%q) must equal metadata.name", name, t.JSONSchema.Function.Name)
		}

	case v1.KindMCPServer:
		m := r.MCPServer
		if m == nil {
			ve.Add("MCPServer/%s: missing spec", name)
			return
		}
		if m.Layer != v1.LayerOrg {
			ve.Add("MCPServer/%s: spec.layer must be 'org'", name)
		}
		switch m.Protocol {
		case v1.MCPProtocolStdio:
			if m.StdioConfig == nil || m.StdioConfig.Command == "" {
				ve.Add("MCPServer/%s: stdio protocol requires spec.stdioConfig.command", name)
			}
		case v1.MCPProtocolSSE, v1.MCPProtocolStreamableHTTP:
			if m.ServerURL == "" {
				ve.Add("MCPServer/%s: %s protocol requires spec.serverUrl", name, m.Protocol)
			}
		default:
			ve.Add("MCPServer/%s: unknown spec.protocol %q", name, m.Protocol)
		}

	case v1.KindFolder:
		f := r.Folder
		if f == nil {
			ve.Add("Folder/%s: missing spec", name)
			return
		}
		if f.Layer == v1.LayerBase {
			ve.Add("Folder/%s: spec.layer must not be 'base'", name)
		}
		if f.EmbeddingConfig.Model == "" {
			ve.Add("Folder/%s: spec.embeddingConfig.model is required", name)
		}

	case v1.KindTemplate:
		tmpl := r.Template
		if tmpl == nil {
			ve.Add("Template/%s: missing spec", name)
			return
		}
		if tmpl.BaseTemplateID == "" {
			ve.Add("Template/%s: spec.baseTemplateId is required", name)
		}
		if tmpl.TemplateID == "" {
			ve.Add("Template/%s: spec.templateId is required", name)
		}
		if tmpl.Agent.Name == "" {
			ve.Add("Template/%s: spec.agent.name is required", name)
		}
		if tmpl.Agent.ModelConfig.Model == "" {
			ve.Add("Template/%s: spec.agent.modelConfig.model is required", name)
		}

	case v1.KindIdentity:
		id := r.Identity
		if id == nil {
			ve.Add("Identity/%s: missing spec", name)
			return
		}
		if id.Layer == v1.LayerBase {
			ve.Add("Identity/%s: spec.layer must not be 'base'", name)
		}

	case v1.KindAgentPolicy:
		if r.AgentPolicy == nil {
			ve.Add("AgentPolicy/%s: missing spec", name)
		}

	default:
		ve.Add("%s/%s: unknown kind", r.Kind, name)
	}
}
