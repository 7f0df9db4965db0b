package manifest

import (
	"encoding/json"
	"fmt"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"gopkg.in/yaml.v3"
)

// envelope is the common shape every manifest document must have before the
// engine looks at it further (spec.md §4.1: "A Resource is any object with
// string apiVersion, string kind, and object metadata").
type envelope struct {
	APIVersion string                       `yaml:"apiVersion" json:"apiVersion"`
	Kind       string                       `yaml:"kind" json:"kind"`
	Metadata   v1.Metadata                  `yaml:"metadata" json:"metadata"`
	Merge      map[string]v1.MergeStrategy  `yaml:"_merge" json:"_merge"`
	Delete     bool                         `yaml:"_delete" json:"_delete"`
}

// looksLikeEnvelope reports whether a decoded node has the minimum shape of
// a Resource document; documents missing it are silently skipped per
// spec.md §4.1.
func looksLikeEnvelope(e envelope) bool {
	return e.APIVersion != "" && e.Kind != "" && e.Metadata.Name != ""
}

// decodeYAMLNode converts one multi-document YAML node into a *v1.Resource,
// or returns (nil, nil) if the node doesn't look like a Resource.
func decodeYAMLNode(node *yaml.Node) (*v1.Resource, error) {
	var env envelope
	if err := node.Decode(&env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if !looksLikeEnvelope(env) {
		return nil, nil
	}

	var specNode yaml.Node
	if sn := findMapValue(node, "spec"); sn != nil {
		specNode = *sn
	}

	r := &v1.Resource{
		APIVersion:      env.APIVersion,
		Kind:            v1.Kind(env.Kind),
		Metadata:        env.Metadata,
		MergeDirectives: env.Merge,
		Delete:          env.Delete,
	}
	if err := decodeSpecInto(r, func(target any) error {
		if specNode.Kind == 0 {
			return nil
		}
		return specNode.Decode(target)
	}); err != nil {
		return nil, err
	}
	return r, nil
}

// decodeJSONDocument converts one decoded JSON document into a *v1.Resource,
// or returns (nil, nil) if it doesn't look like a Resource.
func decodeJSONDocument(raw map[string]json.RawMessage) (*v1.Resource, error) {
	var env envelope
	envBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-marshal json document: %w", err)
	}
	if err := json.Unmarshal(envBytes, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if !looksLikeEnvelope(env) {
		return nil, nil
	}

	specRaw, hasSpec := raw["spec"]

	r := &v1.Resource{
		APIVersion:      env.APIVersion,
		Kind:            v1.Kind(env.Kind),
		Metadata:        env.Metadata,
		MergeDirectives: env.Merge,
		Delete:          env.Delete,
	}
	if err := decodeSpecInto(r, func(target any) error {
		if !hasSpec {
			return nil
		}
		return json.Unmarshal(specRaw, target)
	}); err != nil {
		return nil, err
	}
	return r, nil
}

// decodeSpecInto allocates the kind-specific spec struct matching r.Kind and
// decodes into it using decode, which is backed by either a yaml.Node or a
// json.RawMessage depending on the caller.
func decodeSpecInto(r *v1.Resource, decode func(target any) error) error {
	switch r.Kind {
	case v1.KindBlock:
		r.Block = &v1.BlockSpec{}
		return decode(r.Block)
	case v1.KindTool:
		r.Tool = &v1.ToolSpec{}
		return decode(r.Tool)
	case v1.KindMCPServer:
		r.MCPServer = &v1.MCPServerSpec{}
		return decode(r.MCPServer)
	case v1.KindTemplate:
		r.Template = &v1.TemplateSpec{}
		return decode(r.Template)
	case v1.KindFolder:
		r.Folder = &v1.FolderSpec{}
		return decode(r.Folder)
	case v1.KindIdentity:
		r.Identity = &v1.IdentitySpec{}
		return decode(r.Identity)
	case v1.KindAgentPolicy:
		r.AgentPolicy = &v1.AgentPolicySpec{}
		return decode(r.AgentPolicy)
	default:
		return fmt.Errorf("unknown resource kind %q", r.Kind)
	}
}

// findMapValue returns the value node for a key in a YAML mapping node, or
// nil if the node isn't a mapping or the key is absent.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
