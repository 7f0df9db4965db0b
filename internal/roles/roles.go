// Package roles resolves an agent's role into the bundle of blocks,
// tools, and folders it should have attached (spec.md §4.8). Resolution
// is a pure function of role + context, mirroring spec.md §9's note that
// role selection should be pure rather than carry hidden state.
package roles

import v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"

// Built-in tool sets referenced by role bundles (spec.md §4.8: "bundles
// may reference built-in tool sets").
var (
	MemoryTools = []string{
		"core_memory_append",
		"core_memory_replace",
		"archival_memory_insert",
		"archival_memory_search",
	}
	CommunicationTools = []string{
		"send_message",
		"conversation_search",
	}
)

// Context is the selection context a role bundle is resolved against.
type Context struct {
	Org     string
	Project string
	// AvailableMCPServerTools maps an MCP server name to the tool names
	// it exposes, so a bundle can pull in "every tool this server
	// discovered" without the role definitions hard-coding server
	// names.
	AvailableMCPServerTools map[string][]string
}

// Bundle is the resolved set of resources a role should have attached.
// Names, not ids: the upgrade planner resolves names against desired
// state / remote listings.
type Bundle struct {
	BlockNames  []string
	ToolNames   []string
	FolderNames []string
}

// Resolve returns the desired resource bundle for role in ctx. Unknown
// roles resolve to the empty bundle rather than erroring: a generic
// "agent" role with no special bundle is a legitimate, common case.
func Resolve(role v1.AgentRole, ctx Context) Bundle {
	switch role {
	case v1.RoleLaneDev:
		return laneDevBundle(ctx)
	case v1.RoleRepoCurator:
		return repoCuratorBundle(ctx)
	case v1.RoleOrgCurator:
		return orgCuratorBundle(ctx)
	case v1.RoleSupervisor:
		return supervisorBundle(ctx)
	case v1.RoleAgent:
		return genericAgentBundle(ctx)
	default:
		return Bundle{}
	}
}

func laneDevBundle(ctx Context) Bundle {
	b := Bundle{
		BlockNames:  []string{"persona", "human", "project", "conventions"},
		ToolNames:   append(append([]string{}, MemoryTools...), CommunicationTools...),
		FolderNames: []string{"project-docs"},
	}
	appendAllMCPTools(&b, ctx)
	return b
}

func repoCuratorBundle(ctx Context) Bundle {
	b := Bundle{
		BlockNames: []string{"persona", "conventions", "glossary"},
		ToolNames:  append(append([]string{}, MemoryTools...), CommunicationTools...),
	}
	appendAllMCPTools(&b, ctx)
	return b
}

func orgCuratorBundle(ctx Context) Bundle {
	b := Bundle{
		BlockNames:  []string{"persona", "org-policy", "glossary"},
		ToolNames:   append(append([]string{}, MemoryTools...), CommunicationTools...),
		FolderNames: []string{"org-docs"},
	}
	appendAllMCPTools(&b, ctx)
	return b
}

func supervisorBundle(ctx Context) Bundle {
	b := Bundle{
		BlockNames: []string{"persona", "managed_state", "decisions"},
		ToolNames:  append(append([]string{}, MemoryTools...), CommunicationTools...),
	}
	return b
}

func genericAgentBundle(ctx Context) Bundle {
	return Bundle{
		BlockNames: []string{"persona", "human"},
		ToolNames:  append([]string{}, MemoryTools...),
	}
}

func appendAllMCPTools(b *Bundle, ctx Context) {
	for _, tools := range ctx.AvailableMCPServerTools {
		b.ToolNames = append(b.ToolNames, tools...)
	}
}
