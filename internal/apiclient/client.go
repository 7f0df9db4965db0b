// Package apiclient defines the typed remote API surface (spec.md §6.3)
// that the reconciliation engine depends on. Core packages (diff, plan,
// apply, upgrade, batch) only ever see the interfaces in this file; tests
// supply in-memory fakes, production wiring supplies httpApiClient.
package apiclient

import "context"

// Order controls list-endpoint sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// OrderBy selects the field list endpoints are sorted by.
type OrderBy string

const (
	OrderByCreatedAt OrderBy = "created_at"
	OrderByName      OrderBy = "name"
)

// ListParams carries the pagination parameters shared by every list
// endpoint (spec.md §6.3).
type ListParams struct {
	Limit   int
	Before  string
	After   string
	Order   Order
	OrderBy OrderBy

	// Filters holds kind-specific filter parameters (e.g. label, project)
	// as opaque key/value pairs, matching the teacher's loosely-typed
	// query-param plumbing rather than one struct per kind.
	Filters map[string]string
}

// Entity is the wire shape returned by list/retrieve/create/update calls:
// a remote ID plus an opaque field bag, decoded further by the diff
// engines via api/v1.RemoteEntry.
type Entity struct {
	ID     string
	Name   string
	Fields map[string]any
	Tags   []string
}

// BlocksClient is the blocks sub-client (spec.md §6.3).
type BlocksClient interface {
	List(ctx context.Context, params ListParams) ([]Entity, error)
	Retrieve(ctx context.Context, id string) (Entity, error)
	Create(ctx context.Context, body map[string]any) (Entity, error)
	Update(ctx context.Context, id string, body map[string]any) (Entity, error)
	Delete(ctx context.Context, id string) error
}

// ToolsClient is the tools sub-client.
type ToolsClient interface {
	List(ctx context.Context, params ListParams) ([]Entity, error)
	Retrieve(ctx context.Context, id string) (Entity, error)
	Create(ctx context.Context, body map[string]any) (Entity, error)
	Update(ctx context.Context, id string, body map[string]any) (Entity, error)
	Delete(ctx context.Context, id string) error
}

// FoldersClient is the folders sub-client.
type FoldersClient interface {
	List(ctx context.Context, params ListParams) ([]Entity, error)
	Create(ctx context.Context, body map[string]any) (Entity, error)
	Update(ctx context.Context, id string, body map[string]any) (Entity, error)
	Delete(ctx context.Context, id string) error
	ListAgents(ctx context.Context, folderID string) ([]Entity, error)
}

// IdentitiesClient is the identities sub-client.
type IdentitiesClient interface {
	List(ctx context.Context, params ListParams) ([]Entity, error)
	Retrieve(ctx context.Context, id string) (Entity, error)
	Create(ctx context.Context, body map[string]any) (Entity, error)
	Upsert(ctx context.Context, body map[string]any) (Entity, error)
	Update(ctx context.Context, id string, body map[string]any) (Entity, error)
	Delete(ctx context.Context, id string) error
}

// McpServersClient is the MCP server sub-client. Observe-only per spec.md
// §9, so it only ever needs List/Retrieve.
type McpServersClient interface {
	List(ctx context.Context, params ListParams) ([]Entity, error)
	Retrieve(ctx context.Context, id string) (Entity, error)
}

// AgentsClient is the agents sub-client, including the block/tool/folder/
// identity attachment operations the upgrade planner drives (spec.md
// §6.3).
type AgentsClient interface {
	List(ctx context.Context, params ListParams) ([]Entity, error)
	Retrieve(ctx context.Context, id string) (Entity, error)
	Update(ctx context.Context, id string, body map[string]any) (Entity, error)

	ListBlocks(ctx context.Context, agentID string) ([]Entity, error)
	AttachBlock(ctx context.Context, agentID, blockID string) error
	DetachBlock(ctx context.Context, agentID, blockID string) error

	ListTools(ctx context.Context, agentID string) ([]Entity, error)
	AttachTool(ctx context.Context, agentID, toolID string) error
	DetachTool(ctx context.Context, agentID, toolID string) error

	ListFolders(ctx context.Context, agentID string) ([]Entity, error)
	AttachFolder(ctx context.Context, agentID, folderID string) error
	DetachFolder(ctx context.Context, agentID, folderID string) error

	AttachIdentity(ctx context.Context, agentID, identityID string) error
	DetachIdentity(ctx context.Context, agentID, identityID string) error
}

// ApiClient aggregates every typed sub-client (spec.md §6.3). A caller
// resolves exactly one of these (via internal/credentials +
// NewHTTPClient) and threads it through the applier/batch executor.
type ApiClient interface {
	Blocks() BlocksClient
	Tools() ToolsClient
	Folders() FoldersClient
	Identities() IdentitiesClient
	Agents() AgentsClient
	McpServers() McpServersClient
}
