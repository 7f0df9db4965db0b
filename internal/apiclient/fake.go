package apiclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FakeClient is an in-memory ApiClient for tests (spec.md §6.3: "core
// packages depend only on the interfaces, so tests supply in-memory
// fakes"). Every sub-client shares one mutex-guarded store keyed by
// resource collection name.
type FakeClient struct {
	mu    sync.Mutex
	store map[string]map[string]Entity
	// AgentAttachments maps agentID -> collection ("blocks", "tools",
	// "folders", "identities") -> set of attached child IDs.
	AgentAttachments map[string]map[string]map[string]bool
}

// NewFakeClient returns an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		store:            map[string]map[string]Entity{},
		AgentAttachments: map[string]map[string]map[string]bool{},
	}
}

// Seed pre-populates a collection, as tests do to represent existing
// remote state.
func (f *FakeClient) Seed(collection string, entities ...Entity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.store[collection] == nil {
		f.store[collection] = map[string]Entity{}
	}
	for _, e := range entities {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		f.store[collection][e.ID] = e
	}
}

func (f *FakeClient) Blocks() BlocksClient         { return &fakeCollection{f: f, name: "blocks"} }
func (f *FakeClient) Tools() ToolsClient           { return &fakeCollection{f: f, name: "tools"} }
func (f *FakeClient) Folders() FoldersClient       { return &fakeFolders{fakeCollection{f: f, name: "folders"}} }
func (f *FakeClient) Identities() IdentitiesClient { return &fakeCollection{f: f, name: "identities"} }
func (f *FakeClient) McpServers() McpServersClient { return &fakeCollection{f: f, name: "mcp-servers"} }
func (f *FakeClient) Agents() AgentsClient         { return &fakeAgents{fakeCollection{f: f, name: "agents"}} }

type fakeCollection struct {
	f    *FakeClient
	name string
}

func (c *fakeCollection) List(ctx context.Context, params ListParams) ([]Entity, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	var out []Entity
	for _, e := range c.f.store[c.name] {
		out = append(out, e)
	}
	return out, nil
}

func (c *fakeCollection) Retrieve(ctx context.Context, id string) (Entity, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	e, ok := c.f.store[c.name][id]
	if !ok {
		return Entity{}, fmt.Errorf("%s %q not found", c.name, id)
	}
	return e, nil
}

func (c *fakeCollection) Create(ctx context.Context, body map[string]any) (Entity, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	e := entityFromMap(body)
	e.ID = uuid.NewString()
	if c.f.store[c.name] == nil {
		c.f.store[c.name] = map[string]Entity{}
	}
	c.f.store[c.name][e.ID] = e
	return e, nil
}

func (c *fakeCollection) Upsert(ctx context.Context, body map[string]any) (Entity, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	e := entityFromMap(body)
	for _, existing := range c.f.store[c.name] {
		if existing.Name == e.Name {
			e.ID = existing.ID
			c.f.store[c.name][e.ID] = e
			return e, nil
		}
	}
	e.ID = uuid.NewString()
	if c.f.store[c.name] == nil {
		c.f.store[c.name] = map[string]Entity{}
	}
	c.f.store[c.name][e.ID] = e
	return e, nil
}

func (c *fakeCollection) Update(ctx context.Context, id string, body map[string]any) (Entity, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	e, ok := c.f.store[c.name][id]
	if !ok {
		return Entity{}, fmt.Errorf("%s %q not found", c.name, id)
	}
	merged := entityFromMap(body)
	merged.ID = e.ID
	if merged.Name == "" {
		merged.Name = e.Name
	}
	c.f.store[c.name][id] = merged
	return merged, nil
}

func (c *fakeCollection) Delete(ctx context.Context, id string) error {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	delete(c.f.store[c.name], id)
	return nil
}

type fakeFolders struct {
	fakeCollection
}

func (f *fakeFolders) ListAgents(ctx context.Context, folderID string) ([]Entity, error) {
	return nil, nil
}

type fakeAgents struct {
	fakeCollection
}

func (a *fakeAgents) attachments(agentID, collection string) map[string]bool {
	if a.f.AgentAttachments[agentID] == nil {
		a.f.AgentAttachments[agentID] = map[string]map[string]bool{}
	}
	if a.f.AgentAttachments[agentID][collection] == nil {
		a.f.AgentAttachments[agentID][collection] = map[string]bool{}
	}
	return a.f.AgentAttachments[agentID][collection]
}

func (a *fakeAgents) listAttached(ctx context.Context, agentID, collection string) ([]Entity, error) {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	var out []Entity
	for id := range a.attachments(agentID, collection) {
		out = append(out, Entity{ID: id})
	}
	return out, nil
}

func (a *fakeAgents) ListBlocks(ctx context.Context, agentID string) ([]Entity, error) {
	return a.listAttached(ctx, agentID, "blocks")
}
func (a *fakeAgents) AttachBlock(ctx context.Context, agentID, blockID string) error {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	a.attachments(agentID, "blocks")[blockID] = true
	return nil
}
func (a *fakeAgents) DetachBlock(ctx context.Context, agentID, blockID string) error {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	delete(a.attachments(agentID, "blocks"), blockID)
	return nil
}

func (a *fakeAgents) ListTools(ctx context.Context, agentID string) ([]Entity, error) {
	return a.listAttached(ctx, agentID, "tools")
}
func (a *fakeAgents) AttachTool(ctx context.Context, agentID, toolID string) error {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	a.attachments(agentID, "tools")[toolID] = true
	return nil
}
func (a *fakeAgents) DetachTool(ctx context.Context, agentID, toolID string) error {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	delete(a.attachments(agentID, "tools"), toolID)
	return nil
}

func (a *fakeAgents) ListFolders(ctx context.Context, agentID string) ([]Entity, error) {
	return a.listAttached(ctx, agentID, "folders")
}
func (a *fakeAgents) AttachFolder(ctx context.Context, agentID, folderID string) error {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	a.attachments(agentID, "folders")[folderID] = true
	return nil
}
func (a *fakeAgents) DetachFolder(ctx context.Context, agentID, folderID string) error {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	delete(a.attachments(agentID, "folders"), folderID)
	return nil
}

func (a *fakeAgents) AttachIdentity(ctx context.Context, agentID, identityID string) error {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	a.attachments(agentID, "identities")[identityID] = true
	return nil
}
func (a *fakeAgents) DetachIdentity(ctx context.Context, agentID, identityID string) error {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	delete(a.attachments(agentID, "identities"), identityID)
	return nil
}
