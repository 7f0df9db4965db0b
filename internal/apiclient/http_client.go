package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Smarty-Pants-Inc/letta-sync/internal/errorsx"
)

// HTTPOptions configures NewHTTPClient.
type HTTPOptions struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Retry      RetryOptions
	HTTPClient *http.Client
}

// DefaultHTTPOptions returns the spec.md §5 defaults (30s per-request
// timeout, standard retry policy).
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout: 30 * time.Second,
		Retry:   DefaultRetryOptions(),
	}
}

// httpApiClient is the production ApiClient implementation (spec.md §6.3):
// JSON over HTTP, one http.Client shared by every sub-client, retry
// behavior installed once as a RoundTripper rather than per call site.
type httpApiClient struct {
	base    *url.URL
	apiKey  string
	httpc   *http.Client
	blocks  BlocksClient
	tools   ToolsClient
	folders FoldersClient
	idents  IdentitiesClient
	agents  AgentsClient
	mcp     McpServersClient
}

// NewHTTPClient builds the production ApiClient, installing the retry
// transport and shared timeout (spec.md §5, §6.3).
func NewHTTPClient(opts HTTPOptions) (ApiClient, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", opts.BaseURL, err)
	}

	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	httpc.Transport = NewRetryingTransport(httpc.Transport, opts.Retry)
	if opts.Timeout > 0 {
		httpc.Timeout = opts.Timeout
	}

	c := &httpApiClient{base: base, apiKey: opts.APIKey, httpc: httpc}
	c.blocks = &restSubClient{c: c, resource: "blocks"}
	c.tools = &restSubClient{c: c, resource: "tools"}
	c.folders = &restSubClient{c: c, resource: "folders"}
	c.idents = &restSubClient{c: c, resource: "identities"}
	c.agents = &agentsSubClient{restSubClient{c: c, resource: "agents"}}
	c.mcp = &restSubClient{c: c, resource: "mcp-servers"}
	return c, nil
}

func (c *httpApiClient) Blocks() BlocksClient         { return c.blocks }
func (c *httpApiClient) Tools() ToolsClient           { return c.tools }
func (c *httpApiClient) Folders() FoldersClient       { return c.folders }
func (c *httpApiClient) Identities() IdentitiesClient { return c.idents }
func (c *httpApiClient) Agents() AgentsClient         { return c.agents }
func (c *httpApiClient) McpServers() McpServersClient { return c.mcp }

func (c *httpApiClient) do(ctx context.Context, method, path string, query url.Values, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		var statusErr *retryableStatusError
		if asRetryableStatus(err, &statusErr) {
			return nil, &errorsx.ApiRequestError{Method: method, URL: u.String(), StatusCode: statusErr.status}
		}
		return nil, &errorsx.ApiRequestError{Method: method, URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errorsx.ApiRequestError{Method: method, URL: u.String(), Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &errorsx.ApiRequestError{
			Method: method, URL: u.String(), StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"), Body: string(raw),
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		var list []map[string]any
		if err2 := json.Unmarshal(raw, &list); err2 == nil {
			return map[string]any{"items": list}, nil
		}
		return nil, &errorsx.ApiRequestError{Method: method, URL: u.String(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return decoded, nil
}

func asRetryableStatus(err error, target **retryableStatusError) bool {
	return errors.As(err, target)
}

func listParamsToQuery(p ListParams) url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Before != "" {
		q.Set("before", p.Before)
	}
	if p.After != "" {
		q.Set("after", p.After)
	}
	if p.Order != "" {
		q.Set("order", string(p.Order))
	}
	if p.OrderBy != "" {
		q.Set("order_by", string(p.OrderBy))
	}
	for k, v := range p.Filters {
		q.Set(k, v)
	}
	return q
}

func entityFromMap(m map[string]any) Entity {
	e := Entity{Fields: m}
	if id, ok := m["id"].(string); ok {
		e.ID = id
	}
	if name, ok := m["name"].(string); ok {
		e.Name = name
	} else if label, ok := m["label"].(string); ok {
		e.Name = label
	}
	switch tags := m["tags"].(type) {
	case []any:
		for _, t := range tags {
			if s, ok := t.(string); ok {
				e.Tags = append(e.Tags, s)
			}
		}
	case []string:
		// A []any is what a JSON-decoded response produces; a []string is
		// what in-process callers (the apply executor, FakeClient tests)
		// construct directly when building a request body.
		e.Tags = append(e.Tags, tags...)
	}
	return e
}

func entitiesFromResponse(m map[string]any) []Entity {
	raw, ok := m["items"].([]map[string]any)
	if !ok {
		return nil
	}
	entities := make([]Entity, 0, len(raw))
	for _, item := range raw {
		entities = append(entities, entityFromMap(item))
	}
	return entities
}

// restSubClient implements every sub-client interface generically: each
// kind differs only in its URL path segment, matching spec.md §6.3's
// description of blocks/tools/folders/identities/mcp-servers as uniform
// REST collections.
type restSubClient struct {
	c        *httpApiClient
	resource string
}

func (s *restSubClient) List(ctx context.Context, params ListParams) ([]Entity, error) {
	resp, err := s.c.do(ctx, http.MethodGet, "/"+s.resource, listParamsToQuery(params), nil)
	if err != nil {
		return nil, err
	}
	return entitiesFromResponse(resp), nil
}

func (s *restSubClient) Retrieve(ctx context.Context, id string) (Entity, error) {
	resp, err := s.c.do(ctx, http.MethodGet, "/"+s.resource+"/"+id, nil, nil)
	if err != nil {
		return Entity{}, err
	}
	return entityFromMap(resp), nil
}

func (s *restSubClient) Create(ctx context.Context, body map[string]any) (Entity, error) {
	resp, err := s.c.do(ctx, http.MethodPost, "/"+s.resource, nil, body)
	if err != nil {
		return Entity{}, err
	}
	return entityFromMap(resp), nil
}

func (s *restSubClient) Upsert(ctx context.Context, body map[string]any) (Entity, error) {
	resp, err := s.c.do(ctx, http.MethodPut, "/"+s.resource, nil, body)
	if err != nil {
		return Entity{}, err
	}
	return entityFromMap(resp), nil
}

func (s *restSubClient) Update(ctx context.Context, id string, body map[string]any) (Entity, error) {
	resp, err := s.c.do(ctx, http.MethodPatch, "/"+s.resource+"/"+id, nil, body)
	if err != nil {
		return Entity{}, err
	}
	return entityFromMap(resp), nil
}

func (s *restSubClient) Delete(ctx context.Context, id string) error {
	_, err := s.c.do(ctx, http.MethodDelete, "/"+s.resource+"/"+id, nil, nil)
	return err
}

func (s *restSubClient) ListAgents(ctx context.Context, folderID string) ([]Entity, error) {
	resp, err := s.c.do(ctx, http.MethodGet, "/"+s.resource+"/"+folderID+"/agents", nil, nil)
	if err != nil {
		return nil, err
	}
	return entitiesFromResponse(resp), nil
}

// agentsSubClient adds the attach/detach operations on top of the generic
// restSubClient (spec.md §6.3).
type agentsSubClient struct {
	restSubClient
}

func (a *agentsSubClient) attach(ctx context.Context, agentID, sub, childID string) error {
	_, err := a.c.do(ctx, http.MethodPost, "/agents/"+agentID+"/"+sub+"/"+childID, nil, nil)
	return err
}

func (a *agentsSubClient) detach(ctx context.Context, agentID, sub, childID string) error {
	_, err := a.c.do(ctx, http.MethodDelete, "/agents/"+agentID+"/"+sub+"/"+childID, nil, nil)
	return err
}

func (a *agentsSubClient) list(ctx context.Context, agentID, sub string) ([]Entity, error) {
	resp, err := a.c.do(ctx, http.MethodGet, "/agents/"+agentID+"/"+sub, nil, nil)
	if err != nil {
		return nil, err
	}
	return entitiesFromResponse(resp), nil
}

func (a *agentsSubClient) ListBlocks(ctx context.Context, agentID string) ([]Entity, error) {
	return a.list(ctx, agentID, "blocks")
}
func (a *agentsSubClient) AttachBlock(ctx context.Context, agentID, blockID string) error {
	return a.attach(ctx, agentID, "blocks", blockID)
}
func (a *agentsSubClient) DetachBlock(ctx context.Context, agentID, blockID string) error {
	return a.detach(ctx, agentID, "blocks", blockID)
}

func (a *agentsSubClient) ListTools(ctx context.Context, agentID string) ([]Entity, error) {
	return a.list(ctx, agentID, "tools")
}
func (a *agentsSubClient) AttachTool(ctx context.Context, agentID, toolID string) error {
	return a.attach(ctx, agentID, "tools", toolID)
}
func (a *agentsSubClient) DetachTool(ctx context.Context, agentID, toolID string) error {
	return a.detach(ctx, agentID, "tools", toolID)
}

func (a *agentsSubClient) ListFolders(ctx context.Context, agentID string) ([]Entity, error) {
	return a.list(ctx, agentID, "folders")
}
func (a *agentsSubClient) AttachFolder(ctx context.Context, agentID, folderID string) error {
	return a.attach(ctx, agentID, "folders", folderID)
}
func (a *agentsSubClient) DetachFolder(ctx context.Context, agentID, folderID string) error {
	return a.detach(ctx, agentID, "folders", folderID)
}

func (a *agentsSubClient) AttachIdentity(ctx context.Context, agentID, identityID string) error {
	return a.attach(ctx, agentID, "identities", identityID)
}
func (a *agentsSubClient) DetachIdentity(ctx context.Context, agentID, identityID string) error {
	return a.detach(ctx, agentID, "identities", identityID)
}
