package mcpreport

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// VerifyResult is the outcome of an actual MCP handshake attempt.
type VerifyResult struct {
	Reachable  bool
	ServerInfo string
	ToolNames  []string
	Err        error
}

// Verify performs a real MCP initialize handshake against spec over the SSE
// client transport, which it uses for both sse and streamable-http servers
// (stdio servers are process-local and verified by
// the operator's own environment, not by this reconciler). It is the
// concrete "real mark3labs/mcp-go handshake" the verify step in
// buildSteps otherwise leaves as a pending manual check.
func Verify(ctx context.Context, spec *v1.MCPServerSpec, timeout time.Duration) VerifyResult {
	if spec == nil || spec.Protocol == v1.MCPProtocolStdio {
		return VerifyResult{Err: fmt.Errorf("verify: stdio servers are not remotely verifiable")}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := client.NewSSEMCPClient(spec.ServerURL)
	if err != nil {
		return VerifyResult{Err: fmt.Errorf("create mcp client: %w", err)}
	}
	defer c.Close()

	if err := c.Start(runCtx); err != nil {
		return VerifyResult{Err: fmt.Errorf("start mcp transport: %w", err)}
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "letta-sync", Version: "dev"}

	initRes, err := c.Initialize(runCtx, initReq)
	if err != nil {
		return VerifyResult{Err: fmt.Errorf("initialize: %w", err)}
	}

	toolsRes, err := c.ListTools(runCtx, mcp.ListToolsRequest{})
	if err != nil {
		return VerifyResult{Reachable: true, ServerInfo: initRes.ServerInfo.Name, Err: fmt.Errorf("list tools: %w", err)}
	}

	names := make([]string, 0, len(toolsRes.Tools))
	for _, t := range toolsRes.Tools {
		names = append(names, t.Name)
	}

	return VerifyResult{Reachable: true, ServerInfo: initRes.ServerInfo.Name, ToolNames: names}
}
