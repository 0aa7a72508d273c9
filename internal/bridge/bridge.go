package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/apibridge/internal/catalog"
	"github.com/bobmcallan/apibridge/internal/common"
)

// maxResponseSize caps the upstream response body to prevent OOM from
// unexpectedly large responses.
const maxResponseSize = 50 << 20 // 50MB

// Bridge dispatches MCP tool calls to the configured upstream REST API.
// It owns the single shared HTTP client for the process: the catalog is
// read-only after load and every resolved request is built fresh per call,
// so concurrent invocations need no locking.
type Bridge struct {
	cat        *catalog.Catalog
	httpClient *http.Client
	logger     *common.Logger
	tools      []mcp.Tool
}

// New creates a Bridge for the given catalog. The tool list is derived
// once here; the catalog never changes afterwards.
func New(cat *catalog.Catalog, logger *common.Logger) *Bridge {
	return &Bridge{
		cat: cat,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
		logger: logger,
		tools:  cat.Tools(),
	}
}

// Tools returns a copy of the cached tool definitions, in catalog order.
func (b *Bridge) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, len(b.tools))
	copy(tools, b.tools)
	return tools
}

// Register adds every catalog tool to the MCP server, each wired to a
// generic handler that resolves and executes the endpoint's HTTP request.
func (b *Bridge) Register(s *server.MCPServer) {
	for _, tool := range b.tools {
		s.AddTool(tool, b.handler(tool.Name))
	}
}

// Close releases the shared HTTP client's idle connections. Safe to call
// on every shutdown path, including after partial startup.
func (b *Bridge) Close() {
	b.httpClient.CloseIdleConnections()
}

// handler returns a ToolHandlerFunc for the named endpoint. The returned
// error is always nil: every per-call failure is absorbed into the result
// payload so the serving loop never sees a fault from a tool invocation.
func (b *Bridge) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return b.Invoke(ctx, name, request.GetArguments()), nil
	}
}

// Invoke resolves and executes one tool call. Exactly one HTTP request is
// issued per invocation; there are no retries and no adapter-level timeout
// beyond the shared client's default.
func (b *Bridge) Invoke(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	logger := b.logger.WithCorrelationId(uuid.NewString())

	ep := b.cat.Endpoint(name)
	if ep == nil {
		logger.Warn().Str("tool", name).Msg("tool not found")
		return errorResult(fmt.Sprintf("Tool '%s' not found", name))
	}

	req := BuildRequest(b.cat, ep, args)

	logger.Debug().
		Str("tool", name).
		Str("method", req.Method).
		Str("url", req.URL).
		Msg("bridge request")

	status, body, err := b.execute(ctx, req)
	if err != nil {
		logger.Error().Str("tool", name).Str("error", err.Error()).Msg("bridge request failed")
		return errorResult(fmt.Sprintf("Error: failed to call tool '%s': %v", name, err))
	}

	formatted := prettyJSON(body)

	if status >= 400 {
		logger.Warn().Str("tool", name).Int("status", status).Msg("upstream returned error status")
		return errorResult(fmt.Sprintf("Error: HTTP %d: %s", status, formatted))
	}

	logger.Info().Str("tool", name).Int("status", status).Msg("bridge call succeeded")
	return textResult(fmt.Sprintf("API Response (Status: %d):\n\n%s", status, formatted))
}

// execute performs the single HTTP round trip for a resolved request and
// returns the status code and full response body.
func (b *Bridge) execute(ctx context.Context, req ResolvedRequest) (int, []byte, error) {
	fullURL := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != "" {
		bodyReader = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}

	for key, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Set(key, v)
		}
	}
	if req.Body != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := b.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		return 0, nil, fmt.Errorf("server request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	b.logger.Debug().
		Int("status", resp.StatusCode).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("bridge response")

	return resp.StatusCode, body, nil
}

// prettyJSON indents a JSON body for readability; anything that is not
// JSON comes back unmodified.
func prettyJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
