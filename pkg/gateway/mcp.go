package gateway

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/XiaoConstantine/mcp-go/pkg/client"
	mcplogging "github.com/XiaoConstantine/mcp-go/pkg/logging"
	models "github.com/XiaoConstantine/mcp-go/pkg/model"
	"github.com/XiaoConstantine/mcp-go/pkg/transport"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
)

// defaultArgKey is the tool argument the prompt is sent under when the
// caller does not name one.
const defaultArgKey = "prompt"

// ToolCaller is the slice of the MCP client the gateway needs. It is
// satisfied by *client.Client from XiaoConstantine/mcp-go.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*models.CallToolResult, error)
}

// MCPToolGateway forwards each prompt to a single tool on an MCP server and
// returns the text content of the tool result.
type MCPToolGateway struct {
	caller   ToolCaller
	toolName string
	argKey   string
}

// NewMCPTool creates a gateway that sends prompts to the named MCP tool.
// An empty argKey defaults to "prompt".
func NewMCPTool(caller ToolCaller, toolName string, argKey string) *MCPToolGateway {
	if argKey == "" {
		argKey = defaultArgKey
	}
	return &MCPToolGateway{
		caller:   caller,
		toolName: toolName,
		argKey:   argKey,
	}
}

// Invoke implements core.Gateway.
func (g *MCPToolGateway) Invoke(ctx context.Context, prompt string, description string) (*core.AgentResponse, error) {
	args := map[string]interface{}{g.argKey: prompt}

	result, err := g.caller.CallTool(ctx, g.toolName, args)
	if err != nil {
		if ctxErr := errs.CheckContext(ctx, "MCP tool call"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errs.WithFields(
			errs.Wrap(err, errs.GatewayInvocationFailed, "MCP tool call failed"),
			errs.Fields{"tool": g.toolName})
	}
	if result == nil {
		return nil, errs.WithFields(
			errs.New(errs.GatewayInvocationFailed, "received nil result from MCP server"),
			errs.Fields{"tool": g.toolName})
	}

	text := extractContentText(result.Content)
	if result.IsError {
		return nil, errs.WithFields(
			errs.New(errs.GatewayInvocationFailed, "MCP tool reported an error"),
			errs.Fields{"tool": g.toolName, "output": text})
	}

	return &core.AgentResponse{OutputText: text}, nil
}

// MCPClientOptions contains configuration options for creating an MCP client.
type MCPClientOptions struct {
	ClientName    string
	ClientVersion string
	Logger        mcplogging.Logger
}

// NewMCPClientFromStdio creates a new MCP client using standard I/O for
// communication. This is useful for connecting to an MCP server launched as
// a subprocess.
func NewMCPClientFromStdio(reader io.Reader, writer io.Writer, options MCPClientOptions) (*client.Client, error) {
	logger := options.Logger
	if logger == nil {
		logger = mcplogging.NewStdLogger(mcplogging.InfoLevel)
	}

	t := transport.NewStdioTransport(reader, writer, logger)

	clientOptions := []client.Option{
		client.WithLogger(logger),
	}

	if options.ClientName != "" && options.ClientVersion != "" {
		clientOptions = append(clientOptions, client.WithClientInfo(options.ClientName, options.ClientVersion))
	}

	mcpClient := client.NewClient(t, clientOptions...)

	// Initialize the client with a reasonable timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := mcpClient.Initialize(ctx)
	if err != nil {
		return nil, err
	}

	return mcpClient, nil
}

// DialStdioServer launches an MCP server subprocess and initializes a client
// session over its standard streams. The returned shutdown function closes
// the server's stdin and waits for the process to exit.
func DialStdioServer(ctx context.Context, command string, args ...string) (*client.Client, func() error, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, errs.Wrap(err, errs.GatewayInvocationFailed, "failed to open MCP server stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, errs.Wrap(err, errs.GatewayInvocationFailed, "failed to open MCP server stdout")
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, errs.WithFields(
			errs.Wrap(err, errs.GatewayInvocationFailed, "failed to start MCP server"),
			errs.Fields{"command": command})
	}

	mcpClient, err := NewMCPClientFromStdio(stdout, stdin, MCPClientOptions{
		ClientName:    "promptopt",
		ClientVersion: "0.1.0",
	})
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, nil, errs.WithFields(
			errs.Wrap(err, errs.GatewayInvocationFailed, "failed to initialize MCP session"),
			errs.Fields{"command": command})
	}

	shutdown := func() error {
		_ = stdin.Close()
		return cmd.Wait()
	}

	return mcpClient, shutdown, nil
}

// Helper function to extract text content from MCP Content array.
func extractContentText(content []models.Content) string {
	var result strings.Builder

	for _, item := range content {
		if textContent, ok := item.(models.TextContent); ok {
			if result.Len() > 0 {
				result.WriteString("\n")
			}
			result.WriteString(textContent.Text)
		}
	}

	return result.String()
}
