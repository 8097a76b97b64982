// Package gateway provides the concrete core.Gateway implementations: the
// Anthropic Messages API, a tool call against an MCP server, and an agent
// CLI subprocess.
package gateway

import (
	"github.com/XiaoConstantine/promptopt-go/pkg/core"
)

var (
	_ core.Gateway = (*AnthropicGateway)(nil)
	_ core.Gateway = (*MCPToolGateway)(nil)
	_ core.Gateway = (*CLIGateway)(nil)
)
