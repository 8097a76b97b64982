package gateway

import (
	"context"
	"os"

	"github.com/XiaoConstantine/promptopt-go/pkg/config"
	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
)

func noopShutdown() error { return nil }

// FromConfig builds the gateway named by the configuration. The returned
// shutdown function releases backend resources and is never nil.
func FromConfig(ctx context.Context, cfg *config.Config) (core.Gateway, func() error, error) {
	switch cfg.Provider {
	case "anthropic":
		var apiKey string
		if cfg.APIKeyEnv != "" {
			apiKey = os.Getenv(cfg.APIKeyEnv)
		}
		g, err := NewAnthropic(apiKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return g, noopShutdown, nil

	case "mcp":
		if len(cfg.MCPServerCommand) == 0 {
			return nil, nil, errs.New(errs.InvalidInput, "mcp provider requires mcp_server_command")
		}
		mcpClient, shutdown, err := DialStdioServer(ctx, cfg.MCPServerCommand[0], cfg.MCPServerCommand[1:]...)
		if err != nil {
			return nil, nil, err
		}
		return NewMCPTool(mcpClient, cfg.MCPToolName, ""), shutdown, nil

	case "cli":
		if len(cfg.GatewayCommand) == 0 {
			return nil, nil, errs.New(errs.InvalidInput, "cli provider requires gateway_command")
		}
		return NewCLI(cfg.GatewayCommand[0], cfg.GatewayCommand[1:]...), noopShutdown, nil

	default:
		return nil, nil, errs.WithFields(
			errs.New(errs.InvalidInput, "unknown gateway provider"),
			errs.Fields{"provider": cfg.Provider})
	}
}
