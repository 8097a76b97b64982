// Package config loads and validates promptopt configuration from a YAML
// file and PROMPTOPT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
)

// envPrefix marks the environment variables that override file values.
const envPrefix = "PROMPTOPT_"

// Config represents the complete configuration for a promptopt run.
type Config struct {
	// Number of optimization rounds to run
	Iterations int `yaml:"iterations" validate:"min=1,max=20"`

	// Gateway backend to run prompts through
	Provider string `yaml:"provider" validate:"required,oneof=anthropic mcp cli"`

	// Model ID for the anthropic provider
	Model string `yaml:"model,omitempty"`

	// Environment variable holding the Anthropic API key
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// Agent CLI command for the cli provider, binary first
	GatewayCommand []string `yaml:"gateway_command,omitempty"`

	// MCP server command for the mcp provider, binary first
	MCPServerCommand []string `yaml:"mcp_server_command,omitempty"`

	// Tool to invoke on the MCP server
	MCPToolName string `yaml:"mcp_tool_name,omitempty"`

	// SQLite file runs are archived to; empty disables archiving
	ArchivePath string `yaml:"archive_path,omitempty"`

	// Minimum log severity
	LogLevel string `yaml:"log_level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// Emit log lines as JSON
	LogJSON bool `yaml:"log_json,omitempty"`
}

var validate = validator.New()

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Iterations: 3,
		Provider:   "anthropic",
		APIKeyEnv:  "ANTHROPIC_API_KEY",
		LogLevel:   "INFO",
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then PROMPTOPT_* environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.WithFields(
				errs.Wrap(err, errs.InvalidInput, "failed to read config file"),
				errs.Fields{"path": path})
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errs.WithFields(
				errs.Wrap(err, errs.InvalidInput, "failed to parse config file"),
				errs.Fields{"path": path})
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints plus the per-provider requirements that
// tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			messages := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				messages = append(messages, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return errs.New(errs.ValidationFailed, "invalid configuration: "+strings.Join(messages, "; "))
		}
		return errs.Wrap(err, errs.ValidationFailed, "invalid configuration")
	}

	switch c.Provider {
	case "mcp":
		if len(c.MCPServerCommand) == 0 {
			return errs.New(errs.ValidationFailed, "mcp provider requires mcp_server_command")
		}
		if c.MCPToolName == "" {
			return errs.New(errs.ValidationFailed, "mcp provider requires mcp_tool_name")
		}
	case "cli":
		if len(c.GatewayCommand) == 0 {
			return errs.New(errs.ValidationFailed, "cli provider requires gateway_command")
		}
	}

	return nil
}

// applyEnvOverrides applies PROMPTOPT_* variables on top of cfg. Unknown
// keys under the prefix are ignored.
func applyEnvOverrides(cfg *Config) error {
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], envPrefix) {
			continue
		}
		key := strings.TrimPrefix(parts[0], envPrefix)
		if err := setConfigValue(cfg, key, parts[1]); err != nil {
			return err
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "ITERATIONS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errs.WithFields(
				errs.Wrap(err, errs.InvalidInput, "invalid PROMPTOPT_ITERATIONS"),
				errs.Fields{"value": value})
		}
		cfg.Iterations = n
	case "PROVIDER":
		cfg.Provider = value
	case "MODEL":
		cfg.Model = value
	case "API_KEY_ENV":
		cfg.APIKeyEnv = value
	case "GATEWAY_COMMAND":
		cfg.GatewayCommand = strings.Fields(value)
	case "MCP_SERVER_COMMAND":
		cfg.MCPServerCommand = strings.Fields(value)
	case "MCP_TOOL_NAME":
		cfg.MCPToolName = value
	case "ARCHIVE_PATH":
		cfg.ArchivePath = value
	case "LOG_LEVEL":
		cfg.LogLevel = value
	case "LOG_JSON":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errs.WithFields(
				errs.Wrap(err, errs.InvalidInput, "invalid PROMPTOPT_LOG_JSON"),
				errs.Fields{"value": value})
		}
		cfg.LogJSON = b
	}
	return nil
}
