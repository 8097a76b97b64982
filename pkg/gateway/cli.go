package gateway

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
	"github.com/XiaoConstantine/promptopt-go/pkg/logging"
)

// CLIGateway runs an agent CLI once per invocation. The prompt is written to
// the process's stdin and stdout becomes the reply, so any binary that reads
// a prompt from stdin and prints a response works, for example
// `claude --print`.
type CLIGateway struct {
	binary string
	args   []string
}

// NewCLI creates a gateway that shells out to an agent binary for each
// invocation.
func NewCLI(binary string, args ...string) *CLIGateway {
	return &CLIGateway{binary: binary, args: args}
}

// Invoke implements core.Gateway.
func (g *CLIGateway) Invoke(ctx context.Context, prompt string, description string) (*core.AgentResponse, error) {
	logger := logging.GetLogger()
	logger.Debug(ctx, "running %s (%s)", g.binary, description)

	cmd := exec.CommandContext(ctx, g.binary, g.args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := errs.CheckContext(ctx, "agent invocation"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errs.WithFields(
			errs.Wrap(err, errs.GatewayInvocationFailed, "agent process failed"),
			errs.Fields{
				"binary": g.binary,
				"stderr": strings.TrimSpace(stderr.String()),
			})
	}

	// Agent CLIs end their reply with a newline that is not part of the
	// response text.
	return &core.AgentResponse{OutputText: strings.TrimRight(stdout.String(), "\n")}, nil
}
