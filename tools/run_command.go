package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Execer runs a shell command inside the controlled environment.
type Execer interface {
	Exec(ctx context.Context, command string) (output string, exitCode int, err error)
}

type RunCommandInput struct {
	Command string `json:"command" jsonschema_description:"Shell command to run inside the desktop environment."`
}

var RunCommandInputSchema = GenerateSchema[RunCommandInput]()

// NewRunCommandTool returns a tool that runs a shell command in the desktop
// container and reports its output and exit code.
func NewRunCommandTool(env Execer) ToolDefinition {
	return ToolDefinition{
		Name:        "run_command",
		Description: "Run a shell command inside the desktop environment and return its output and exit code.",
		InputSchema: RunCommandInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in RunCommandInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			if in.Command == "" {
				return "", ToolError{Code: "ERR_EMPTY_COMMAND", Message: "command must not be empty"}
			}
			out, code, err := env.Exec(ctx, in.Command)
			if err != nil {
				return "", ToolError{Code: "ERR_EXEC", Message: err.Error()}
			}
			return fmt.Sprintf("exit code %d\n%s", code, out), nil
		},
	}
}

// Registry returns the tool definitions wired for the given environment.
func Registry(env Execer) []ToolDefinition {
	return []ToolDefinition{NewRunCommandTool(env)}
}
