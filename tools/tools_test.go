package tools_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/deskdriver/tools"
)

func TestGenerateSchema_ReflectsStructTags(t *testing.T) {
	schema := tools.GenerateSchema[tools.RunCommandInput]()
	require.NotNil(t, schema)

	b, err := json.Marshal(schema)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	require.Equal(t, "object", m["type"])

	props, ok := m["properties"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, props, "command")
	require.Equal(t, false, m["additionalProperties"])
}

func TestLookup(t *testing.T) {
	defs := []tools.ToolDefinition{
		{Name: "alpha"},
		{Name: "beta"},
	}
	require.NotNil(t, tools.Lookup(defs, "beta"))
	require.Equal(t, "beta", tools.Lookup(defs, "beta").Name)
	require.Nil(t, tools.Lookup(defs, "gamma"))
	require.Nil(t, tools.Lookup(nil, "alpha"))
}

func TestToolError_CompactJSON(t *testing.T) {
	err := tools.ToolError{Code: "ERR_EXEC", Message: "boom"}
	require.Equal(t, `{"code":"ERR_EXEC","message":"boom"}`, err.Error())
}

type fakeExecer struct {
	lastCommand string
	output      string
	code        int
	err         error
}

func (e *fakeExecer) Exec(_ context.Context, command string) (string, int, error) {
	e.lastCommand = command
	return e.output, e.code, e.err
}

func TestRunCommandTool_ReportsOutputAndExitCode(t *testing.T) {
	env := &fakeExecer{output: "hello\n", code: 0}
	def := tools.NewRunCommandTool(env)
	require.Equal(t, "run_command", def.Name)
	require.NotNil(t, def.InputSchema)

	out, err := def.Function(context.Background(), json.RawMessage(`{"command":"echo hello"}`))
	require.NoError(t, err)
	require.Equal(t, "echo hello", env.lastCommand)
	require.Equal(t, "exit code 0\nhello\n", out)
}

func TestRunCommandTool_EmptyCommandRejected(t *testing.T) {
	def := tools.NewRunCommandTool(&fakeExecer{})

	_, err := def.Function(context.Background(), json.RawMessage(`{"command":""}`))
	var te tools.ToolError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "ERR_EMPTY_COMMAND", te.Code)
}

func TestRunCommandTool_ExecFailureWrapped(t *testing.T) {
	def := tools.NewRunCommandTool(&fakeExecer{err: context.DeadlineExceeded})

	_, err := def.Function(context.Background(), json.RawMessage(`{"command":"sleep 99"}`))
	var te tools.ToolError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "ERR_EXEC", te.Code)
}

func TestRunCommandTool_BadInputJSON(t *testing.T) {
	def := tools.NewRunCommandTool(&fakeExecer{})

	_, err := def.Function(context.Background(), json.RawMessage(`{not json`))
	require.Error(t, err)
}

func TestRegistry_ContainsRunCommand(t *testing.T) {
	defs := tools.Registry(&fakeExecer{})
	require.NotNil(t, tools.Lookup(defs, "run_command"))
}
