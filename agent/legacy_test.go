package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/deskdriver/responses"
)

func TestActionLegacy_Complete(t *testing.T) {
	svc := &fakeService{script: []*responses.Response{terminalResponse("resp-1")}}
	a := newTestAgent(t, svc, &fakeEnv{}, Config{})

	res := a.ActionLegacy(context.Background(), LegacyRequest{Input: "open the editor"})
	require.NotNil(t, res.Result)
	require.Equal(t, "resp-1", res.Result.ID)
	require.Empty(t, res.NeedsInput)
	require.Empty(t, res.SafetyChecks)
	require.Nil(t, res.PendingCall)
	require.Empty(t, res.Error)
}

func TestActionLegacy_NeedsInput(t *testing.T) {
	svc := &fakeService{script: []*responses.Response{
		{ID: "resp-1", Output: []responses.OutputItem{messageItem("which editor?")}},
	}}
	a := newTestAgent(t, svc, &fakeEnv{}, Config{})

	res := a.ActionLegacy(context.Background(), LegacyRequest{Input: "open the editor"})
	require.Nil(t, res.Result)
	require.Len(t, res.NeedsInput, 1)
	require.Equal(t, "which editor?", res.NeedsInput[0].Text())
}

func TestActionLegacy_SafetyChecks(t *testing.T) {
	check := responses.SafetyCheck{ID: "sc-1", Code: "sensitive_domain", Message: "careful"}
	svc := &fakeService{script: []*responses.Response{
		{ID: "resp-1", Output: []responses.OutputItem{clickItem("call-1", check)}},
	}}
	a := newTestAgent(t, svc, &fakeEnv{}, Config{})

	res := a.ActionLegacy(context.Background(), LegacyRequest{Input: "proceed"})
	require.Nil(t, res.Result)
	require.Equal(t, []responses.SafetyCheck{check}, res.SafetyChecks)
	require.NotNil(t, res.PendingCall)
	require.Equal(t, "call-1", res.PendingCall.CallID)
}

func TestActionLegacy_Error(t *testing.T) {
	a := newTestAgent(t, &fakeService{}, &fakeEnv{}, Config{})

	res := a.ActionLegacy(context.Background(), LegacyRequest{})
	require.NotEmpty(t, res.Error)
	require.Nil(t, res.Result)
}

func TestActionLegacy_UserInputWinsOverInput(t *testing.T) {
	svc := &fakeService{script: []*responses.Response{terminalResponse("resp-1")}}
	a := newTestAgent(t, svc, &fakeEnv{}, Config{})

	a.ActionLegacy(context.Background(), LegacyRequest{Input: "stale command", UserInput: "actual reply"})
	require.Len(t, svc.reqs, 1)
	require.Equal(t, "actual reply", svc.reqs[0].Input[0].Content)
}

func TestActionLegacy_AcknowledgesViaChecksSlice(t *testing.T) {
	check := responses.SafetyCheck{ID: "sc-1", Code: "malicious_instructions", Message: "sure?"}
	svc := &fakeService{script: []*responses.Response{
		{ID: "resp-1", Output: []responses.OutputItem{clickItem("call-1", check)}},
		terminalResponse("resp-2"),
	}}
	env := &fakeEnv{}
	a := newTestAgent(t, svc, env, Config{})

	res := a.ActionLegacy(context.Background(), LegacyRequest{Input: "proceed"})
	require.NotNil(t, res.PendingCall)

	// Old convention: a non-empty SafetyChecks slice means "acknowledged".
	res = a.ActionLegacy(context.Background(), LegacyRequest{
		SafetyChecks: res.SafetyChecks,
		PendingCall:  res.PendingCall,
	})
	require.NotNil(t, res.Result)
	require.Equal(t, []string{"click", "screenshot"}, env.ops())
}
