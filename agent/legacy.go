package agent

import (
	"context"

	"github.com/quarrylabs/deskdriver/responses"
)

// LegacyRequest is the flat, pre-refactor parameter set. UserInput wins over
// Input when both are set; a non-empty SafetyChecks slice means the checks
// are acknowledged.
//
// Deprecated: use Action. This shim exists for callers who have not migrated
// and performs no logic of its own.
type LegacyRequest struct {
	Input        string
	UserInput    string
	SafetyChecks []responses.SafetyCheck
	PendingCall  *PendingCall
}

// LegacyResult is the old ad-hoc response shape: exactly one of Result,
// NeedsInput, SafetyChecks+PendingCall, or Error is populated.
type LegacyResult struct {
	Result       *responses.Response
	NeedsInput   []responses.OutputItem
	SafetyChecks []responses.SafetyCheck
	PendingCall  *PendingCall
	Error        string
}

// ActionLegacy translates the old calling convention 1:1 onto Action and the
// four-way status back into the old result shape.
//
// Deprecated: use Action.
func (a *Agent) ActionLegacy(ctx context.Context, req LegacyRequest) LegacyResult {
	a.logger.Warn("ActionLegacy is deprecated; migrate to Action")

	inputText := req.Input
	if req.UserInput != "" {
		inputText = req.UserInput
	}
	acknowledged := len(req.SafetyChecks) > 0

	res := a.Action(ctx, inputText, acknowledged)
	switch res.Status {
	case StatusComplete:
		return LegacyResult{Result: res.Response}
	case StatusNeedsInput:
		return LegacyResult{NeedsInput: res.Messages}
	case StatusNeedsSafetyCheck:
		return LegacyResult{SafetyChecks: res.SafetyChecks, PendingCall: res.PendingCall}
	default:
		return LegacyResult{Error: res.Err.Error()}
	}
}
