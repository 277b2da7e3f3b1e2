package agent

import "github.com/quarrylabs/deskdriver/responses"

// classification is the four-way (plus function tools) reading of one model
// response that decides what the loop does next.
type classification int

const (
	// classTerminal: no calls, no messages, no checks; the conversation ended.
	classTerminal classification = iota
	// classExecutable: exactly one ungated computer call to run immediately.
	classExecutable
	// classNeedsSafetyAck: a computer call gated on human acknowledgment.
	classNeedsSafetyAck
	// classNeedsInput: no computer call, but messages or orphaned checks.
	classNeedsInput
	// classFunctionCalls: no computer call, but function tool calls to run.
	classFunctionCalls
)

// turnOutcome carries the classification together with the payload extracted
// from the response.
type turnOutcome struct {
	kind          classification
	call          *PendingCall
	functionCalls []responses.OutputItem
	messages      []responses.OutputItem
	checks        []responses.SafetyCheck
}

// interpretTurn classifies one model response. Only the first computer call
// is considered: multiple calls per turn are not supported (documented
// limitation, not a defect). Safety gating always takes precedence over a
// human-input request in the same turn.
func interpretTurn(resp *responses.Response) turnOutcome {
	messages := resp.Messages()
	checks := resp.SafetyChecks()
	fns := resp.FunctionCalls()

	var call *PendingCall
	if calls := resp.ComputerCalls(); len(calls) > 0 {
		first := calls[0]
		call = &PendingCall{
			CallID:       first.CallID,
			Action:       first.Action,
			SafetyChecks: first.PendingSafetyChecks,
		}
	}

	switch {
	case call != nil && len(checks) > 0:
		return turnOutcome{kind: classNeedsSafetyAck, call: call, checks: checks, messages: messages}
	case call != nil:
		return turnOutcome{kind: classExecutable, call: call}
	case len(fns) > 0:
		return turnOutcome{kind: classFunctionCalls, functionCalls: fns, messages: messages}
	case len(messages) > 0 || len(checks) > 0:
		return turnOutcome{kind: classNeedsInput, messages: messages, checks: checks}
	default:
		return turnOutcome{kind: classTerminal}
	}
}
