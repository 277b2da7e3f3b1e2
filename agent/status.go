package agent

import (
	"errors"

	"github.com/quarrylabs/deskdriver/responses"
)

// Status is the outcome of one Action invocation.
type Status string

const (
	// StatusComplete: the conversation concluded; Result.Response is final.
	StatusComplete Status = "complete"
	// StatusNeedsInput: the model asked for text; Result.Messages holds the asks.
	StatusNeedsInput Status = "needs_input"
	// StatusNeedsSafetyCheck: a call is gated on human acknowledgment;
	// Result.SafetyChecks and Result.PendingCall hold the gate.
	StatusNeedsSafetyCheck Status = "needs_safety_check"
	// StatusError: the invocation failed; Result.Err describes it.
	StatusError Status = "error"
)

// PendingCall is a model-proposed computer call held between the turn that
// proposed it and the turn that executes it.
type PendingCall struct {
	CallID       string
	Action       responses.Action
	SafetyChecks []responses.SafetyCheck
}

// Result is the status plus the payload relevant to it.
type Result struct {
	Status       Status
	Response     *responses.Response
	Messages     []responses.OutputItem
	SafetyChecks []responses.SafetyCheck
	PendingCall  *PendingCall
	Err          error
}

var (
	// ErrNoEnvironment: no desktop environment is bound to the agent.
	ErrNoEnvironment = errors.New("no desktop environment bound to this agent")
	// ErrNoAction: the caller supplied nothing actionable.
	ErrNoAction = errors.New("no valid action to take: provide input text or acknowledge safety checks")
	// ErrNoConversation: user input arrived with no conversation open.
	ErrNoConversation = errors.New("no active conversation to continue")
	// ErrNoPendingCall: checks were acknowledged with nothing pending.
	ErrNoPendingCall = errors.New("no pending call or safety checks to acknowledge")
	// ErrTurnLimit: the auto-continuation chain exceeded MaxTurns.
	ErrTurnLimit = errors.New("turn limit exceeded")
)

func errResult(err error) Result {
	return Result{Status: StatusError, Err: err}
}
