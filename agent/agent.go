package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quarrylabs/deskdriver/internal/metrics"
	"github.com/quarrylabs/deskdriver/internal/snapshots"
	"github.com/quarrylabs/deskdriver/internal/telemetry"
	"github.com/quarrylabs/deskdriver/responses"
	"github.com/quarrylabs/deskdriver/tools"
)

// settleDelay gives the environment a moment to repaint after an action
// before the screenshot is captured.
const settleDelay = 1 * time.Second

// defaultMaxTurns bounds the auto-continuation chain within one Action call.
const defaultMaxTurns = 50

// TurnService creates or continues one turn with the model. The agent never
// retries a failed call; the caller re-invokes Action to try again.
type TurnService interface {
	CreateTurn(ctx context.Context, req responses.Request) (*responses.Response, error)
}

// Environment is the controlled desktop. Every primitive blocks until the
// environment has carried it out.
type Environment interface {
	Click(ctx context.Context, x, y int, button string) error
	Scroll(ctx context.Context, x, y, scrollX, scrollY int) error
	Keypress(ctx context.Context, keys []string) error
	TypeText(ctx context.Context, text string) error
	Screenshot(ctx context.Context) (string, error)
	Exec(ctx context.Context, command string) (output string, exitCode int, err error)
}

// Config tunes one Agent.
type Config struct {
	// Model names the computer-use model; defaults to responses.DefaultModel.
	Model string
	// DisplayWidth/DisplayHeight describe the environment's screen geometry.
	DisplayWidth  int
	DisplayHeight int
	// Environment is the computer-use environment kind, e.g. "linux".
	Environment string
	// MaxTurns bounds the auto-continuation chain within one Action call.
	// <= 0 selects the default of 50.
	MaxTurns int
	// Tools are optional function tools surfaced alongside the computer-use
	// tool.
	Tools []tools.ToolDefinition
	// SnapshotDir receives a PNG per executed call; empty disables snapshots.
	SnapshotDir string
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = responses.DefaultModel
	}
	if c.DisplayWidth <= 0 {
		c.DisplayWidth = 1024
	}
	if c.DisplayHeight <= 0 {
		c.DisplayHeight = 768
	}
	if c.Environment == "" {
		c.Environment = "linux"
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = defaultMaxTurns
	}
}

// Agent is the action loop controller. It owns the conversation state and is
// reusable across commands; see the package doc for the concurrency contract.
type Agent struct {
	svc    TurnService
	env    Environment
	cfg    Config
	logger *zap.Logger

	// sleep is swapped out by tests to avoid real delays.
	sleep func(time.Duration)

	current             *responses.Response
	responseHistory     []*responses.Response
	inputHistory        []responses.InputItem
	pendingCall         *PendingCall
	pendingSafetyChecks []responses.SafetyCheck
	needsInput          []responses.OutputItem
	awaitingInput       bool
	lastErr             error
	snapshotSeq         int
}

// New returns an Agent driving env through svc. A nil logger is replaced
// with a nop logger.
func New(svc TurnService, env Environment, cfg Config, logger *zap.Logger) *Agent {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		svc:    svc,
		env:    env,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "agent")),
		sleep:  time.Sleep,
	}
}

// CurrentResponse returns the current response, or nil.
func (a *Agent) CurrentResponse() *responses.Response { return a.current }

// ResponseHistory returns a copy of every response received so far.
func (a *Agent) ResponseHistory() []*responses.Response {
	out := make([]*responses.Response, len(a.responseHistory))
	copy(out, a.responseHistory)
	return out
}

// InputHistory returns a copy of every input item sent so far.
func (a *Agent) InputHistory() []responses.InputItem {
	out := make([]responses.InputItem, len(a.inputHistory))
	copy(out, a.inputHistory)
	return out
}

// PendingCall returns the call awaiting safety acknowledgment, or nil.
func (a *Agent) PendingCall() *PendingCall { return a.pendingCall }

// PendingSafetyChecks returns a copy of the checks awaiting acknowledgment.
func (a *Agent) PendingSafetyChecks() []responses.SafetyCheck {
	out := make([]responses.SafetyCheck, len(a.pendingSafetyChecks))
	copy(out, a.pendingSafetyChecks)
	return out
}

// NeedsInput returns a copy of the message items awaiting a human reply.
func (a *Agent) NeedsInput() []responses.OutputItem {
	out := make([]responses.OutputItem, len(a.needsInput))
	copy(out, a.needsInput)
	return out
}

// AwaitingInput reports whether the conversation is paused on a human reply.
// It can be true with an empty NeedsInput when the model attached safety
// checks to no computer call.
func (a *Agent) AwaitingInput() bool { return a.awaitingInput }

// LastErr returns the most recent error surfaced by Action, or nil.
func (a *Agent) LastErr() error { return a.lastErr }

// Reset clears all conversation state.
func (a *Agent) Reset() {
	a.current = nil
	a.responseHistory = nil
	a.inputHistory = nil
	a.pendingCall = nil
	a.pendingSafetyChecks = nil
	a.needsInput = nil
	a.awaitingInput = false
	a.lastErr = nil
	a.snapshotSeq = 0
}

// Action is the single entry point of the state machine. inputText starts a
// new command or answers an open input request; acknowledgedSafetyChecks
// releases a gated pending call. Failures anywhere in the sequence are
// converted to StatusError; conversation state is left as-is for diagnosis.
func (a *Agent) Action(ctx context.Context, inputText string, acknowledgedSafetyChecks bool) Result {
	if a.env == nil {
		a.lastErr = ErrNoEnvironment
		return errResult(ErrNoEnvironment)
	}

	turnID := fmt.Sprintf("turn-%s", uuid.NewString())
	ctx = telemetry.WithTurnID(ctx, turnID)

	switch {
	case acknowledgedSafetyChecks && a.pendingCall != nil:
		return a.handleAcknowledgedSafetyChecks(ctx)
	case a.awaitingInput && inputText != "":
		return a.handleUserInput(ctx, inputText)
	case inputText != "":
		return a.handleNewCommand(ctx, inputText)
	default:
		a.lastErr = ErrNoAction
		return errResult(ErrNoAction)
	}
}

// handleNewCommand starts a brand-new conversation: prior state is cleared
// and no continuation id is sent.
func (a *Agent) handleNewCommand(ctx context.Context, command string) Result {
	a.Reset()
	a.logger.Info("starting command", zap.Int("len", len(command)))

	resp, err := a.createTurn(ctx, "", []responses.InputItem{responses.UserMessage(command)})
	if err != nil {
		a.lastErr = err
		return errResult(err)
	}
	return a.processTurn(ctx, resp)
}

// handleUserInput continues the open conversation with the human's reply.
func (a *Agent) handleUserInput(ctx context.Context, inputText string) Result {
	if a.current == nil {
		a.lastErr = ErrNoConversation
		return errResult(ErrNoConversation)
	}

	resp, err := a.createTurn(ctx, a.current.ID, []responses.InputItem{responses.UserMessage(inputText)})
	if err != nil {
		a.lastErr = err
		return errResult(err)
	}
	a.needsInput = nil
	a.awaitingInput = false
	return a.processTurn(ctx, resp)
}

// handleAcknowledgedSafetyChecks executes the gated pending call, echoing the
// acknowledged checks back to the model verbatim.
func (a *Agent) handleAcknowledgedSafetyChecks(ctx context.Context) Result {
	if a.current == nil || a.pendingCall == nil || len(a.pendingSafetyChecks) == 0 {
		a.lastErr = ErrNoPendingCall
		return errResult(ErrNoPendingCall)
	}

	resp, err := a.executeAndContinue(ctx, a.current.ID, a.pendingCall, a.pendingSafetyChecks)
	if err != nil {
		a.lastErr = err
		return errResult(err)
	}
	a.pendingCall = nil
	a.pendingSafetyChecks = nil
	return a.processTurn(ctx, resp)
}

// processTurn interprets responses and auto-executes ungated calls until the
// chain pauses or ends. The chain is an explicit loop bounded by MaxTurns so
// a pathological model cannot recurse indefinitely.
func (a *Agent) processTurn(ctx context.Context, resp *responses.Response) Result {
	for turn := 0; ; turn++ {
		if turn >= a.cfg.MaxTurns {
			a.lastErr = ErrTurnLimit
			a.logger.Warn("turn limit exceeded", zap.Int("max_turns", a.cfg.MaxTurns))
			return errResult(ErrTurnLimit)
		}

		outcome := interpretTurn(resp)
		switch outcome.kind {
		case classExecutable:
			next, err := a.executeAndContinue(ctx, resp.ID, outcome.call, nil)
			if err != nil {
				a.lastErr = err
				return errResult(err)
			}
			resp = next

		case classFunctionCalls:
			next, err := a.executeFunctionCalls(ctx, resp.ID, outcome.functionCalls)
			if err != nil {
				a.lastErr = err
				return errResult(err)
			}
			resp = next

		case classNeedsSafetyAck:
			a.pendingCall = outcome.call
			a.pendingSafetyChecks = outcome.checks
			telemetry.Emit("safety_gate", map[string]any{"checks": len(outcome.checks)})
			return Result{
				Status:       StatusNeedsSafetyCheck,
				SafetyChecks: outcome.checks,
				PendingCall:  outcome.call,
				Messages:     outcome.messages,
			}

		case classNeedsInput:
			// The flag, not the message slice, records the pause: a turn can
			// ask for input via orphaned safety checks with no message items.
			a.needsInput = outcome.messages
			a.awaitingInput = true
			return Result{
				Status:       StatusNeedsInput,
				Messages:     outcome.messages,
				SafetyChecks: outcome.checks,
			}

		default: // classTerminal
			return Result{Status: StatusComplete, Response: resp}
		}
	}
}

// executeAndContinue dispatches the call, captures a screenshot, and submits
// the call output (plus any acknowledged checks, verbatim) as a continuation.
func (a *Agent) executeAndContinue(ctx context.Context, previousID string, call *PendingCall, acked []responses.SafetyCheck) (*responses.Response, error) {
	a.dispatch(ctx, call.Action)
	a.sleep(settleDelay)

	shot, err := a.env.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("screenshot after %s: %w", call.Action.Type, err)
	}
	a.saveSnapshot(shot)

	item := responses.ComputerCallOutput(call.CallID, shot, acked)
	return a.createTurn(ctx, previousID, []responses.InputItem{item})
}

// executeFunctionCalls runs each function tool call and submits the outputs
// as one continuation. Tool failures become ToolError payloads for the model,
// never loop failures.
func (a *Agent) executeFunctionCalls(ctx context.Context, previousID string, calls []responses.OutputItem) (*responses.Response, error) {
	items := make([]responses.InputItem, 0, len(calls))
	for _, call := range calls {
		out := a.execTool(ctx, call)
		items = append(items, responses.FunctionCallOutput(call.CallID, out))
	}
	return a.createTurn(ctx, previousID, items)
}

func (a *Agent) execTool(ctx context.Context, call responses.OutputItem) string {
	metrics.ToolCalls.WithLabelValues(call.Name).Inc()

	def := tools.Lookup(a.cfg.Tools, call.Name)
	if def == nil {
		a.logger.Warn("tool not found", zap.String("tool", call.Name))
		return tools.ToolError{Code: "ERR_TOOL_NOT_FOUND", Message: call.Name}.Error()
	}

	start := time.Now()
	out, err := def.Function(ctx, json.RawMessage(call.Arguments))
	telemetry.Emit("tool_exec", map[string]any{
		"tool_name":   call.Name,
		"duration_ms": time.Since(start).Milliseconds(),
		"failed":      err != nil,
	})
	if err != nil {
		a.logger.Warn("tool failed", zap.String("tool", call.Name), zap.Error(err))
		if te, ok := err.(tools.ToolError); ok {
			return te.Error()
		}
		return tools.ToolError{Code: "ERR_TOOL", Message: err.Error()}.Error()
	}
	return out
}

// createTurn sends one request to the model service and records the exchange
// in the histories. previousID empty means a brand-new conversation, which
// also requests a concise reasoning summary.
func (a *Agent) createTurn(ctx context.Context, previousID string, items []responses.InputItem) (*responses.Response, error) {
	req := responses.Request{
		Model:      a.cfg.Model,
		Tools:      a.requestTools(),
		Input:      items,
		Truncation: "auto",
	}
	if previousID == "" {
		req.Reasoning = &responses.Reasoning{GenerateSummary: "concise"}
	} else {
		req.PreviousResponseID = previousID
	}

	a.inputHistory = append(a.inputHistory, items...)

	resp, err := a.svc.CreateTurn(ctx, req)
	if err != nil {
		metrics.ModelErrors.Inc()
		return nil, err
	}

	a.responseHistory = append(a.responseHistory, resp)
	a.current = resp
	metrics.TurnsTotal.Inc()

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	telemetry.Emit("turn_completed", map[string]any{
		"turn_id":      turnID,
		"response_id":  resp.ID,
		"continuation": previousID != "",
		"output_items": len(resp.Output),
	})
	return resp, nil
}

func (a *Agent) requestTools() []responses.Tool {
	out := []responses.Tool{
		responses.ComputerUseTool(a.cfg.DisplayWidth, a.cfg.DisplayHeight, a.cfg.Environment),
	}
	for _, t := range a.cfg.Tools {
		out = append(out, responses.Tool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}
	return out
}

// saveSnapshot best-effort persists the screenshot; failures only log.
func (a *Agent) saveSnapshot(screenshotB64 string) {
	if a.cfg.SnapshotDir == "" {
		return
	}
	png, err := base64.StdEncoding.DecodeString(screenshotB64)
	if err != nil {
		a.logger.Warn("snapshot decode failed", zap.Error(err))
		return
	}
	a.snapshotSeq++
	if _, err := snapshots.Save(a.cfg.SnapshotDir, a.snapshotSeq, png); err != nil {
		a.logger.Warn("snapshot write failed", zap.Error(err))
	}
}
