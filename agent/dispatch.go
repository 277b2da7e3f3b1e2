package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quarrylabs/deskdriver/internal/metrics"
	"github.com/quarrylabs/deskdriver/internal/telemetry"
	"github.com/quarrylabs/deskdriver/responses"
)

// waitDelay is the fixed pause a wait action performs.
const waitDelay = 2 * time.Second

// dispatch translates one model action into the matching environment
// primitive. It is best-effort by policy: a failed primitive is logged,
// counted, and swallowed, because the next screenshot shows the model the
// true environment state. Unrecognized action tags are logged no-ops so a
// newer model vocabulary never aborts the loop.
func (a *Agent) dispatch(ctx context.Context, action responses.Action) {
	var err error

	switch action.Type {
	case responses.ActionClick:
		err = a.env.Click(ctx, action.X, action.Y, action.Button)

	case responses.ActionScroll:
		err = a.env.Scroll(ctx, action.X, action.Y, action.ScrollX, action.ScrollY)

	case responses.ActionKeypress:
		err = a.env.Keypress(ctx, action.Keys)

	case responses.ActionType:
		err = a.env.TypeText(ctx, action.Text)

	case responses.ActionWait:
		a.sleep(waitDelay)

	case responses.ActionScreenshot:
		// The loop captures a screenshot after every call; nothing to do.

	default:
		a.logger.Warn("unrecognized action", zap.String("type", action.Type))
		telemetry.Emit("action_unrecognized", map[string]any{"type": action.Type})
		return
	}

	metrics.ActionsTotal.WithLabelValues(action.Type).Inc()
	if err != nil {
		a.logger.Error("action failed",
			zap.String("type", action.Type),
			zap.Error(err),
		)
		metrics.DispatchFailures.Inc()
		telemetry.Emit("action_failed", map[string]any{"type": action.Type, "error": err.Error()})
	}
}
