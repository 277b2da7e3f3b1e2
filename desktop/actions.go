package desktop

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// clickButtons maps model button names to X button numbers.
var clickButtons = map[string]int{
	"left":   1,
	"middle": 2,
	"wheel":  2,
	"right":  3,
}

// scrollPulses is the fixed number of discrete wheel events per scroll
// gesture. Magnitude is deliberately not translated linearly so gestures
// stay bounded.
const scrollPulses = 3

// Exec runs a shell command inside the container and returns its combined
// output and exit code. A non-zero exit code is a result, not an error.
func (d *Desktop) Exec(ctx context.Context, command string) (string, int, error) {
	stdout, stderr, code, err := d.run.Run(ctx, "docker", "exec", d.name, "/bin/sh", "-c", command)
	if err != nil {
		return "", 0, fmt.Errorf("desktop: exec: %w", err)
	}
	out := stdout
	if stderr != "" {
		out += stderr
	}
	d.logger.Debug("command output", zap.String("output", out))
	return out, code, nil
}

// xdo runs one xdotool invocation against the container display.
func (d *Desktop) xdo(ctx context.Context, args string) error {
	cmd := fmt.Sprintf("export DISPLAY=%s && xdotool %s", d.display, args)
	_, code, err := d.Exec(ctx, cmd)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("desktop: xdotool %s: exit code %d", args, code)
	}
	return nil
}

// Click moves the pointer to (x, y) and clicks the named button. Unknown
// button names fall back to a left click.
func (d *Desktop) Click(ctx context.Context, x, y int, button string) error {
	b, ok := clickButtons[strings.ToLower(button)]
	if !ok {
		b = 1
	}
	d.logger.Info("click", zap.Int("x", x), zap.Int("y", y), zap.String("button", button))
	return d.xdo(ctx, fmt.Sprintf("mousemove %d %d click %d", x, y, b))
}

// Scroll moves the pointer to (x, y) and emits a fixed number of wheel
// pulses: button 4/5 for vertical (up/down), button 6/7 for horizontal
// (left/right).
func (d *Desktop) Scroll(ctx context.Context, x, y, scrollX, scrollY int) error {
	d.logger.Info("scroll",
		zap.Int("x", x), zap.Int("y", y),
		zap.Int("scroll_x", scrollX), zap.Int("scroll_y", scrollY),
	)
	if err := d.xdo(ctx, fmt.Sprintf("mousemove %d %d", x, y)); err != nil {
		return err
	}

	if scrollY != 0 {
		button := 5
		if scrollY < 0 {
			button = 4
		}
		for i := 0; i < scrollPulses; i++ {
			if err := d.xdo(ctx, fmt.Sprintf("click %d", button)); err != nil {
				return err
			}
		}
	}

	if scrollX != 0 {
		button := 7
		if scrollX < 0 {
			button = 6
		}
		for i := 0; i < scrollPulses; i++ {
			if err := d.xdo(ctx, fmt.Sprintf("click %d", button)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Keypress presses keys in sequence. CTRL and SHIFT (case-insensitive) are
// modifier holds: pressed down when encountered and released only after the
// whole sequence has been issued. Named keys map to dedicated key codes;
// everything else is lower-cased and sent as a single literal key.
func (d *Desktop) Keypress(ctx context.Context, keys []string) error {
	d.logger.Info("keypress", zap.Strings("keys", keys))

	var ctrlHeld, shiftHeld bool
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, k := range keys {
		switch {
		case strings.EqualFold(k, "ctrl"):
			keep(d.xdo(ctx, "keydown ctrl"))
			ctrlHeld = true
		case strings.EqualFold(k, "shift"):
			keep(d.xdo(ctx, "keydown shift"))
			shiftHeld = true
		case strings.EqualFold(k, "enter"):
			keep(d.xdo(ctx, "key Return"))
		case strings.EqualFold(k, "space"):
			keep(d.xdo(ctx, "key space"))
		default:
			keep(d.xdo(ctx, "key "+shellQuote(strings.ToLower(k))))
		}
	}

	// Modifiers release after all keys in the call, regardless of position.
	if ctrlHeld {
		keep(d.xdo(ctx, "keyup ctrl"))
	}
	if shiftHeld {
		keep(d.xdo(ctx, "keyup shift"))
	}
	return firstErr
}

// TypeText types the literal string at the current cursor location as one
// primitive.
func (d *Desktop) TypeText(ctx context.Context, text string) error {
	d.logger.Info("type", zap.Int("len", len(text)))
	return d.xdo(ctx, "type "+shellQuote(text))
}

// Screenshot captures the current desktop and returns it as base64-encoded
// PNG. Unlike the other primitives, a failure here is an error: the loop
// cannot continue without a screenshot.
func (d *Desktop) Screenshot(ctx context.Context) (string, error) {
	command := fmt.Sprintf("export DISPLAY=%s && import -window root png:- | base64 -w 0", d.display)
	stdout, stderr, code, err := d.run.Run(ctx, "docker", "exec", d.name, "bash", "-c", command)
	if err != nil {
		return "", fmt.Errorf("desktop: screenshot: %w", err)
	}
	if code != 0 {
		return "", fmt.Errorf("desktop: screenshot failed: %s", strings.TrimSpace(stderr))
	}
	return strings.TrimSpace(stdout), nil
}

// shellQuote single-quotes s for /bin/sh so typed text cannot break out of
// the xdotool argument.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
