package desktop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func execCall(shell, script string) []string {
	return []string{"docker", "exec", "deskbox-test", shell, "-c", script}
}

func TestClick_MapsButtonsToXNumbers(t *testing.T) {
	tests := []struct {
		button string
		xdoBtn string
	}{
		{"left", "1"},
		{"middle", "2"},
		{"wheel", "2"},
		{"right", "3"},
		{"RIGHT", "3"},
		{"thumb", "1"}, // unknown falls back to left
	}
	for _, tt := range tests {
		t.Run(tt.button, func(t *testing.T) {
			run := &fakeRunner{}
			d := newTestDesktop(t, run)

			require.NoError(t, d.Click(context.Background(), 300, 400, tt.button))
			require.Equal(t, []string{
				"docker", "exec", "deskbox-test", "/bin/sh", "-c",
				"export DISPLAY=:99 && xdotool mousemove 300 400 click " + tt.xdoBtn,
			}, run.calls[0])
		})
	}
}

func TestScroll_VerticalDownEmitsThreePulses(t *testing.T) {
	run := &fakeRunner{}
	d := newTestDesktop(t, run)

	require.NoError(t, d.Scroll(context.Background(), 512, 384, 0, 200))
	require.Equal(t, [][]string{
		execCall("/bin/sh", "export DISPLAY=:99 && xdotool mousemove 512 384"),
		execCall("/bin/sh", "export DISPLAY=:99 && xdotool click 5"),
		execCall("/bin/sh", "export DISPLAY=:99 && xdotool click 5"),
		execCall("/bin/sh", "export DISPLAY=:99 && xdotool click 5"),
	}, run.calls)
}

func TestScroll_VerticalUpUsesButtonFour(t *testing.T) {
	run := &fakeRunner{}
	d := newTestDesktop(t, run)

	require.NoError(t, d.Scroll(context.Background(), 0, 0, 0, -50))
	require.Len(t, run.calls, 4)
	require.Equal(t, "export DISPLAY=:99 && xdotool click 4", run.calls[1][5])
}

func TestScroll_HorizontalUsesButtonsSixAndSeven(t *testing.T) {
	run := &fakeRunner{}
	d := newTestDesktop(t, run)

	require.NoError(t, d.Scroll(context.Background(), 0, 0, 120, 0))
	require.Equal(t, "export DISPLAY=:99 && xdotool click 7", run.calls[1][5])

	run.calls = nil
	require.NoError(t, d.Scroll(context.Background(), 0, 0, -120, 0))
	require.Equal(t, "export DISPLAY=:99 && xdotool click 6", run.calls[1][5])
}

func TestScroll_ZeroDeltasOnlyMove(t *testing.T) {
	run := &fakeRunner{}
	d := newTestDesktop(t, run)

	require.NoError(t, d.Scroll(context.Background(), 10, 20, 0, 0))
	require.Len(t, run.calls, 1, "no wheel pulses without a delta")
}

func TestKeypress_ModifiersHeldAcrossSequence(t *testing.T) {
	run := &fakeRunner{}
	d := newTestDesktop(t, run)

	require.NoError(t, d.Keypress(context.Background(), []string{"CTRL", "A"}))

	scripts := make([]string, len(run.calls))
	for i, c := range run.calls {
		scripts[i] = c[5]
	}
	require.Equal(t, []string{
		"export DISPLAY=:99 && xdotool keydown ctrl",
		"export DISPLAY=:99 && xdotool key 'a'",
		"export DISPLAY=:99 && xdotool keyup ctrl",
	}, scripts)
}

func TestKeypress_NamedKeys(t *testing.T) {
	run := &fakeRunner{}
	d := newTestDesktop(t, run)

	require.NoError(t, d.Keypress(context.Background(), []string{"enter", "space"}))
	require.Equal(t, "export DISPLAY=:99 && xdotool key Return", run.calls[0][5])
	require.Equal(t, "export DISPLAY=:99 && xdotool key space", run.calls[1][5])
}

func TestKeypress_ShiftAndCtrlBothRelease(t *testing.T) {
	run := &fakeRunner{}
	d := newTestDesktop(t, run)

	require.NoError(t, d.Keypress(context.Background(), []string{"ctrl", "shift", "t"}))

	scripts := make([]string, len(run.calls))
	for i, c := range run.calls {
		scripts[i] = c[5]
	}
	require.Equal(t, []string{
		"export DISPLAY=:99 && xdotool keydown ctrl",
		"export DISPLAY=:99 && xdotool keydown shift",
		"export DISPLAY=:99 && xdotool key 't'",
		"export DISPLAY=:99 && xdotool keyup ctrl",
		"export DISPLAY=:99 && xdotool keyup shift",
	}, scripts)
}

func TestTypeText_QuotesForShell(t *testing.T) {
	run := &fakeRunner{}
	d := newTestDesktop(t, run)

	require.NoError(t, d.TypeText(context.Background(), "it's here; $HOME"))
	require.Equal(t,
		`export DISPLAY=:99 && xdotool type 'it'\''s here; $HOME'`,
		run.calls[0][5])
}

func TestScreenshot_TrimsOutput(t *testing.T) {
	run := &fakeRunner{results: []runResult{
		{stdout: "aGVsbG8=\n"},
	}}
	d := newTestDesktop(t, run)

	shot, err := d.Screenshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, "aGVsbG8=", shot)
	require.Equal(t, execCall("bash", "export DISPLAY=:99 && import -window root png:- | base64 -w 0"), run.calls[0])
}

func TestScreenshot_NonZeroExitIsError(t *testing.T) {
	run := &fakeRunner{results: []runResult{
		{stderr: "import: unable to connect to X server", code: 1},
	}}
	d := newTestDesktop(t, run)

	_, err := d.Screenshot(context.Background())
	require.ErrorContains(t, err, "unable to connect to X server")
}

func TestExec_ReturnsCombinedOutputAndCode(t *testing.T) {
	run := &fakeRunner{results: []runResult{
		{stdout: "out", stderr: "err", code: 2},
	}}
	d := newTestDesktop(t, run)

	out, code, err := d.Exec(context.Background(), "ls /nope")
	require.NoError(t, err, "a non-zero exit code is a result, not an error")
	require.Equal(t, "outerr", out)
	require.Equal(t, 2, code)
	require.Equal(t, execCall("/bin/sh", "ls /nope"), run.calls[0])
}

func TestXdo_NonZeroExitIsError(t *testing.T) {
	run := &fakeRunner{results: []runResult{
		{code: 1},
	}}
	d := newTestDesktop(t, run)

	err := d.Click(context.Background(), 1, 2, "left")
	require.ErrorContains(t, err, "exit code 1")
}
