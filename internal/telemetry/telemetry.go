package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	eventsDir  = ".deskdriver"
	eventsFile = "events.jsonl"
	enableVar  = "DESK_OBSERVE_JSON"
)

// ObserveEnabled reports whether JSONL emission is enabled.
func ObserveEnabled() bool {
	return os.Getenv(enableVar) == "1"
}

// Emit appends one JSON line to .deskdriver/events.jsonl when
// DESK_OBSERVE_JSON=1. The line carries the caller's fields plus the event
// name and an RFC3339Nano timestamp. Emission failures go to stderr and are
// otherwise ignored; telemetry never disturbs the loop.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Callers keep ownership of their map; augment a copy.
	line := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		line[k] = v
	}
	line["event"] = name
	line["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	b, err := json.Marshal(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal %s: %v\n", name, err)
		return
	}

	if err := appendLine(b); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
	}
}

func appendLine(b []byte) error {
	if err := os.MkdirAll(eventsDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", eventsDir, err)
	}
	path := filepath.Join(eventsDir, eventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
