// Package telemetry provides opt-in JSONL event emission for the driver loop
// plus turn-ID context plumbing so events from one turn correlate.
//
// Emission is gated by DESK_OBSERVE_JSON=1 and appends to
// .deskdriver/events.jsonl in the working directory.
package telemetry
