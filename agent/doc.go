// Package agent drives the computer-use loop: it turns model responses into
// desktop actions, captures the resulting screenshots, and chains them back
// to the model as continuations until the conversation needs a human or ends.
//
// Invariants:
//   - at most one call is pending at any time;
//   - pending safety checks exist only while a call is pending;
//   - an open input request and a pending call are mutually exclusive per turn
//     (a gated call is surfaced before messages are considered).
//
// One Agent serves one conversation at a time and is not safe for concurrent
// use from multiple goroutines.
package agent
