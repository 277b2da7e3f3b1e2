package telemetry

import "context"

type turnIDKey struct{}

// WithTurnID tags ctx with the turn identifier so events emitted anywhere in
// the call chain can be correlated back to one Action invocation.
func WithTurnID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, turnIDKey{}, id)
}

// TurnIDFromContext extracts the turn identifier. The second return is false
// when no non-empty turn ID was attached.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if id, ok := ctx.Value(turnIDKey{}).(string); ok && id != "" {
		return id, true
	}
	return "", false
}
