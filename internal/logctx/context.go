// Package logctx carries per-request logging metadata on a
// context.Context: a session id grouping records across one logical
// user session, a business reference (order id, user id, ...), and the
// nesting depth of the operation that produced a record.
//
// Values are inherited by child contexts the usual way, so metadata
// attached at the edge of a request flows to every nested call without
// threading extra parameters through signatures.
package logctx

import "context"

type ctxKey int

const (
	sessionKey ctxKey = iota
	referenceKey
	depthKey
)

// WithSession returns a context carrying the given session id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// WithReference returns a context carrying the given business reference.
func WithReference(ctx context.Context, reference string) context.Context {
	return context.WithValue(ctx, referenceKey, reference)
}

// Nest returns a context one nesting level deeper than ctx. A context
// with no depth yet starts at 0; nesting an existing context increments
// its depth. Session and reference values are inherited unchanged.
func Nest(ctx context.Context) context.Context {
	d, ok := Depth(ctx)
	if !ok {
		return context.WithValue(ctx, depthKey, 0)
	}
	return context.WithValue(ctx, depthKey, d+1)
}

// Session returns the session id carried by ctx, if any.
func Session(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(sessionKey).(string)
	return s, ok
}

// Reference returns the business reference carried by ctx, if any.
func Reference(ctx context.Context) (string, bool) {
	r, ok := ctx.Value(referenceKey).(string)
	return r, ok
}

// Depth returns the nesting depth carried by ctx. ok is false when the
// context has never been nested, which callers must treat as "no
// logical call context" rather than depth zero.
func Depth(ctx context.Context) (int, bool) {
	d, ok := ctx.Value(depthKey).(int)
	return d, ok
}
