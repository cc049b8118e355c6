// Package protocol defines the contracts between the engine core and its
// pluggable pieces: remote callables, integration handlers and event buses.
package protocol

import "context"

// Invoker calls a named remote callable with a JSON-shaped body and returns
// either the success payload or an error carrying the remote message. Both
// the executor and the cleanup service depend only on this shape, not on any
// particular transport.
type Invoker interface {
	Invoke(ctx context.Context, callable string, payload map[string]any) (map[string]any, error)
}
