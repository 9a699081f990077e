// Package llm holds the model-output producer boundary: something that turns
// a command plus optional context into raw, untyped JSON. Making that JSON
// trustworthy is the intent package's job, not this one's.
package llm

import "context"

// Producer turns a natural-language command into a raw interpretation.
// The returned map is whatever shape the upstream model emitted; callers
// must run it through intent.Resolve before using it. Implementations do
// not retry — routing and fallback policy live upstream.
type Producer interface {
	Interpret(ctx context.Context, command, contextBlock string) (map[string]any, error)
}
