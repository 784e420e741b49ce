// Package llm defines the port interface for LLM provider invocation.
package llm

import "context"

// Result is the outcome of a single prompt invocation.
type Result struct {
	Response     string
	InvocationID string
}

// Client is the port interface for the LLM proxy. PromptKey selects a
// server-side prompt template; input is the JSON-encoded template input.
type Client interface {
	Invoke(ctx context.Context, promptKey string, input []byte) (*Result, error)
}
