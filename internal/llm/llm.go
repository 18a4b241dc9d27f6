package llm

import "context"

// Client is a text-generation backend for the analyst agents.
type Client interface {
	// Generate returns the model's completion for a system + user prompt pair.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Available reports whether the backend can serve requests right now.
	Available(ctx context.Context) bool
	// Name identifies the backend and model for logs and reports.
	Name() string
}
