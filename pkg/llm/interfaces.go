// Package llm calls the external model endpoint that turns questions into
// candidate SQL. Everything it returns is untrusted and goes through the
// guard before touching a database connection.
package llm

import "context"

// Client is the minimal completion contract. Use this interface for
// dependency injection to enable mocking in tests.
type Client interface {
	// Complete sends a system message and user prompt and returns the raw
	// model text.
	Complete(ctx context.Context, systemMessage, prompt string) (string, error)

	// Model returns the configured model name, for logging.
	Model() string
}
