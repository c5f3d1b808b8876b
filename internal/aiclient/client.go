// Package aiclient wraps the language-model collaborator behind a small
// text-in/text-out interface so the extraction and classification engines can
// be tested against canned responses.
package aiclient

import "context"

// Client is the AI collaborator. Calls are synchronous and fallible; callers
// bound them with a context deadline and treat failure as a routine degraded
// path, never as fatal.
type Client interface {
	// Complete submits an instruction and prompt and returns the raw
	// response text.
	Complete(ctx context.Context, systemInstruction, userPrompt string, temperature float32, maxOutputTokens int32) (string, error)
}
