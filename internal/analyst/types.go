package analyst

import "context"

// CompletionRequest is a single chat-completion call. JSONMode asks the
// provider to constrain the output to a JSON object.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	JSONMode    bool
}

// Provider is the pluggable completion backend. Any chat-completion style
// endpoint that can return raw text satisfies the analyst's dependency.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// RetryAfterer is implemented by provider errors that carry a
// server-supplied retry hint alongside a rate-limit rejection.
type RetryAfterer interface {
	RetryAfter() (seconds int, ok bool)
}
