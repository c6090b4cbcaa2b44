package llm

import "context"

// Request is one call to a chat-style text-generation service. Temperature
// zero means the provider default is used; when WebSearch is set the
// request runs against the provider's broad-retrieval variant and the
// temperature is dropped (search models reject it).
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
	WebSearch   bool
}

type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
