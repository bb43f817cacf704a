package llm

import (
	"context"
	"errors"
)

// ErrModelInvocation wraps every transport, auth or quota failure of a model backend.
var ErrModelInvocation = errors.New("model invocation failed")

// Generator turns a prompt into free-form text. Empty text is a valid answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
