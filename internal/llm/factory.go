package llm

import (
	"context"
	"fmt"

	"github.com/DeafMist/gift-radar/internal/config"
)

// New builds the configured backend wrapped in rate limiting and a per-call timeout.
func New(ctx context.Context, cfg config.LLM) (Generator, error) {
	var (
		gen Generator
		err error
	)

	switch cfg.Provider {
	case "gemini":
		gen, err = NewGemini(ctx, GeminiOptions{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: float32(cfg.Temperature),
		})
	case "openai":
		gen, err = NewOpenAI(ctx, OpenAIOptions{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: float32(cfg.Temperature),
		})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewLimited(gen, cfg.RPM, cfg.Burst, cfg.Timeout), nil
}
