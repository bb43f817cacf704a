package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const systemPrompt = "You recommend gift products. Answer in plain text using the requested Product_name and Reason layout."

// OpenAIOptions configures any OpenAI-compatible chat endpoint.
type OpenAIOptions struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

// OpenAI generates text through an OpenAI-compatible chat model.
type OpenAI struct {
	chatModel model.ChatModel
}

var _ Generator = (*OpenAI)(nil)

// NewOpenAI creates a chat model client.
func NewOpenAI(ctx context.Context, opts OpenAIOptions) (*OpenAI, error) {
	temp := opts.Temperature
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     opts.BaseURL,
		APIKey:      opts.APIKey,
		Model:       opts.Model,
		Temperature: &temp,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return &OpenAI{chatModel: cm}, nil
}

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(prompt),
	}

	resp, err := o.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrModelInvocation, err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}
