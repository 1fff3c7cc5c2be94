package llm

import (
	"context"
	"errors"
	"os"

	"github.com/sashabaranov/go-openai"
)

// OpenAILLM implements Model using OpenAI's chat completions API.
type OpenAILLM struct {
	client *openai.Client
	model  string
	opts   settings
}

// newOpenAI constructs a client. It reads OPENAI_API_KEY from the env.
func newOpenAI(model string, opts settings) *OpenAILLM {
	return &OpenAILLM{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
		opts:   opts,
	}
}

// Generate performs a single-turn completion with a system and user message.
func (o *OpenAILLM) Generate(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if o.opts.hasTemperature {
		req.Temperature = o.opts.temperature
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
