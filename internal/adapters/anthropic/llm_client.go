package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const systemPrompt = "You are a cybersecurity analyst. Respond only with a JSON object."

// AnthropicClient is an implementation of the LLMClient interface using the Anthropic Messages API
type AnthropicClient struct {
	client      anthropic.Client
	modelName   string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float64,
	logger *zap.Logger,
	opts ...option.RequestOption,
) *AnthropicClient {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &AnthropicClient{
		client:      anthropic.NewClient(opts...),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// GenerateContent sends the prompt as a single user message and returns the reply text
func (c *AnthropicClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.modelName),
		MaxTokens:   int64(c.maxTokens),
		Temperature: anthropic.Float(c.temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create message with Anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	c.logger.Debug("Anthropic response received",
		zap.String("model", c.modelName),
		zap.String("id", message.ID))

	return strings.TrimSpace(sb.String()), nil
}
