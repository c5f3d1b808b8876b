package aiclient

import (
	"context"
	"fmt"

	"fjacquet/email-ledger/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Client against the Google Gemini API.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	logger    logging.Logger
}

// NewGeminiClient creates a Gemini-backed Client for the given model.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Complete submits the prompt and returns the first candidate's text. The
// system instruction is folded into the prompt so the call shape stays the
// same across model generations.
func (c *GeminiClient) Complete(ctx context.Context, systemInstruction, userPrompt string, temperature float32, maxOutputTokens int32) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.GenerationConfig.Temperature = &temperature
	model.GenerationConfig.MaxOutputTokens = &maxOutputTokens

	prompt := userPrompt
	if systemInstruction != "" {
		prompt = systemInstruction + "\n\n" + userPrompt
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	c.logger.WithFields(
		logging.Field{Key: "model", Value: c.modelName},
		logging.Field{Key: "response_len", Value: len(text)},
	).Debug("Gemini completion returned")

	return text, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
