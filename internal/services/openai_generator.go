package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// workflowPrompt asks for bare JSON. Models do not reliably comply, which is
// why extraction repair exists downstream.
const workflowPrompt = `You are given a page-scanned instruction manual. Extract the procedure it
describes as a JSON object with this exact shape:

{"title": "...", "steps": [{"title": "...", "description": "...", "durationSec": 0, "page": 1}]}

Rules:
- "steps" lists the actions in the order a person performs them, at most 20.
- "title" of a step is a short imperative phrase; "description" carries any
  detail worth keeping and may be omitted.
- "durationSec" is the number of seconds the manual says to wait or hold,
  only when it states or clearly implies one; omit it otherwise.
- "page" is the 1-based page of the manual the step appears on; omit it when
  unclear.
- Respond with the JSON object only. No markdown fences, no commentary.`

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "gpt-4o-mini"

// OpenAIConfig holds the settings for the OpenAI generator.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Optional, for OpenAI-compatible providers
}

// OpenAIGenerator implements Generator against an OpenAI-compatible chat
// completion API, sending the document as an inline image part so the model
// reads the scan directly.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator builds the generator. The API key is required.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key not provided")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// GenerateWorkflow sends the document alongside the extraction prompt and
// returns the raw completion text.
func (g *OpenAIGenerator) GenerateWorkflow(ctx context.Context, document []byte, filename string) (string, error) {
	prompt := workflowPrompt
	if filename != "" {
		prompt += "\n\nSource filename: " + filename
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(document),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapUpstream(err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Status: http.StatusBadGateway, Message: "model returned no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// dataURL inlines the document as a base64 data URL with a sniffed MIME
// type.
func dataURL(document []byte) string {
	mime := http.DetectContentType(document)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(document))
}

// wrapUpstream converts provider errors into UpstreamError, keeping the
// upstream status and message visible instead of masking them.
func wrapUpstream(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = err.Error()
		}
		status := apiErr.HTTPStatusCode
		if status == 0 {
			status = http.StatusBadGateway
		}
		return &UpstreamError{Status: status, Message: msg}
	}
	return &UpstreamError{Status: http.StatusBadGateway, Message: err.Error()}
}
