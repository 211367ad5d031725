package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// OpenAIProvider adapts any chat-completions compatible API: OpenAI itself or
// alternative providers reachable through a custom BaseURL. This is the
// "chat-message-array" provider family.
type OpenAIProvider struct {
	name    string
	client  *openai.Client
	model   string
	timeout time.Duration
	maxTok  int
}

// NewOpenAIProvider builds the adapter from config. An empty BaseURL targets
// api.openai.com; otherwise the URL is normalized to end in /v1 the way
// compatible servers expect.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		clientCfg.BaseURL = baseURL
	}

	maxTok := cfg.MaxTokens
	if maxTok == 0 {
		maxTok = defaultMaxTokens
	}

	log.Printf("[OpenAIProvider] %s configured: model=%s baseURL=%s timeout=%s", cfg.Name, cfg.Model, clientCfg.BaseURL, cfg.Timeout)
	return &OpenAIProvider{
		name:    cfg.Name,
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: attemptTimeout(cfg.Timeout),
		maxTok:  maxTok,
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

// Generate performs one attempt against the provider. The per-attempt timeout
// is enforced here so the orchestrator never waits longer than configured for
// a single try.
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if system := systemPrompt(req); system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: p.maxTok,
	})
	if err != nil {
		return "", p.classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: p.name, Kind: ErrInvalidResponse, Err: errors.New("response contained no choices")}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ProviderError{Provider: p.name, Kind: ErrInvalidResponse, Err: errors.New("response text empty after trimming")}
	}
	return text, nil
}

func (p *OpenAIProvider) classify(ctx context.Context, err error) error {
	// Caller cancellation is not a provider failure; let it bubble raw.
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(p.name, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(p.name, reqErr.HTTPStatusCode, err)
	}
	return classifyTransport(p.name, err)
}
