package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	log "github.com/sirupsen/logrus"
)

// AnthropicProvider adapts the Anthropic Messages API (system prompt carried
// out-of-band, alternating user/assistant messages). Also works with
// Anthropic-compatible endpoints via BaseURL.
type AnthropicProvider struct {
	name    string
	client  *anthropic.Client
	model   string
	timeout time.Duration
	maxTok  int
}

// NewAnthropicProvider builds the adapter from config. SDK-level retries are
// disabled: the orchestrator owns the retry budget.
func NewAnthropicProvider(cfg ProviderConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	maxTok := cfg.MaxTokens
	if maxTok == 0 {
		maxTok = defaultMaxTokens
	}

	log.Printf("[AnthropicProvider] %s configured: model=%s timeout=%s", cfg.Name, cfg.Model, cfg.Timeout)
	return &AnthropicProvider{
		name:    cfg.Name,
		client:  &client,
		model:   cfg.Model,
		timeout: attemptTimeout(cfg.Timeout),
		maxTok:  maxTok,
	}
}

func (p *AnthropicProvider) Name() string { return p.name }

// Generate performs one attempt against the provider under the per-attempt
// timeout.
func (p *AnthropicProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, turn := range req.History {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTok),
		Messages:  messages,
	}
	if system := systemPrompt(req); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", p.classify(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", &ProviderError{Provider: p.name, Kind: ErrInvalidResponse, Err: errors.New("response text empty after trimming")}
	}
	return text, nil
}

func (p *AnthropicProvider) classify(err error) error {
	// Caller cancellation is not a provider failure; let it bubble raw.
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(p.name, apiErr.StatusCode, err)
	}
	return classifyTransport(p.name, err)
}
