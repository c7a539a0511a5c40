// Package ai provides the completion provider for chat agents. Everything
// behind the CompletionService interface is an external collaborator; the
// workbench core only sees assistant text plus usage metrics.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"

	"github.com/weillium/ai-portfolio/internal/profile"
)

// costPerToken mirrors the flat estimate the original proxy used for
// surfacing approximate spend; it is a display heuristic, not billing.
const costPerToken = 0.000002

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Completion is the result of one completion call.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostEstimate     float64
}

// CompletionService is the completion provider interface consumed by the
// chat view behavior.
type CompletionService interface {
	// Complete sends the full message history (system prompt first, when
	// present) and returns the assistant reply with usage metrics.
	Complete(ctx context.Context, systemPrompt string, messages []Message) (*Completion, error)
}

// Config holds the completion provider configuration.
type Config struct {
	BaseURL       string
	APIKey        string
	ChatModel     string
	MaxRetries    int
	Timeout       time.Duration
	MaxConcurrent int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://api.openai.com/v1",
		APIKey:        "",
		ChatModel:     "gpt-4.1-mini",
		MaxRetries:    3,
		Timeout:       30 * time.Second,
		MaxConcurrent: 4,
	}
}

// NewConfigFromProfile creates a provider config from the profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}
	cfg.APIKey = p.AIAPIKey
	if p.AIModel != "" {
		cfg.ChatModel = p.AIModel
	}
	return cfg
}

// Provider implements CompletionService on an OpenAI-compatible API.
type Provider struct {
	client *openai.Client
	config *Config

	// sem bounds in-flight completion calls so one burst of chat traffic
	// cannot exhaust provider-side rate limits for everyone.
	sem *semaphore.Weighted
}

// NewProvider creates a new completion provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4.1-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrent),
	}, nil
}

// Complete performs a chat completion with retry and a bounded timeout.
func (p *Provider) Complete(ctx context.Context, systemPrompt string, messages []Message) (*Completion, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	llmMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		llmMessages = append(llmMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, msg := range messages {
		llmMessages = append(llmMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	var result *Completion
	err := p.doWithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()

		resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:    p.config.ChatModel,
			Messages: llmMessages,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}

		result = &Completion{
			Content:          resp.Choices[0].Message.Content,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
			CostEstimate:     float64(resp.Usage.TotalTokens) * costPerToken,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete chat: %w", err)
	}

	return result, nil
}

// doWithRetry executes a function with exponential backoff retry.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < p.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("completion request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
