package workspace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/weillium/ai-portfolio/server/ai"
	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
)

// chatView appends user messages to the transcript, proxies the history to
// the completion provider, and appends the assistant reply. The user message
// is persisted before the provider call so a failed completion never loses
// what the user typed.
type chatView struct{}

func (v *chatView) HandleInput(ctx context.Context, env *ViewEnv, input *InputRequest) (*InputResult, error) {
	if input.Type != "" && input.Type != "message" {
		return nil, wbErrors.InvalidArgument("unsupported chat input type", nil)
	}
	if input.Content == "" {
		return nil, wbErrors.InvalidArgument("message content is required", nil)
	}

	state, err := DecodeState(env.Agent.Type, env.Session.State)
	if err != nil {
		return nil, wbErrors.InvalidArgument("failed to decode chat state", err)
	}
	chat, ok := state.(*ChatState)
	if !ok {
		return nil, wbErrors.InvalidArgument("session state is not a chat transcript", nil)
	}

	config, err := ParseAgentConfig(env.Agent.Config)
	if err != nil {
		config = &AgentConfig{}
	}

	userMessage := ChatMessage{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   input.Content,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	chat.Messages = append(chat.Messages, userMessage)

	session, err := env.Persist(ctx, chat)
	if err != nil {
		return nil, err
	}
	env.Session = session

	if env.Completer == nil {
		return nil, wbErrors.LLMUnavailable("completion provider is not configured", nil)
	}
	history := make([]ai.Message, 0, len(chat.Messages))
	for _, message := range chat.Messages {
		history = append(history, ai.Message{Role: message.Role, Content: message.Content})
	}
	completion, err := env.Completer.Complete(ctx, config.SystemPrompt, history)
	if err != nil {
		// The user message stays persisted; the caller surfaces the failure.
		return nil, wbErrors.LLMUnavailable("completion failed", err)
	}

	assistantMessage := ChatMessage{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Content:   completion.Content,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	chat.Messages = append(chat.Messages, assistantMessage)

	session, err = env.Persist(ctx, chat)
	if err != nil {
		return nil, err
	}

	if env.Runs != nil {
		tokens := int32(completion.TotalTokens)
		cost := completion.CostEstimate
		env.Runs.Log(&RunRecord{
			SessionID: session.ID,
			AgentID:   env.Agent.ID,
			UserID:    env.UserID,
			Input: map[string]any{
				"message":       userMessage.Content,
				"system_prompt": config.SystemPrompt,
			},
			Output: map[string]any{
				"message": assistantMessage.Content,
			},
			TokensUsed:   &tokens,
			CostEstimate: &cost,
		})
	}

	return &InputResult{
		Session: session,
		State:   chat,
		Reply:   &assistantMessage,
	}, nil
}
