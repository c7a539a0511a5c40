package workspace

import (
	"context"

	"github.com/weillium/ai-portfolio/server/ai"
	"github.com/weillium/ai-portfolio/server/internal/observability"
	"github.com/weillium/ai-portfolio/store"
)

// InputRequest is a single user interaction routed to a view behavior. Type
// selects the action; the remaining fields are action-specific.
type InputRequest struct {
	Type    string         `json:"type"`
	Content string         `json:"content,omitempty"`
	Field   string         `json:"field,omitempty"`
	Value   any            `json:"value,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// InputResult is what a view behavior hands back after handling an input.
type InputResult struct {
	Session *store.SessionWithAgent
	State   State
	Reply   *ChatMessage
	Status  string
}

// ViewEnv bundles everything a view behavior may touch while handling one
// input. Persist routes state writes back through the session's workspace.
type ViewEnv struct {
	Agent     *store.Agent
	Session   *store.SessionWithAgent
	UserID    string
	Persist   func(ctx context.Context, state State) (*store.SessionWithAgent, error)
	Completer ai.CompletionService
	Hooks     *HookRegistry
	Runs      *RunLogger
	Request   *observability.RequestContext
}

// ViewBehavior is the per-agent-type input handler.
type ViewBehavior interface {
	HandleInput(ctx context.Context, env *ViewEnv, input *InputRequest) (*InputResult, error)
}

// Dispatcher maps agent types to view behaviors. Resolution is total: types
// it does not recognize fall through to the custom behavior, which renders
// its own not-found surface.
type Dispatcher struct {
	chat     ViewBehavior
	form     ViewBehavior
	workflow ViewBehavior
	custom   ViewBehavior
}

func NewDispatcher(components *ComponentRegistry) *Dispatcher {
	return &Dispatcher{
		chat:     &chatView{},
		form:     &formView{},
		workflow: &workflowView{},
		custom:   &customView{components: components},
	}
}

// ResolveView picks the behavior for an agent type.
func (d *Dispatcher) ResolveView(agentType store.AgentType) ViewBehavior {
	switch agentType {
	case store.AgentTypeChat:
		return d.chat
	case store.AgentTypeForm:
		return d.form
	case store.AgentTypeWorkflow:
		return d.workflow
	default:
		return d.custom
	}
}

// HandleInput routes an input to the session's view behavior.
func (d *Dispatcher) HandleInput(ctx context.Context, env *ViewEnv, input *InputRequest) (*InputResult, error) {
	agentType := store.AgentTypeCustom
	if env.Agent != nil {
		agentType = env.Agent.Type
	}
	return d.ResolveView(agentType).HandleInput(ctx, env, input)
}
