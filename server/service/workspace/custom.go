package workspace

import (
	"context"
	"fmt"

	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
)

// defaultComponent is the component used when a custom agent's config does
// not name one.
const defaultComponent = "WeatherVisualizer"

// ComponentBehavior handles inputs for one custom component. It sees the
// schemaless custom state and persists through the same callback as the
// built-in views.
type ComponentBehavior interface {
	HandleInput(ctx context.Context, env *ViewEnv, state CustomState, input *InputRequest) (*InputResult, error)
}

// ComponentRegistry maps component names from agent configs to compiled-in
// behaviors. Registration happens at startup; lookups are read-only after.
type ComponentRegistry struct {
	components map[string]ComponentBehavior
}

func NewComponentRegistry() *ComponentRegistry {
	registry := &ComponentRegistry{components: make(map[string]ComponentBehavior)}
	registry.Register(defaultComponent, &weatherVisualizer{})
	return registry
}

func (r *ComponentRegistry) Register(name string, behavior ComponentBehavior) {
	r.components[name] = behavior
}

func (r *ComponentRegistry) Resolve(name string) (ComponentBehavior, bool) {
	behavior, ok := r.components[name]
	return behavior, ok
}

// customView resolves the component named by the agent's config and delegates
// to it. An unresolvable component is reported as not found rather than
// failing the whole workspace.
type customView struct {
	components *ComponentRegistry
}

func (v *customView) HandleInput(ctx context.Context, env *ViewEnv, input *InputRequest) (*InputResult, error) {
	config, err := ParseAgentConfig(env.Agent.Config)
	if err != nil {
		config = &AgentConfig{}
	}
	name := config.Component
	if name == "" {
		name = defaultComponent
	}
	behavior, ok := v.components.Resolve(name)
	if !ok {
		return nil, wbErrors.NotFound(fmt.Sprintf("custom agent component %q not found", name), nil)
	}

	state, err := DecodeState(env.Agent.Type, env.Session.State)
	if err != nil {
		return nil, wbErrors.InvalidArgument("failed to decode session state", err)
	}
	custom, ok := state.(CustomState)
	if !ok {
		return nil, wbErrors.InvalidArgument("session state is not a custom state", nil)
	}
	return behavior.HandleInput(ctx, env, custom, input)
}
