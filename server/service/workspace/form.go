package workspace

import (
	"context"
	"fmt"

	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
)

// formView tracks field values as they change and runs the configured submit
// hook when the form is submitted. Every field change is persisted, so a
// half-filled form survives a reload.
type formView struct{}

func (v *formView) HandleInput(ctx context.Context, env *ViewEnv, input *InputRequest) (*InputResult, error) {
	state, err := DecodeState(env.Agent.Type, env.Session.State)
	if err != nil {
		return nil, wbErrors.InvalidArgument("failed to decode form state", err)
	}
	form, ok := state.(*FormState)
	if !ok {
		return nil, wbErrors.InvalidArgument("session state is not a form", nil)
	}

	config, err := ParseAgentConfig(env.Agent.Config)
	if err != nil {
		config = &AgentConfig{}
	}

	switch input.Type {
	case "set_field":
		return v.setField(ctx, env, form, input)
	case "submit":
		return v.submit(ctx, env, form, config, input)
	default:
		return nil, wbErrors.InvalidArgument("unsupported form input type", nil)
	}
}

func (v *formView) setField(ctx context.Context, env *ViewEnv, form *FormState, input *InputRequest) (*InputResult, error) {
	if input.Field == "" {
		return nil, wbErrors.InvalidArgument("field name is required", nil)
	}
	form.Values[input.Field] = input.Value
	session, err := env.Persist(ctx, form)
	if err != nil {
		return nil, err
	}
	return &InputResult{Session: session, State: form}, nil
}

func (v *formView) submit(ctx context.Context, env *ViewEnv, form *FormState, config *AgentConfig, input *InputRequest) (*InputResult, error) {
	for name, value := range input.Payload {
		form.Values[name] = value
	}
	for _, field := range config.Fields {
		if !field.Required {
			continue
		}
		value, ok := form.Values[field.Name]
		if !ok || value == nil || value == "" {
			return nil, wbErrors.InvalidArgument(fmt.Sprintf("field %q is required", field.Name), nil)
		}
	}

	result := map[string]any{"status": "saved"}
	if config.SubmitFunction != "" {
		if env.Hooks == nil {
			return nil, wbErrors.NotFound("submit function not registered", nil)
		}
		hook, ok := env.Hooks.Resolve(config.SubmitFunction)
		if !ok {
			return nil, wbErrors.NotFound("submit function not registered", nil)
		}
		hookResult, err := hook(ctx, &SubmitRequest{
			AgentID:   env.Agent.ID,
			SessionID: env.Session.ID,
			UserID:    env.UserID,
			Payload:   form.Values,
		})
		if err != nil {
			return nil, wbErrors.ServiceUnavailable("submit function failed", err)
		}
		result = hookResult
	}

	session, err := env.Persist(ctx, form)
	if err != nil {
		return nil, err
	}

	if env.Runs != nil {
		env.Runs.Log(&RunRecord{
			SessionID: session.ID,
			AgentID:   env.Agent.ID,
			UserID:    env.UserID,
			Input:     map[string]any{"values": form.Values},
			Output:    map[string]any{"result": result},
		})
	}

	return &InputResult{
		Session: session,
		State:   form,
		Status:  "Form submitted successfully.",
	}, nil
}
