package workspace

import (
	"context"
	"log/slog"

	"github.com/lithammer/shortuuid/v4"

	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
	"github.com/weillium/ai-portfolio/store"
)

// Registry exposes the catalog of available agents. Listing failures degrade
// to an empty catalog so the rest of the workbench keeps working.
type Registry struct {
	store  *store.Store
	logger *slog.Logger
}

func NewRegistry(st *store.Store, logger *slog.Logger) *Registry {
	return &Registry{store: st, logger: logger}
}

// ListAgents returns every registered agent ordered by creation time. On
// failure it returns an empty slice alongside the error.
func (r *Registry) ListAgents(ctx context.Context) ([]*store.Agent, error) {
	agents, err := r.store.ListAgents(ctx, &store.FindAgent{})
	if err != nil {
		r.logger.Error("failed to list agents", "error", err)
		return []*store.Agent{}, wbErrors.ServiceUnavailable("failed to list agents", err)
	}
	return agents, nil
}

// GetAgentByUID resolves a single agent or reports not found.
func (r *Registry) GetAgentByUID(ctx context.Context, uid string) (*store.Agent, error) {
	agent, err := r.store.GetAgent(ctx, &store.FindAgent{UID: &uid})
	if err != nil {
		return nil, wbErrors.ServiceUnavailable("failed to get agent", err)
	}
	if agent == nil {
		return nil, wbErrors.NotFound("agent not found", nil)
	}
	return agent, nil
}

type CreateAgentRequest struct {
	Name        string
	Description string
	Type        store.AgentType
	Icon        string
	Config      string
}

// CreateAgent registers a new agent. The type must be one of the known view
// types; the config blob is validated as JSON but otherwise opaque.
func (r *Registry) CreateAgent(ctx context.Context, request *CreateAgentRequest) (*store.Agent, error) {
	if request.Name == "" {
		return nil, wbErrors.InvalidArgument("agent name is required", nil)
	}
	switch request.Type {
	case store.AgentTypeChat, store.AgentTypeForm, store.AgentTypeWorkflow, store.AgentTypeCustom:
	default:
		return nil, wbErrors.InvalidArgument("unknown agent type", nil)
	}
	config := request.Config
	if config == "" {
		config = "{}"
	}
	if _, err := ParseAgentConfig(config); err != nil {
		return nil, wbErrors.InvalidArgument("invalid agent config", err)
	}
	agent, err := r.store.CreateAgent(ctx, &store.Agent{
		UID:         shortuuid.New(),
		Name:        request.Name,
		Description: request.Description,
		Type:        request.Type,
		Icon:        request.Icon,
		Config:      config,
	})
	if err != nil {
		return nil, wbErrors.ServiceUnavailable("failed to create agent", err)
	}
	return agent, nil
}

// UpdateAgent applies a partial update to a registered agent.
func (r *Registry) UpdateAgent(ctx context.Context, update *store.UpdateAgent) (*store.Agent, error) {
	if update.Config != nil {
		if _, err := ParseAgentConfig(*update.Config); err != nil {
			return nil, wbErrors.InvalidArgument("invalid agent config", err)
		}
	}
	agent, err := r.store.UpdateAgent(ctx, update)
	if err != nil {
		return nil, wbErrors.ServiceUnavailable("failed to update agent", err)
	}
	return agent, nil
}

// DeleteAgent removes an agent from the catalog. Existing sessions keep their
// dangling reference and surface without agent metadata.
func (r *Registry) DeleteAgent(ctx context.Context, id int32) error {
	if err := r.store.DeleteAgent(ctx, &store.DeleteAgent{ID: id}); err != nil {
		return wbErrors.ServiceUnavailable("failed to delete agent", err)
	}
	return nil
}
