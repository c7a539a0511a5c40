package v1

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
	"github.com/weillium/ai-portfolio/server/service/workspace"
	"github.com/weillium/ai-portfolio/store"
)

type agentPayload struct {
	UID         string          `json:"uid"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Icon        string          `json:"icon"`
	Config      json.RawMessage `json:"config"`
	CreatedTs   int64           `json:"createdTs"`
}

func convertAgent(agent *store.Agent) *agentPayload {
	if agent == nil {
		return nil
	}
	config := agent.Config
	if config == "" {
		config = "{}"
	}
	return &agentPayload{
		UID:         agent.UID,
		Name:        agent.Name,
		Description: agent.Description,
		Type:        string(agent.Type),
		Icon:        agent.Icon,
		Config:      json.RawMessage(config),
		CreatedTs:   agent.CreatedTs,
	}
}

// ListAgents returns the registry catalog in creation order.
func (s *APIV1Service) ListAgents(c echo.Context) error {
	agents, err := s.Workspace.Registry().ListAgents(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	payload := make([]*agentPayload, 0, len(agents))
	for _, agent := range agents {
		payload = append(payload, convertAgent(agent))
	}
	return c.JSON(http.StatusOK, payload)
}

// GetAgent returns one agent by uid.
func (s *APIV1Service) GetAgent(c echo.Context) error {
	agent, err := s.Workspace.Registry().GetAgentByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertAgent(agent))
}

type createAgentRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Icon        string          `json:"icon"`
	Config      json.RawMessage `json:"config"`
}

// CreateAgent registers a new agent.
func (s *APIV1Service) CreateAgent(c echo.Context) error {
	request := &createAgentRequest{}
	if err := c.Bind(request); err != nil {
		return s.writeError(c, wbErrors.InvalidArgument("malformed request body", err))
	}
	agent, err := s.Workspace.Registry().CreateAgent(c.Request().Context(), &workspace.CreateAgentRequest{
		Name:        request.Name,
		Description: request.Description,
		Type:        store.AgentType(request.Type),
		Icon:        request.Icon,
		Config:      string(request.Config),
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertAgent(agent))
}

type updateAgentRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Icon        *string          `json:"icon"`
	Config      *json.RawMessage `json:"config"`
}

// UpdateAgent applies a partial update to an agent.
func (s *APIV1Service) UpdateAgent(c echo.Context) error {
	ctx := c.Request().Context()
	agent, err := s.Workspace.Registry().GetAgentByUID(ctx, c.Param("uid"))
	if err != nil {
		return s.writeError(c, err)
	}
	request := &updateAgentRequest{}
	if err := c.Bind(request); err != nil {
		return s.writeError(c, wbErrors.InvalidArgument("malformed request body", err))
	}
	update := &store.UpdateAgent{ID: agent.ID}
	update.Name = request.Name
	update.Description = request.Description
	update.Icon = request.Icon
	if request.Config != nil {
		config := string(*request.Config)
		update.Config = &config
	}
	updated, err := s.Workspace.Registry().UpdateAgent(ctx, update)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertAgent(updated))
}

// DeleteAgent removes an agent from the catalog.
func (s *APIV1Service) DeleteAgent(c echo.Context) error {
	ctx := c.Request().Context()
	agent, err := s.Workspace.Registry().GetAgentByUID(ctx, c.Param("uid"))
	if err != nil {
		return s.writeError(c, err)
	}
	if err := s.Workspace.Registry().DeleteAgent(ctx, agent.ID); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
