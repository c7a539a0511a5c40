package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
	"github.com/weillium/ai-portfolio/server/internal/observability"
	"github.com/weillium/ai-portfolio/server/service/workspace"
	"github.com/weillium/ai-portfolio/store"
)

type sessionPayload struct {
	UID          string          `json:"uid"`
	Title        string          `json:"title"`
	State        json.RawMessage `json:"state"`
	Agent        *agentPayload   `json:"agent,omitempty"`
	CreatedTs    int64           `json:"createdTs"`
	LastActiveTs int64           `json:"lastActiveTs"`
}

func convertSession(session *store.SessionWithAgent) *sessionPayload {
	state := session.State
	if state == "" {
		state = "{}"
	}
	return &sessionPayload{
		UID:          session.UID,
		Title:        session.Title,
		State:        json.RawMessage(state),
		Agent:        convertAgent(session.Agent),
		CreatedTs:    session.CreatedTs,
		LastActiveTs: session.LastActiveTs,
	}
}

// ListSessions returns the caller's sessions, most recently active first.
func (s *APIV1Service) ListSessions(c echo.Context) error {
	ws := s.Workspace.Workspace(currentUserID(c))
	sessions, err := ws.LoadSessions(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	payload := make([]*sessionPayload, 0, len(sessions))
	for _, session := range sessions {
		payload = append(payload, convertSession(session))
	}
	return c.JSON(http.StatusOK, payload)
}

type createSessionRequest struct {
	Agent string `json:"agent"`
	Fresh bool   `json:"fresh"`
}

// CreateSession resumes the caller's session for the given agent or starts a
// new one. Fresh forces a new session even when one already exists.
func (s *APIV1Service) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()
	request := &createSessionRequest{}
	if err := c.Bind(request); err != nil {
		return s.writeError(c, wbErrors.InvalidArgument("malformed request body", err))
	}
	if request.Agent == "" {
		return s.writeError(c, wbErrors.InvalidArgument("no agent selected", nil))
	}
	agent, err := s.Workspace.Registry().GetAgentByUID(ctx, request.Agent)
	if err != nil {
		return s.writeError(c, err)
	}

	ws := s.Workspace.Workspace(currentUserID(c))
	var session *store.SessionWithAgent
	if request.Fresh {
		session, err = ws.CreateSession(ctx, agent)
	} else {
		session, err = ws.SelectAgent(ctx, agent)
	}
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertSession(session))
}

type updateSessionRequest struct {
	Title *string          `json:"title"`
	State *json.RawMessage `json:"state"`
}

// UpdateSession renames a session or replaces its state wholesale.
func (s *APIV1Service) UpdateSession(c echo.Context) error {
	ctx := c.Request().Context()
	request := &updateSessionRequest{}
	if err := c.Bind(request); err != nil {
		return s.writeError(c, wbErrors.InvalidArgument("malformed request body", err))
	}
	ws := s.Workspace.Workspace(currentUserID(c))
	uid := c.Param("uid")

	session, err := ws.GetSession(ctx, uid)
	if err != nil {
		return s.writeError(c, err)
	}

	if request.State != nil {
		agentType := store.AgentTypeCustom
		if session.Agent != nil {
			agentType = session.Agent.Type
		}
		state, err := workspace.DecodeState(agentType, string(*request.State))
		if err != nil {
			return s.writeError(c, wbErrors.InvalidArgument("malformed session state", err))
		}
		session, err = ws.UpdateSessionState(ctx, uid, state)
		if err != nil {
			return s.writeError(c, err)
		}
	}
	if request.Title != nil {
		session, err = ws.RenameSession(ctx, uid, *request.Title)
		if err != nil {
			return s.writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, convertSession(session))
}

// DeleteSession removes a session.
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	ws := s.Workspace.Workspace(currentUserID(c))
	if err := ws.DeleteSession(c.Request().Context(), c.Param("uid")); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type sessionInputResponse struct {
	Session *sessionPayload        `json:"session"`
	Reply   *workspace.ChatMessage `json:"reply,omitempty"`
	Status  string                 `json:"status,omitempty"`
}

// HandleSessionInput routes one user interaction to the session's view
// behavior.
func (s *APIV1Service) HandleSessionInput(c echo.Context) error {
	ctx := c.Request().Context()
	userID := currentUserID(c)
	input := &workspace.InputRequest{}
	if err := c.Bind(input); err != nil {
		return s.writeError(c, wbErrors.InvalidArgument("malformed request body", err))
	}

	rc := observability.NewRequestContext(s.logger, "", userID)
	start := time.Now()
	result, err := s.Workspace.HandleSessionInput(ctx, rc, userID, c.Param("uid"), input)

	agentType := rc.AgentType
	if agentType == "" {
		agentType = "unknown"
	}
	s.Metrics.RecordRequest(agentType)
	s.Metrics.RecordDuration(agentType, time.Since(start))
	if err != nil {
		s.Metrics.RecordFailure(agentType)
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, &sessionInputResponse{
		Session: convertSession(result.Session),
		Reply:   result.Reply,
		Status:  result.Status,
	})
}
