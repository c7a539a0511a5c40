package v1

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
)

type runPayload struct {
	ID           int32           `json:"id"`
	SessionUID   string          `json:"sessionUid,omitempty"`
	Input        json.RawMessage `json:"input"`
	Output       json.RawMessage `json:"output"`
	TokensUsed   *int32          `json:"tokensUsed,omitempty"`
	CostEstimate *float64        `json:"costEstimate,omitempty"`
	CreatedTs    int64           `json:"createdTs"`
}

// ListRuns returns the caller's audit records, optionally scoped to one
// session via the session query parameter.
func (s *APIV1Service) ListRuns(c echo.Context) error {
	ctx := c.Request().Context()
	userID := currentUserID(c)

	var sessionID *int32
	sessionUID := c.QueryParam("session")
	if sessionUID != "" {
		ws := s.Workspace.Workspace(userID)
		session, err := ws.GetSession(ctx, sessionUID)
		if err != nil {
			return s.writeError(c, err)
		}
		sessionID = &session.ID
	}

	runs, err := s.Workspace.ListRuns(ctx, userID, sessionID)
	if err != nil {
		return s.writeError(c, wbErrors.ServiceUnavailable("failed to list runs", err))
	}
	payload := make([]*runPayload, 0, len(runs))
	for _, run := range runs {
		payload = append(payload, &runPayload{
			ID:           run.ID,
			SessionUID:   sessionUID,
			Input:        json.RawMessage(run.Input),
			Output:       json.RawMessage(run.Output),
			TokensUsed:   run.TokensUsed,
			CostEstimate: run.CostEstimate,
			CreatedTs:    run.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, payload)
}
