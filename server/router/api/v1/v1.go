package v1

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/weillium/ai-portfolio/internal/profile"
	"github.com/weillium/ai-portfolio/server/auth"
	"github.com/weillium/ai-portfolio/server/finops"
	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
	"github.com/weillium/ai-portfolio/server/internal/observability"
	wbMiddleware "github.com/weillium/ai-portfolio/server/middleware"
	"github.com/weillium/ai-portfolio/server/service/workspace"
	"github.com/weillium/ai-portfolio/store"
)

const userIDContextKey = "workbench-user-id"

// APIV1Service exposes the workbench over a JSON REST surface.
type APIV1Service struct {
	Secret    string
	Profile   *profile.Profile
	Store     *store.Store
	Workspace *workspace.Service
	Metrics   *observability.Metrics

	logger      *slog.Logger
	rateLimiter *wbMiddleware.RateLimiter
	costMonitor *finops.CostMonitor
}

func NewAPIV1Service(secret string, p *profile.Profile, st *store.Store, ws *workspace.Service, logger *slog.Logger) *APIV1Service {
	return &APIV1Service{
		Secret:      secret,
		Profile:     p,
		Store:       st,
		Workspace:   ws,
		Metrics:     observability.NewMetrics(),
		logger:      logger,
		rateLimiter: wbMiddleware.NewRateLimiter(5, 10),
		costMonitor: finops.NewCostMonitor(st),
	}
}

// Register mounts all v1 routes on the given Echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")

	// Public surface.
	g.POST("/auth/guest", s.SignInGuest)
	g.GET("/status", s.GetStatus)

	authed := g.Group("", s.authMiddleware)
	authed.GET("/agents", s.ListAgents)
	authed.POST("/agents", s.CreateAgent)
	authed.GET("/agents/:uid", s.GetAgent)
	authed.PATCH("/agents/:uid", s.UpdateAgent)
	authed.DELETE("/agents/:uid", s.DeleteAgent)

	authed.GET("/sessions", s.ListSessions)
	authed.POST("/sessions", s.CreateSession)
	authed.PATCH("/sessions/:uid", s.UpdateSession)
	authed.DELETE("/sessions/:uid", s.DeleteSession)
	authed.POST("/sessions/:uid/input", s.HandleSessionInput, s.rateLimitMiddleware)

	authed.GET("/runs", s.ListRuns)
	authed.GET("/metrics", s.GetMetrics)
	authed.GET("/spend", s.GetSpendReport)
}

// authMiddleware authenticates the bearer token and stashes the user id on
// the request context.
func (s *APIV1Service) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractBearerToken(c.Request().Header.Get("Authorization"))
		userID, err := auth.Authenticate(token, []byte(s.Secret))
		if err != nil {
			return s.writeError(c, wbErrors.Unauthorized("authentication required", err))
		}
		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

// rateLimitMiddleware bounds how fast a single user can push inputs.
func (s *APIV1Service) rateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := currentUserID(c)
		if !s.rateLimiter.Allow(userID) {
			return s.writeError(c, wbErrors.RateLimitExceeded("too many requests", nil))
		}
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	userID, _ := c.Get(userIDContextKey).(string)
	return userID
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps a workbench error to its HTTP status and a stable JSON
// body.
func (s *APIV1Service) writeError(c echo.Context, err error) error {
	code := wbErrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case wbErrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case wbErrors.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case wbErrors.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case wbErrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case wbErrors.ErrCodeLLMUnavailable:
		status = http.StatusBadGateway
	case wbErrors.ErrCodeServiceUnavailable, wbErrors.ErrCodePartialPersistence:
		status = http.StatusServiceUnavailable
	case wbErrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}
	message := err.Error()
	var wbErr *wbErrors.WorkbenchError
	if stderrors.As(err, &wbErr) {
		message = wbErr.Message
	}
	return c.JSON(status, &errorResponse{Code: string(code), Message: message})
}

type statusResponse struct {
	Version string `json:"version"`
	Mode    string `json:"mode"`
	AI      bool   `json:"ai"`
}

// GetStatus reports build and runtime information.
func (s *APIV1Service) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, &statusResponse{
		Version: s.Profile.Version,
		Mode:    s.Profile.Mode,
		AI:      s.Profile.IsAIEnabled(),
	})
}

// GetMetrics exposes per-agent-type request counters.
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}

// GetSpendReport exposes accumulated LLM spend, broken down by agent.
func (s *APIV1Service) GetSpendReport(c echo.Context) error {
	report, err := s.costMonitor.Report(c.Request().Context())
	if err != nil {
		return s.writeError(c, wbErrors.ServiceUnavailable("failed to build spend report", err))
	}
	return c.JSON(http.StatusOK, report)
}
