package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/weillium/ai-portfolio/internal/profile"
	"github.com/weillium/ai-portfolio/server/ai"
	apiv1 "github.com/weillium/ai-portfolio/server/router/api/v1"
	"github.com/weillium/ai-portfolio/server/service/workspace"
	"github.com/weillium/ai-portfolio/store"
)

type Server struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	workspace  *workspace.Service
	apiService *apiv1.APIV1Service
}

func NewServer(ctx context.Context, p *profile.Profile, st *store.Store) (*Server, error) {
	secret := p.Secret
	if secret == "" {
		if !p.IsDev() {
			return nil, errors.New("a secret is required outside dev mode")
		}
		secret = "workbench-dev"
	}

	e := echo.New()
	e.Debug = p.IsDev()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout:      2 * time.Minute,
		ErrorMessage: "request timeout",
	}))

	var completer ai.CompletionService
	if p.IsAIEnabled() {
		provider, err := ai.NewProvider(ai.NewConfigFromProfile(p))
		if err != nil {
			slog.Warn("completion provider disabled", "error", err)
		} else {
			completer = provider
		}
	}

	ws := workspace.NewService(st, slog.Default(), completer)
	s := &Server{
		Secret:     secret,
		Profile:    p,
		Store:      st,
		echoServer: e,
		workspace:  ws,
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	s.apiService = apiv1.NewAPIV1Service(secret, p, st, ws, slog.Default())
	s.apiService.Register(e)
	return s, nil
}

// Workspace exposes the workbench core for hook and component registration.
func (s *Server) Workspace() *workspace.Service {
	return s.workspace
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	s.workspace.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown")
}
