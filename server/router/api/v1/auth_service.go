package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/weillium/ai-portfolio/server/auth"
	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
)

type guestSignInResponse struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// SignInGuest mints an anonymous identity. Every workspace is keyed by the
// opaque user id carried in the returned token.
func (s *APIV1Service) SignInGuest(c echo.Context) error {
	userID := "guest-" + shortuuid.New()
	expiresAt := time.Now().Add(auth.AccessTokenDuration)
	accessToken, err := auth.GenerateAccessToken(userID, expiresAt, []byte(s.Secret))
	if err != nil {
		return s.writeError(c, wbErrors.ServiceUnavailable("failed to issue access token", err))
	}
	return c.JSON(http.StatusOK, &guestSignInResponse{
		UserID:      userID,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt.Unix(),
	})
}
