package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// Issuer is the issuer claim stamped on every access token.
	Issuer = "workbench"
	// KeyID is the key id carried in the token header.
	KeyID = "v1"
	// AccessTokenDuration is how long a guest access token stays valid.
	AccessTokenDuration = 7 * 24 * time.Hour
)

// ClaimsMessage is the payload of a workbench access token. The subject is
// the opaque user id that scopes sessions and runs.
type ClaimsMessage struct {
	jwt.RegisteredClaims
}

// GenerateAccessToken mints a signed access token for the given user id.
func GenerateAccessToken(userID string, expirationTime time.Time, secret []byte) (string, error) {
	claims := &ClaimsMessage{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{"user.access-token"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = KeyID
	accessToken, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return accessToken, nil
}

// Authenticate validates an access token and returns the user id it carries.
func Authenticate(accessToken string, secret []byte) (string, error) {
	if accessToken == "" {
		return "", errors.New("access token not found")
	}
	claims := &ClaimsMessage{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected access token signing method: %v", t.Header["alg"])
		}
		if kid, ok := t.Header["kid"].(string); !ok || kid != KeyID {
			return nil, errors.Errorf("unexpected access token kid: %v", t.Header["kid"])
		}
		return secret, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "invalid or expired access token")
	}
	if claims.Subject == "" {
		return "", errors.New("access token has no subject")
	}
	return claims.Subject, nil
}
