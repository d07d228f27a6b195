package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
)

const (
	tokenAudience   = "sofia-api"
	tokenContextKey = "apiToken"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
}

func NewClaims(conf *core.Config, subject string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	if conf.Server.JWTSecret == "" {
		return "", errors.New("server.jwtSecret is not configured")
	}
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.Server.JWTSecret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// authMiddleware requires a bearer token when server.jwtSecret is set; otherwise it lets everything through.
func authMiddleware(conf *core.Config) echo.MiddlewareFunc {
	if conf.Server.JWTSecret == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    []byte(conf.Server.JWTSecret),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	})
}
