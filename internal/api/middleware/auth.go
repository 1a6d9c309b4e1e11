package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// Context keys set by Auth.
const (
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextSessionID = "session_id"
)

// SessionValidator confirms that a token's session is still the user's live one.
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID int64, sessionID string) error
}

// Auth validates the JWT, checks that its session has not been replaced or
// ended, and injects the claims into the context.
func Auth(jwtSecret string, sessions SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sub, _ := claims["sub"].(string)
			userID, err := strconv.ParseInt(sub, 10, 64)
			if err != nil || userID <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}
			role, _ := claims["role"].(string)
			sessionID, _ := claims["sid"].(string)
			if role == "" || sessionID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			if err := sessions.ValidateSession(c.Request().Context(), userID, sessionID); err != nil {
				if errors.Is(err, domain.ErrInvalidSession) {
					return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrInvalidSession.Error())
				}
				return err
			}

			c.Set(ContextUserID, userID)
			c.Set(ContextRole, role)
			c.Set(ContextSessionID, sessionID)

			return next(c)
		}
	}
}
