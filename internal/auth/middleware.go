package auth

import (
	"net/http"
	"strings"

	apperrors "patient-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Middleware guards protected routes: it extracts the bearer token,
// verifies it, and attaches the decoded identity to the request context.
type Middleware struct {
	jwtService *JWTService
}

func NewMiddleware(jwtService *JWTService) *Middleware {
	return &Middleware{jwtService: jwtService}
}

func (m *Middleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token == "" {
				return respondError(c, http.StatusUnauthorized, msgNotAuthenticated)
			}

			claims, err := m.jwtService.Verify(token)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, msgInvalidOrExpiredToken)
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyEmail, claims.Email)

			return next(c)
		}
	}
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyMessage: message})
}

func GetUserID(c echo.Context) (uuid.UUID, error) {
	userID := c.Get(ContextKeyUserID)
	if userID == nil {
		return uuid.Nil, apperrors.Unauthorized(msgUserNotAuthenticated)
	}

	id, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.InternalServer(msgInvalidUserIDCtx, nil)
	}

	return id, nil
}

func GetEmail(c echo.Context) string {
	email, _ := c.Get(ContextKeyEmail).(string)
	return email
}
