package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/session"
)

// RequireAuth validates the bearer JWT, checks the session is still live in
// the session store and stores the user id in the request context. Every
// failure mode returns 401 with the same user-facing message.
func RequireAuth(jwtSecret string, sessions *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authenticate(c, jwtSecret, sessions)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado")
			}
			c.Set("userID", claims.UserID)
			c.Set("jti", claims.ID)
			return next(c)
		}
	}
}

// OptionalAuth resolves the user when a valid token is present and proceeds
// anonymously otherwise. Used on publicly readable routes such as the feed.
func OptionalAuth(jwtSecret string, sessions *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, err := authenticate(c, jwtSecret, sessions); err == nil {
				c.Set("userID", claims.UserID)
				c.Set("jti", claims.ID)
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, jwtSecret string, sessions *session.Store) (*models.JwtCustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, echo.ErrUnauthorized
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, echo.ErrUnauthorized
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, echo.ErrUnauthorized
	}

	// A token is only as good as its live session: logout revokes the jti.
	if sessions != nil {
		valid, err := sessions.Valid(c.Request().Context(), claims.ID)
		if err != nil || !valid {
			return nil, echo.ErrUnauthorized
		}
	}
	return claims, nil
}
