package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/muhammadowais87/client2-sub000/internal/tokenverify"
	res "github.com/muhammadowais87/client2-sub000/pkg/http"
)

// TokenVerifier validates provider-issued access tokens.
type TokenVerifier interface {
	Verify(token string, nowFn func() time.Time) (*tokenverify.Result, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func (m *AuthMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return res.Err(c, http.StatusUnauthorized, "missing token")
		}
		result, err := m.verifier.Verify(parts[1], time.Now)
		if err != nil {
			return res.Err(c, http.StatusUnauthorized, "invalid token")
		}
		c.Set("user_id", result.UserID)
		c.Set("telegram_id", result.TelegramID)
		return next(c)
	}
}
