package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/muhammadowais87/client2-sub000/internal/tokenverify"
)

type stubVerifier struct {
	result *tokenverify.Result
	err    error
}

func (s stubVerifier) Verify(_ string, _ func() time.Time) (*tokenverify.Result, error) {
	return s.result, s.err
}

func invoke(t *testing.T, verifier TokenVerifier, authz string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := NewAuthMiddleware(verifier)
	handler := mw.Handler(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, c, called
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec, _, called := invoke(t, stubVerifier{}, "")
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without calling next, got %d called=%v", rec.Code, called)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	rec, _, called := invoke(t, stubVerifier{err: errors.New("bad")}, "Bearer broken")
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without calling next, got %d called=%v", rec.Code, called)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	verifier := stubVerifier{result: &tokenverify.Result{UserID: "uuid-1", TelegramID: 555}}
	rec, c, called := invoke(t, verifier, "Bearer good")
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to run, got %d called=%v", rec.Code, called)
	}
	if c.Get("user_id") != "uuid-1" {
		t.Fatalf("user_id not set: %v", c.Get("user_id"))
	}
	if c.Get("telegram_id") != int64(555) {
		t.Fatalf("telegram_id not set: %v", c.Get("telegram_id"))
	}
}
