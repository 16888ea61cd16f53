package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/muhammadowais87/client2-sub000/internal/adapters/provider"
	"github.com/muhammadowais87/client2-sub000/internal/usecase"
	res "github.com/muhammadowais87/client2-sub000/pkg/http"
)

type AuthHandler struct {
	service usecase.Service
}

func NewAuthHandler(s usecase.Service) *AuthHandler { return &AuthHandler{service: s} }

type telegramAuthRequest struct {
	InitData     string `json:"initData"`
	ReferralCode string `json:"referralCode"`
}

type telegramAuthResponse struct {
	Success bool                `json:"success"`
	Session *provider.Session   `json:"session"`
	User    *usecase.PublicUser `json:"user"`
}

// TelegramAuth is the Mini-App handshake endpoint. The outcome switch is
// exhaustive over the closed result type; each kind maps to exactly one
// status and body shape.
func (h *AuthHandler) TelegramAuth(c echo.Context) error {
	req := new(telegramAuthRequest)
	if err := c.Bind(req); err != nil || strings.TrimSpace(req.InitData) == "" {
		return res.Err(c, http.StatusBadRequest, "Missing initData")
	}

	out := h.service.Authenticate(c.Request().Context(), requestIDFromCtx(c), usecase.AuthInput{
		InitData:     req.InitData,
		ReferralCode: strings.TrimSpace(req.ReferralCode),
		IP:           c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})

	switch out.Kind {
	case usecase.OutcomeOK:
		return c.JSON(http.StatusOK, telegramAuthResponse{Success: true, Session: out.Session, User: out.User})
	case usecase.OutcomeRateLimited:
		return res.TooManyRequests(c, out.RetryAfter)
	case usecase.OutcomeUnauthorized:
		return res.Err(c, http.StatusUnauthorized, "Invalid Telegram data")
	case usecase.OutcomeReferralRequired:
		return res.Gate(c, "REFERRAL_REQUIRED", out.Message)
	case usecase.OutcomeInvalidReferral:
		return res.Gate(c, "INVALID_REFERRAL", out.Message)
	default:
		return res.Err(c, http.StatusInternalServerError, out.Message)
	}
}

// Me returns the stored user record for the authenticated session subject.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return res.Err(c, http.StatusUnauthorized, "unauthorized")
	}
	user, err := h.service.Me(c.Request().Context(), userID)
	if err != nil {
		return res.Err(c, http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
