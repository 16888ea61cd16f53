package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the flat error body returned for input, authenticity and
// infrastructure failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GateResponse carries a machine-readable code so clients can branch on
// admission failures (for example, by showing a referral-entry form).
type GateResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Err(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Error: msg})
}

func Gate(c echo.Context, code, message string) error {
	return c.JSON(http.StatusForbidden, GateResponse{Error: "registration blocked", Code: code, Message: message})
}

func TooManyRequests(c echo.Context, retryAfterSeconds int) error {
	c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests, please try again later"})
}
