package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	errs "github.com/inaratravel/concierge/internal/errors"
	"github.com/inaratravel/concierge/server/service/chat"
)

// ChatRequest is the POST /api/v1/chat payload.
type ChatRequest struct {
	UserID      string `json:"userId"`
	Message     string `json:"message"`
	ContactHint string `json:"contactHint"`
}

// ChatResponse is the chat turn outcome returned to the client.
type ChatResponse struct {
	UserID    string `json:"userId"`
	ReplyText string `json:"replyText"`
	Source    string `json:"source"`
	Escalated bool   `json:"escalated"`
	Reason    string `json:"reason,omitempty"`
}

func (s *APIV1Service) handleChat(c echo.Context) error {
	req := &ChatRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Message = strings.TrimSpace(req.Message)
	if req.UserID == "" {
		return toHTTPError(errs.InvalidArgument("userId is required"))
	}
	if req.Message == "" {
		return toHTTPError(errs.InvalidArgument("message is required"))
	}

	if !s.limiter.Allow(req.UserID) {
		return toHTTPError(errs.RateLimitExceeded("too many messages, slow down"))
	}

	result := s.Engine.Handle(c.Request().Context(), chat.Request{
		UserID:      req.UserID,
		Message:     req.Message,
		ContactHint: req.ContactHint,
		Channel:     "api",
	})

	return c.JSON(http.StatusOK, &ChatResponse{
		UserID:    req.UserID,
		ReplyText: result.Reply,
		Source:    result.Source,
		Escalated: result.Escalated,
		Reason:    result.Reason,
	})
}

// toHTTPError maps a chat pipeline error to its transport status.
func toHTTPError(err *errs.ChatError) *echo.HTTPError {
	return echo.NewHTTPError(httpStatus(err.GetCode()), err.Message)
}

func httpStatus(code errs.ErrorCode) int {
	switch code {
	case errs.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case errs.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrCodeStateUnavailable, errs.ErrCodeProvidersExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
