package server

import (
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/personabot-ai/personabot/internal/domain"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse wraps list payloads with a count.
type ListResponse struct {
	Items      any `json:"items"`
	TotalCount int `json:"totalCount"`
}

// SuccessResponse returns a successful response.
func SuccessResponse(c *app.RequestContext, data any) {
	c.JSON(consts.StatusOK, Response{
		Code:    "SUCCESS",
		Message: "operation successful",
		Data:    data,
	})
}

// NoContentResponse returns a no content response (used by delete).
func NoContentResponse(c *app.RequestContext) {
	c.Status(consts.StatusNoContent)
}

// ErrorResponse maps an error to a status code and envelope using the
// domain predicates. Internal detail never reaches the client.
func ErrorResponse(c *app.RequestContext, err error) {
	userMessage := func(err error) string {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return domainErr.UserMessage()
		}
		return "an error occurred"
	}

	switch {
	case domain.IsInvalidInput(err):
		c.JSON(consts.StatusBadRequest, Response{
			Code:    "INVALID_INPUT",
			Message: userMessage(err),
		})
	case domain.IsNotFound(err):
		c.JSON(consts.StatusNotFound, Response{
			Code:    "NOT_FOUND",
			Message: userMessage(err),
		})
	case domain.IsUnavailable(err):
		c.JSON(consts.StatusBadGateway, Response{
			Code:    "UPSTREAM_UNAVAILABLE",
			Message: userMessage(err),
		})
	default:
		c.JSON(consts.StatusInternalServerError, Response{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		})
	}
}
