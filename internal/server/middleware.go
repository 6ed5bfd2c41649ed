package server

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id on both request and response.
const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns each request an id and logs method, path, status
// and latency once the handler chain finishes. Health probes are skipped.
func RequestLogger(logger *log.Logger) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())

		skipLogging := path == "/healthz"

		requestID := string(c.Request.Header.Peek(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Response.Header.Set(RequestIDHeader, requestID)

		c.Next(ctx)

		if skipLogging {
			return
		}

		latency := time.Since(start)
		status := c.Response.StatusCode()

		reqLogger := logger.With(
			"request_id", requestID,
			"method", string(c.Method()),
			"path", path,
			"status", status,
			"latency", latency.String(),
		)

		switch {
		case status >= 500:
			reqLogger.Error("request failed")
		case status >= 400:
			reqLogger.Warn("request rejected")
		default:
			reqLogger.Info("request completed")
		}
	}
}

// GetRequestID returns the request id assigned by RequestLogger.
func GetRequestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDHeader))
}

// Recovery catches handler panics, logs the stack and answers 500.
func Recovery(logger *log.Logger) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					"request_id", GetRequestID(c),
					"method", string(c.Method()),
					"path", string(c.Path()),
					"panic", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
				)

				c.JSON(consts.StatusInternalServerError, Response{
					Code:    "INTERNAL_ERROR",
					Message: "internal server error",
				})
				c.Abort()
			}
		}()

		c.Next(ctx)
	}
}

// CORS allows any origin so the chat page can be embedded elsewhere.
func CORS() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		c.Response.Header.Set("Access-Control-Allow-Origin", "*")
		c.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		c.Response.Header.Set("Access-Control-Expose-Headers", RequestIDHeader)
		c.Response.Header.Set("Access-Control-Max-Age", "86400")

		if string(c.Method()) == "OPTIONS" {
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}

		c.Next(ctx)
	}
}
