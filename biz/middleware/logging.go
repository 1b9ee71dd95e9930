package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/stl_backend/pkg/common"
)

// SlowRequestThreshold marks requests logged at warn level.
const SlowRequestThreshold = time.Second

// Logging writes one access line per request with its id and the acting user.
// Server errors log at error level and slow requests at warn level.
func Logging() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()

		c.Next(ctx)

		latency := time.Since(start)
		status := c.Response.StatusCode()
		requestID := common.GetRequestID(ctx)
		if requestID == "" {
			requestID = string(c.Response.Header.Peek(RequestIDHeader))
		}

		const format = "[%s] %s %s %d %v rid=%s actor=%s"
		args := []any{c.ClientIP(), c.Method(), c.Path(), status, latency, requestID, common.Actor(ctx)}
		switch {
		case status >= 500:
			hlog.CtxErrorf(ctx, format, args...)
		case latency >= SlowRequestThreshold:
			hlog.CtxWarnf(ctx, format+" slow", args...)
		default:
			hlog.CtxInfof(ctx, format, args...)
		}
	}
}
