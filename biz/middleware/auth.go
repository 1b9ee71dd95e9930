package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/stl_backend/pkg/common"
)

// Auth returns a middleware that extracts user information from request headers
// and adds it to the context. This middleware does NOT enforce authentication,
// it only enriches the context with user info if present. The user name ends
// up as created_by on new plant revisions.
func Auth() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if userHeader := c.GetHeader("X-User-Id"); len(userHeader) > 0 {
			if id, err := strconv.Atoi(string(userHeader)); err == nil && id > 0 {
				ctx = common.ContextWithUserID(ctx, id)
			}
		}

		if name := strings.TrimSpace(string(c.GetHeader("X-User-Name"))); name != "" {
			ctx = common.ContextWithUserName(ctx, name)
		}

		c.Next(ctx)
	}
}

// RequireAuth rejects writes (POST, PUT, DELETE) that carry neither a user id
// nor a user name, so every revision records a real author. Reads pass.
// It must run after Auth.
func RequireAuth() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		switch string(c.Method()) {
		case consts.MethodGet, consts.MethodHead, consts.MethodOptions:
			c.Next(ctx)
			return
		}

		if raw := c.GetHeader("X-User-Id"); len(raw) > 0 {
			if id, err := strconv.Atoi(string(raw)); err != nil || id <= 0 {
				unauthorized(c, "invalid X-User-Id header")
				return
			}
		}
		if _, ok := common.GetUserID(ctx); !ok && common.GetUserName(ctx) == "" {
			unauthorized(c, "missing X-User-Id or X-User-Name header")
			return
		}
		c.Next(ctx)
	}
}

func unauthorized(c *app.RequestContext, msg string) {
	c.AbortWithStatusJSON(consts.StatusUnauthorized, common.CommonResponse{
		Code:  consts.StatusUnauthorized,
		Msg:   msg,
		Error: "authentication required",
	})
}
