package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/stl_backend/pkg/common"
)

// Recovery turns a handler panic into a 500 envelope. The stack goes to the
// log together with the request id; the client only sees the id.
func Recovery() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			requestID := common.GetRequestID(ctx)
			hlog.CtxErrorf(ctx, "panic recovered request_id=%s %s %s: %v\n%s",
				requestID, c.Method(), c.Path(), r, debug.Stack())

			msg := "internal server error"
			if requestID != "" {
				msg = fmt.Sprintf("internal server error (request %s)", requestID)
			}
			c.AbortWithStatusJSON(consts.StatusInternalServerError, common.CommonResponse{
				Code:  consts.StatusInternalServerError,
				Msg:   msg,
				Error: fmt.Sprint(r),
			})
		}()

		c.Next(ctx)
	}
}
