package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	pkgcommon "github.com/yi-nology/stl_backend/pkg/common"
	"gorm.io/gorm"
)

// Health reports whether the database answers a ping within two seconds.
func Health(db *gorm.DB) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		sqlDB, err := db.DB()
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err = sqlDB.PingContext(pingCtx)
			cancel()
		}
		if err != nil {
			c.JSON(consts.StatusServiceUnavailable, pkgcommon.CommonResponse{
				Code:  consts.StatusServiceUnavailable,
				Msg:   "unhealthy",
				Error: err.Error(),
			})
			return
		}
		c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
			Code: consts.StatusOK,
			Msg:  "healthy",
			Data: map[string]string{"database": "ok"},
		})
	}
}
