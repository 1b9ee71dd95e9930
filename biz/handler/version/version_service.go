package version

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/pkg/common"
)

var (
	// Version information, injected at build time via main package
	AppVersion   = "dev"
	AppGitCommit = "unknown"
	AppBuildTime = "unknown"
)

// GetVersion .
// @router /api/v1/version [GET]
func GetVersion(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, common.CommonResponse{
		Code: consts.StatusOK,
		Msg:  "success",
		Data: api.VersionInfo{
			Version:   AppVersion,
			GitCommit: AppGitCommit,
			BuildTime: AppBuildTime,
		},
	})
}
