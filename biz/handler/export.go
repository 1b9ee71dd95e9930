package handler

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/stl_backend/biz/service"
)

// ExportPlantRevision stores a JSON snapshot of the revision.
// @router /api/v1/plants/:id/export [POST]
func (h *Handler) ExportPlantRevision(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	result, err := h.service.ExportPlantRevision(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, result)
}

// DownloadExport streams a stored snapshot.
// @router /api/v1/exports/*key [GET]
func (h *Handler) DownloadExport(ctx context.Context, c *app.RequestContext) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || path.Clean("/"+key) != "/"+key {
		WriteNotFound(c, service.ErrExportNotFound)
		return
	}
	rc, err := h.service.OpenExport(ctx, key)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		WriteInternalError(c, err)
		return
	}
	c.Response.Header.Set("Content-Disposition", "attachment; filename=\""+path.Base(key)+"\"")
	c.Data(consts.StatusOK, consts.MIMEApplicationJSONUTF8, content)
}
