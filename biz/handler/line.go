package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/yi-nology/stl_backend/biz/model/api"
)

// CreateLine .
// @router /api/v1/lines [POST]
func (h *Handler) CreateLine(ctx context.Context, c *app.RequestContext) {
	var req api.LineCreateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	line, err := h.service.CreateLine(ctx, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, line)
}

// GetLine .
// @router /api/v1/lines/:id [GET]
func (h *Handler) GetLine(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	line, err := h.service.GetLine(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, line)
}

// UpdateLine .
// @router /api/v1/lines/:id [PUT]
func (h *Handler) UpdateLine(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	var req api.LineUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	line, err := h.service.UpdateLine(ctx, id, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, line)
}

// DeleteLine .
// @router /api/v1/lines/:id [DELETE]
func (h *Handler) DeleteLine(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	if err := h.service.DeleteLine(ctx, id); err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondOK(c)
}

// ListLineTanks .
// @router /api/v1/lines/:id/tanks [GET]
func (h *Handler) ListLineTanks(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	tanks, err := h.service.ListLineTanks(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, tanks)
}
