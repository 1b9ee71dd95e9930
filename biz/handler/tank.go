package handler

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/biz/service"
)

// ListTankGroups .
// @router /api/v1/tank-groups [GET]
func (h *Handler) ListTankGroups(ctx context.Context, c *app.RequestContext) {
	var (
		q   service.TankGroupQuery
		err error
	)
	if q.PlantID, err = queryUint(c, "plant_id"); err != nil {
		WriteBadRequest(c, err)
		return
	}
	if q.LineID, err = queryUint(c, "line_id"); err != nil {
		WriteBadRequest(c, err)
		return
	}
	if q.Skip, err = queryInt(c, "skip", 0); err != nil {
		WriteBadRequest(c, err)
		return
	}
	if q.Limit, err = queryInt(c, "limit", 0); err != nil {
		WriteBadRequest(c, err)
		return
	}
	q.Search = strings.TrimSpace(c.Query("search"))

	groups, err := h.service.ListTankGroups(ctx, q)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, groups)
}

// CreateTankGroup .
// @router /api/v1/tank-groups [POST]
func (h *Handler) CreateTankGroup(ctx context.Context, c *app.RequestContext) {
	var req api.TankGroupCreateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	group, err := h.service.CreateTankGroup(ctx, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, group)
}

// GetTankGroup returns the group with its tanks.
// @router /api/v1/tank-groups/:id [GET]
func (h *Handler) GetTankGroup(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	group, err := h.service.GetTankGroup(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, group)
}

// UpdateTankGroup .
// @router /api/v1/tank-groups/:id [PUT]
func (h *Handler) UpdateTankGroup(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	var req api.TankGroupUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	group, err := h.service.UpdateTankGroup(ctx, id, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, group)
}

// DeleteTankGroup .
// @router /api/v1/tank-groups/:id [DELETE]
func (h *Handler) DeleteTankGroup(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	if err := h.service.DeleteTankGroup(ctx, id); err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondOK(c)
}

// CanDeleteTankGroup .
// @router /api/v1/tank-groups/:id/can-delete [GET]
func (h *Handler) CanDeleteTankGroup(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	resp, err := h.service.CanDeleteTankGroup(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, resp)
}

// ListTanks .
// @router /api/v1/tanks [GET]
func (h *Handler) ListTanks(ctx context.Context, c *app.RequestContext) {
	var (
		q   service.TankQuery
		err error
	)
	if q.PlantID, err = queryUint(c, "plant_id"); err != nil {
		WriteBadRequest(c, err)
		return
	}
	if q.TankGroupID, err = queryUint(c, "tank_group_id"); err != nil {
		WriteBadRequest(c, err)
		return
	}
	if q.Skip, err = queryInt(c, "skip", 0); err != nil {
		WriteBadRequest(c, err)
		return
	}
	if q.Limit, err = queryInt(c, "limit", 0); err != nil {
		WriteBadRequest(c, err)
		return
	}
	q.Search = strings.TrimSpace(c.Query("search"))

	tanks, err := h.service.ListTanks(ctx, q)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, tanks)
}

// CreateTank .
// @router /api/v1/tanks [POST]
func (h *Handler) CreateTank(ctx context.Context, c *app.RequestContext) {
	var req api.TankCreateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	tank, err := h.service.CreateTank(ctx, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, tank)
}

// GetTank .
// @router /api/v1/tanks/:id [GET]
func (h *Handler) GetTank(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	tank, err := h.service.GetTank(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, tank)
}

// UpdateTank .
// @router /api/v1/tanks/:id [PUT]
func (h *Handler) UpdateTank(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	var req api.TankUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	tank, err := h.service.UpdateTank(ctx, id, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, tank)
}

// DeleteTank .
// @router /api/v1/tanks/:id [DELETE]
func (h *Handler) DeleteTank(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	if err := h.service.DeleteTank(ctx, id); err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondOK(c)
}

// CanDeleteTank .
// @router /api/v1/tanks/:id/can-delete [GET]
func (h *Handler) CanDeleteTank(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	resp, err := h.service.CanDeleteTank(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, resp)
}
