package handler

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/biz/service"
)

// ListPlants .
// @router /api/v1/plants [GET]
func (h *Handler) ListPlants(ctx context.Context, c *app.RequestContext) {
	var (
		q   service.PlantQuery
		err error
	)
	if q.CustomerID, err = queryUint(c, "customer_id"); err != nil {
		WriteBadRequest(c, err)
		return
	}
	if q.ActiveOnly, err = queryBool(c, "active_only", true); err != nil {
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

	plants, err := h.service.ListPlants(ctx, q)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, plants)
}

// CreatePlant .
// @router /api/v1/plants [POST]
func (h *Handler) CreatePlant(ctx context.Context, c *app.RequestContext) {
	var req api.PlantCreateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	plant, err := h.service.CreatePlant(ctx, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, plant)
}

// GetPlant .
// @router /api/v1/plants/:id [GET]
func (h *Handler) GetPlant(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	plant, err := h.service.GetPlant(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, plant)
}

// UpdatePlant edits a DRAFT revision.
// @router /api/v1/plants/:id [PUT]
func (h *Handler) UpdatePlant(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	var req api.PlantUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	plant, err := h.service.UpdatePlant(ctx, id, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, plant)
}

// DeletePlant removes every revision of the plant.
// @router /api/v1/plants/:id [DELETE]
func (h *Handler) DeletePlant(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	removed, err := h.service.DeletePlant(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, map[string]int{"deleted_revisions": removed})
}

// ListPlantRevisions .
// @router /api/v1/plants/:id/revisions [GET]
func (h *Handler) ListPlantRevisions(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	revisions, err := h.service.ListPlantRevisions(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, revisions)
}

// CreatePlantRevision branches a new DRAFT from revision :id.
// @router /api/v1/plants/:id/revisions [POST]
func (h *Handler) CreatePlantRevision(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	var req api.RevisionCreateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	plant, err := h.service.BranchPlantRevision(ctx, id, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, plant)
}

// DeletePlantRevision removes a DRAFT revision.
// @router /api/v1/plants/:id/revisions [DELETE]
func (h *Handler) DeletePlantRevision(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	if err := h.service.DeletePlantRevision(ctx, id); err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondOK(c)
}

// ActivatePlantRevision .
// @router /api/v1/plants/:id/revisions/activate [PUT]
func (h *Handler) ActivatePlantRevision(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	plant, err := h.service.ActivatePlantRevision(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, plant)
}

// ArchivePlantRevision .
// @router /api/v1/plants/:id/revisions/archive [PUT]
func (h *Handler) ArchivePlantRevision(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	plant, err := h.service.ArchivePlantRevision(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, plant)
}

// GetActivePlantRevision .
// @router /api/v1/plants/:id/active [GET]
func (h *Handler) GetActivePlantRevision(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	plant, err := h.service.GetActivePlantRevision(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, plant)
}

// ListPlantLines .
// @router /api/v1/plants/:id/lines [GET]
func (h *Handler) ListPlantLines(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	lines, err := h.service.ListPlantLines(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, lines)
}

// NextLineNumber .
// @router /api/v1/plants/:id/lines/next-number [GET]
func (h *Handler) NextLineNumber(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	next, err := h.service.NextLineNumber(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, api.NextLineNumberResponse{NextNumber: next})
}
