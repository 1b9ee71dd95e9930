package handler

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/yi-nology/stl_backend/biz/model/api"
)

// ListCustomers .
// @router /api/v1/customers [GET]
func (h *Handler) ListCustomers(ctx context.Context, c *app.RequestContext) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	customers, err := h.service.ListCustomers(ctx, skip, limit, strings.TrimSpace(c.Query("search")))
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, customers)
}

// CreateCustomer .
// @router /api/v1/customers [POST]
func (h *Handler) CreateCustomer(ctx context.Context, c *app.RequestContext) {
	var req api.CustomerCreateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	customer, err := h.service.CreateCustomer(ctx, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, customer)
}

// GetCustomer .
// @router /api/v1/customers/:id [GET]
func (h *Handler) GetCustomer(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	customer, err := h.service.GetCustomer(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, customer)
}

// UpdateCustomer .
// @router /api/v1/customers/:id [PUT]
func (h *Handler) UpdateCustomer(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	var req api.CustomerUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		WriteBadRequest(c, err)
		return
	}
	customer, err := h.service.UpdateCustomer(ctx, id, &req)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, customer)
}

// DeleteCustomer .
// @router /api/v1/customers/:id [DELETE]
func (h *Handler) DeleteCustomer(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	if err := h.service.DeleteCustomer(ctx, id); err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondOK(c)
}

// ListCustomerPlants .
// @router /api/v1/customers/:id/plants [GET]
func (h *Handler) ListCustomerPlants(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	plants, err := h.service.ListCustomerPlants(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, plants)
}

// CanDeleteCustomer .
// @router /api/v1/customers/:id/can-delete [GET]
func (h *Handler) CanDeleteCustomer(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	resp, err := h.service.CanDeleteCustomer(ctx, id)
	if err != nil {
		WriteError(ctx, c, err)
		return
	}
	RespondData(c, resp)
}
