package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/stl_backend/biz/revision"
	"github.com/yi-nology/stl_backend/biz/service"
	pkgcommon "github.com/yi-nology/stl_backend/pkg/common"
	"github.com/yi-nology/stl_backend/pkg/validator"
)

// Handler exposes the plant configuration API over hertz.
type Handler struct {
	service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

func WriteBadRequest(c *app.RequestContext, err error) {
	RespondError(c, consts.StatusBadRequest, err)
}

func WriteInternalError(c *app.RequestContext, err error) {
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code:  consts.StatusInternalServerError,
		Msg:   "internal error",
		Error: err.Error(),
	})
}

func WriteNotFound(c *app.RequestContext, err error) {
	RespondError(c, consts.StatusNotFound, err)
}

// --------------------- Response helpers ---------------------

func RespondOK(c *app.RequestContext) {
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{Code: consts.StatusOK, Msg: http.StatusText(consts.StatusOK)})
}

func RespondData(c *app.RequestContext, data any) {
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code: consts.StatusOK,
		Msg:  http.StatusText(consts.StatusOK),
		Data: data,
	})
}

func RespondError(c *app.RequestContext, status int, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code:  status,
		Msg:   msg,
		Error: msg,
	})
}

// WriteError maps a service or revision error to its business code.
func WriteError(ctx context.Context, c *app.RequestContext, err error) {
	status := StatusOf(err)
	if status == consts.StatusInternalServerError {
		hlog.CtxErrorf(ctx, "request %s %s failed: %v", c.Method(), c.Path(), err)
		WriteInternalError(c, err)
		return
	}
	RespondError(c, status, err)
}

// StatusOf returns the business code carried in the response envelope for err.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return consts.StatusOK
	case errors.Is(err, revision.ErrNotFound),
		errors.Is(err, revision.ErrNoActiveRevision),
		errors.Is(err, revision.ErrOwnerNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrPlantNotFound),
		errors.Is(err, service.ErrLineNotFound),
		errors.Is(err, service.ErrTankGroupNotFound),
		errors.Is(err, service.ErrTankNotFound),
		errors.Is(err, service.ErrExportNotFound):
		return consts.StatusNotFound
	case errors.Is(err, revision.ErrDuplicateLineage),
		errors.Is(err, revision.ErrLineageBusy):
		return consts.StatusConflict
	case errors.Is(err, revision.ErrAlreadyActive),
		errors.Is(err, revision.ErrInvalidStateTransition),
		errors.Is(err, revision.ErrImmutableRevision),
		errors.Is(err, revision.ErrInvalidArgument),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNumberTaken),
		errors.Is(err, validator.ErrInvalidRequest):
		return consts.StatusBadRequest
	case errors.Is(err, service.ErrStorageDisabled):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}

// --------------------- Utility functions ---------------------

// pathID parses a positive numeric path parameter.
func pathID(c *app.RequestContext, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", validator.ErrInvalidRequest, name, raw)
	}
	return uint(id), nil
}

// queryUint parses an optional numeric query parameter; absent means 0.
func queryUint(c *app.RequestContext, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", validator.ErrInvalidRequest, name, raw)
	}
	return uint(v), nil
}

func queryInt(c *app.RequestContext, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", validator.ErrInvalidRequest, name, raw)
	}
	return v, nil
}

func queryBool(c *app.RequestContext, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean, got %q", validator.ErrInvalidRequest, name, raw)
	}
	return v, nil
}

// bindJSON decodes the request body into req.
func bindJSON(c *app.RequestContext, req any) error {
	if len(c.Request.Body()) == 0 {
		return fmt.Errorf("%w: request body is required", validator.ErrInvalidRequest)
	}
	if err := c.BindJSON(req); err != nil {
		return fmt.Errorf("%w: %v", validator.ErrInvalidRequest, err)
	}
	return nil
}

func Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{"message": "pong"})
}
