package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bebel/pendencias/errors"
	"github.com/bebel/pendencias/internal/adapter/dto/pendencia"
	"github.com/bebel/pendencias/internal/adapter/presenter"
	pendenciaUsecase "github.com/bebel/pendencias/internal/usecase/pendencia"
)

const listHint = "Verifique se a tabela bebel.pendencia_sinalizada existe e se os nomes das colunas estão corretos."

// Pendencia handles pendência HTTP requests
type Pendencia struct {
	svc    pendenciaUsecase.Service
	logger *zap.Logger
	now    func() time.Time
}

// NewPendenciaHandler creates a new pendência handler
func NewPendenciaHandler(svc pendenciaUsecase.Service, logger *zap.Logger) *Pendencia {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pendencia{svc: svc, logger: logger, now: time.Now}
}

// List handles GET /pendencias
// @Summary      List pendências
// @Description  Lists pendências with their derived kanban column, newest first (max 50)
// @Tags         Pendencias
// @Produce      json
// @Param        status       query     string  false  "SINALIZADA, RESOLVIDA, IGNORADA or all"
// @Param        tipo         query     string  false  "Type filter"
// @Param        prioridade   query     int     false  "Priority 1-5"
// @Param        responsavel  query     string  false  "none, all or a professional id"
// @Param        q            query     string  false  "Free-text search"
// @Success      200          {object}  pendencia.ListPendenciasResponse
// @Failure      400          {object}  common.ErrorResponse
// @Failure      500          {object}  common.ErrorResponse
// @Router       /pendencias [get]
func (h *Pendencia) List(c echo.Context) error {
	var q pendencia.ListPendenciasQuery
	if err := c.Bind(&q); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	spec, err := q.Spec()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	list, err := h.svc.List(c.Request().Context(), spec)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err).WithHint(listHint))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToListPendenciasResponse(list, h.now()))
}

// Update handles POST /pendencias and PUT /pendencias?id=
// @Summary      Update a pendência
// @Description  Partial update; only supplied fields change. resolved_at follows the status.
// @Tags         Pendencias
// @Accept       json
// @Produce      json
// @Param        request  body      pendencia.UpdatePendenciaRequest  true  "Fields to update"
// @Success      200      {object}  pendencia.PendenciaEnvelope
// @Failure      400      {object}  common.ErrorResponse  "Missing id or nothing to update"
// @Failure      404      {object}  common.ErrorResponse  "Pendência not found"
// @Failure      500      {object}  common.ErrorResponse
// @Router       /pendencias [post]
func (h *Pendencia) Update(c echo.Context) error {
	var req pendencia.UpdatePendenciaRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if req.ID == 0 {
		if raw := strings.TrimSpace(c.QueryParam("id")); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return HandleError(h.logger, c, errors.ErrInvalidArgument("id inválido").WithDetail("id", raw))
			}
			req.ID = pendencia.FlexibleID(id)
		}
	}
	if req.ID <= 0 {
		return HandleError(h.logger, c, errors.ErrPendenciaMissingID())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	id := int64(req.ID)
	updated, err := h.svc.Update(c.Request().Context(), id, req.Patch())
	if err != nil {
		return HandleError(h.logger, c, toAppError(err).WithDetail("id", strconv.FormatInt(id, 10)))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, &pendencia.PendenciaEnvelope{
		OK:   true,
		Data: presenter.ToPendenciaResponse(updated),
	})
}

// Move handles POST /pendencias/move
// @Summary      Move a pendência to a kanban column
// @Description  FEITO resolves the pendência; A_FAZER and FAZENDO flag it again and clear resolved_at
// @Tags         Pendencias
// @Accept       json
// @Produce      json
// @Param        request  body      pendencia.MovePendenciaRequest  true  "Target column"
// @Success      200      {object}  pendencia.PendenciaEnvelope
// @Failure      400      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse
// @Router       /pendencias/move [post]
func (h *Pendencia) Move(c echo.Context) error {
	var req pendencia.MovePendenciaRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if req.ID <= 0 {
		return HandleError(h.logger, c, errors.ErrPendenciaMissingID())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	patch, err := req.Patch()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	id := int64(req.ID)
	updated, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err).WithDetail("id", strconv.FormatInt(id, 10)))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, &pendencia.PendenciaEnvelope{
		OK:   true,
		Data: presenter.ToPendenciaResponse(updated),
	})
}

// Create handles POST /pendencias/new
// @Summary      Create a pendência
// @Description  Creates a pendência; absent fields get defaults (INFORMACAO, priority 1, SINALIZADA)
// @Tags         Pendencias
// @Accept       json
// @Produce      json
// @Param        request  body      pendencia.CreatePendenciaRequest  true  "New pendência"
// @Success      201      {object}  pendencia.PendenciaEnvelope
// @Failure      400      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse
// @Router       /pendencias/new [post]
func (h *Pendencia) Create(c echo.Context) error {
	var req pendencia.CreatePendenciaRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	created, err := h.svc.Create(c.Request().Context(), req.Draft())
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, &pendencia.PendenciaEnvelope{
		OK:   true,
		Data: presenter.ToPendenciaResponse(created),
	})
}
