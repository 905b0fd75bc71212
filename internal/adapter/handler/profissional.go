package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bebel/pendencias/internal/adapter/presenter"
	profissionalUsecase "github.com/bebel/pendencias/internal/usecase/profissional"
)

// Profissional handles professional HTTP requests
type Profissional struct {
	svc    profissionalUsecase.Service
	logger *zap.Logger
}

// NewProfissionalHandler creates a new professional handler
func NewProfissionalHandler(svc profissionalUsecase.Service, logger *zap.Logger) *Profissional {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profissional{svc: svc, logger: logger}
}

// List handles GET /profissionais
// @Summary      List professionals
// @Description  Active professionals, default assignee first, then by name
// @Tags         Profissionais
// @Produce      json
// @Success      200  {object}  profissional.ListProfissionaisResponse
// @Failure      500  {object}  common.ErrorResponse
// @Router       /profissionais [get]
func (h *Profissional) List(c echo.Context) error {
	roster, err := h.svc.ListActive(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToListProfissionaisResponse(roster.Profissionais, roster.Padrao))
}
