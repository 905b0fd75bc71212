package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bebel/pendencias/errors"
	"github.com/bebel/pendencias/internal/adapter/dto/system"
	"github.com/bebel/pendencias/internal/domain/entities"
	systemUsecase "github.com/bebel/pendencias/internal/usecase/system"
)

// System handles diagnostics and maintenance requests
type System struct {
	svc    systemUsecase.Service
	logger *zap.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(svc systemUsecase.Service, logger *zap.Logger) *System {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &System{svc: svc, logger: logger}
}

// Health handles GET /health
func (h *System) Health(c echo.Context) error {
	if err := h.svc.Health(c.Request().Context()); err != nil {
		return HandleError(h.logger, c, errors.ErrDBConnectionFailed(err))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, &system.HealthResponse{
		OK:      true,
		Message: "Conexão com banco OK",
	})
}

// TestDB handles GET /test-db
func (h *System) TestDB(c echo.Context) error {
	report, err := h.svc.TestDB(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, &system.TestDBResponse{
		OK:          true,
		CurrentTime: report.CurrentTime,
		TableExists: report.TableExists,
		RecordCount: report.PendenciaCount,
	})
}

// Tables handles GET /tables
func (h *System) Tables(c echo.Context) error {
	tables, err := h.svc.Tables(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if tables == nil {
		tables = []string{}
	}
	return HandleSuccess(h.logger, c, http.StatusOK, &system.TablesResponse{
		OK:     true,
		Schema: entities.Schema,
		Tables: tables,
		Count:  len(tables),
	})
}

// Migrate handles POST /migrate
// @Summary      Run a maintenance action
// @Description  add_responsavel_column: ensures id_responsavel, assigns unassigned pendências to the default professional and adds the foreign key
// @Tags         System
// @Accept       json
// @Produce      json
// @Param        request  body      system.MigrateRequest  true  "Action"
// @Success      200      {object}  system.MigrateResponse
// @Failure      400      {object}  common.ErrorResponse  "Unknown action or no default professional"
// @Failure      500      {object}  common.ErrorResponse
// @Router       /migrate [post]
func (h *System) Migrate(c echo.Context) error {
	var req system.MigrateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrUnknownAction().WithDetail("action", req.Action))
	}

	res, err := h.svc.Migrate(c.Request().Context(), req.Action)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err).WithDetail("action", req.Action))
	}

	ids := res.AssignedIDs
	if ids == nil {
		ids = []int64{}
	}
	return HandleSuccess(h.logger, c, http.StatusOK, &system.MigrateResponse{
		OK:                 true,
		Message:            fmt.Sprintf("Migração executada com sucesso. %d pendências atualizadas.", res.AssignedCount),
		ProfissionalPadrao: res.Profissional.NomeCompleto,
		PendenciasUpdated:  res.AssignedCount,
		IDs:                ids,
	})
}
