package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bebel/pendencias/errors"
	"github.com/bebel/pendencias/internal/adapter/dto/common"
	usecaseErrors "github.com/bebel/pendencias/internal/usecase/errors"
)

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes body with status and logs the response
func HandleSuccess(logger *zap.Logger, c echo.Context, status int, body interface{}) error {
	if logger != nil {
		logger.Debug("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}
	return c.JSON(status, body)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := toAppError(err)

	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Stringer("app_code", appErr.Code),
			zap.Error(err),
		}
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("http.response.error", fields...)
		} else {
			logger.Warn("http.response.error", fields...)
		}
	}

	body := common.ErrorResponse{
		OK:      false,
		Error:   appErr.Message,
		Hint:    appErr.Hint,
		Code:    appErr.Code.String(),
		Details: appErr.Details,
	}
	if appErr.Raw != nil && appErr.HTTPCode >= http.StatusInternalServerError {
		body.Error = appErr.Message + ": " + appErr.Raw.Error()
	}

	return c.JSON(appErr.HTTPCode, body)
}

// toAppError maps usecase sentinels to their HTTP rendering. Anything
// unrecognized is an internal error.
func toAppError(err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, usecaseErrors.ErrMissingID):
		return errors.ErrPendenciaMissingID()
	case stdErrors.Is(err, usecaseErrors.ErrNothingToUpdate):
		return errors.ErrNothingToUpdate()
	case stdErrors.Is(err, usecaseErrors.ErrPendenciaNotFound):
		return errors.ErrPendenciaNotFound()
	case stdErrors.Is(err, usecaseErrors.ErrNoDefaultProfissional):
		return errors.ErrNoDefaultProfissional()
	case stdErrors.Is(err, usecaseErrors.ErrUnknownAction):
		return errors.ErrUnknownAction()
	case stdErrors.Is(err, usecaseErrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, usecaseErrors.ErrStoreUnavailable):
		return errors.ErrDBQueryFailed(err)
	}

	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) {
		if httpErr.Code == http.StatusNotFound {
			return errors.ErrNotFound("route")
		}
		return errors.ErrInvalidPayload(err)
	}
	return errors.ErrInternal(err)
}
